package ir

// BasicBlock is a straight-line sequence of instructions ending in at most
// one terminator. Blocks are Values so terminators and phis can reference
// them as operands.
type BasicBlock struct {
	valueBase
	lnk    Link[*BasicBlock]
	parent *Method
	module *Module
	insts  *List[*BasicBlock, Instruction]
}

// NewBasicBlock creates a detached block. Append it to a method with
// Method.Blocks().Append or use Method.NewBlock.
func NewBasicBlock(m *Module, name string) *BasicBlock {
	b := &BasicBlock{module: m}
	b.init(b, m.types.block, name)
	b.insts = newList[*BasicBlock, Instruction](b)
	return b
}

// Parent returns the owning method, nil while detached.
func (b *BasicBlock) Parent() *Method          { return b.parent }
func (b *BasicBlock) setParent(p *Method)      { b.parent = p }
func (b *BasicBlock) link() *Link[*BasicBlock] { return &b.lnk }

// Module returns the module the block was created in.
func (b *BasicBlock) Module() *Module { return b.module }

// Instructions returns the instruction list.
func (b *BasicBlock) Instructions() *List[*BasicBlock, Instruction] { return b.insts }

// Append adds inst at the end of the block.
func (b *BasicBlock) Append(inst Instruction) error { return b.insts.Append(inst) }

// Terminator returns the last instruction if it is a terminator.
func (b *BasicBlock) Terminator() Terminator {
	t, _ := b.insts.Last().(Terminator)
	return t
}

// Successors returns the targets of the terminator.
func (b *BasicBlock) Successors() []*BasicBlock {
	t := b.Terminator()
	if t == nil {
		return nil
	}
	return t.Successors()
}

// Predecessors returns the distinct blocks whose terminators target b, in
// use order. Only terminators linked into a block count.
func (b *BasicBlock) Predecessors() []*BasicBlock {
	seen := make(map[*BasicBlock]bool)
	var out []*BasicBlock
	for _, u := range b.uses {
		t, ok := u.user.(Terminator)
		if !ok {
			continue
		}
		p := t.Parent()
		if p == nil || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// RemoveFromParent unlinks the block from its method, keeping its
// instructions.
func (b *BasicBlock) RemoveFromParent() error {
	if b.parent == nil {
		return structuralErrorf("BasicBlock.RemoveFromParent", "block has no parent")
	}
	return b.parent.blocks.Remove(b)
}

// EraseFromParent unlinks the block and erases every instruction in it.
func (b *BasicBlock) EraseFromParent() error {
	if err := b.RemoveFromParent(); err != nil {
		return err
	}
	for _, inst := range b.insts.Slice() {
		if err := inst.EraseFromParent(); err != nil {
			return err
		}
	}
	return nil
}

func (b *BasicBlock) String() string { return b.name }
