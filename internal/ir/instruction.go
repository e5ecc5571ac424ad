package ir

// Opcode identifies an instruction variant. The set is closed.
type Opcode int

const (
	OpBinary Opcode = iota
	OpBranch
	OpJump
	OpSwitch
	OpReturn
	OpThrow
	OpCall
	OpCast
	OpInstanceof
	OpNewArray
	OpArrayLength
	OpArrayLoad
	OpArrayStore
	OpLoad
	OpStore
	OpPhi
)

var opcodeNames = [...]string{
	OpBinary:      "binary",
	OpBranch:      "branch",
	OpJump:        "jump",
	OpSwitch:      "switch",
	OpReturn:      "return",
	OpThrow:       "throw",
	OpCall:        "call",
	OpCast:        "cast",
	OpInstanceof:  "instanceof",
	OpNewArray:    "newarray",
	OpArrayLength: "arraylength",
	OpArrayLoad:   "arrayload",
	OpArrayStore:  "arraystore",
	OpLoad:        "load",
	OpStore:       "store",
	OpPhi:         "phi",
}

func (o Opcode) String() string { return opcodeNames[o] }

// Instruction is a User that lives in a BasicBlock.
type Instruction interface {
	User

	// Parent returns the containing block, nil while detached.
	Parent() *BasicBlock

	// Opcode returns the variant tag.
	Opcode() Opcode

	// Module returns the module the instruction was created in.
	Module() *Module

	// RemoveFromParent unlinks the instruction, keeping its operands.
	RemoveFromParent() error

	// EraseFromParent unlinks the instruction and drops its operands.
	EraseFromParent() error

	// ReplaceInstWithInst puts r where this instruction is, retargets every
	// use of this instruction to r and erases this instruction.
	ReplaceInstWithInst(r Instruction) error

	// ReplaceInstWithInsts inserts rs in order where this instruction is,
	// retargets its uses to the last of rs and erases it.
	ReplaceInstWithInsts(rs []Instruction) error

	// ReplaceInstWithValue retargets every use to v and erases this
	// instruction.
	ReplaceInstWithValue(v Value) error

	String() string

	setParent(*BasicBlock)
	link() *Link[Instruction]
	instState() *instBase
}

// Terminator is an instruction that ends a basic block.
type Terminator interface {
	Instruction

	// Successors returns the block operands in operand order.
	Successors() []*BasicBlock

	isTerminator()
}

type instBase struct {
	userBase
	lnk    Link[Instruction]
	parent *BasicBlock
	module *Module
	op     Opcode
}

func (i *instBase) initInst(self Instruction, m *Module, op Opcode, t Type) {
	i.init(self, t, "")
	i.module = m
	i.op = op
}

func (i *instBase) instState() *instBase     { return i }
func (i *instBase) inst() Instruction        { return i.self.(Instruction) }
func (i *instBase) Parent() *BasicBlock      { return i.parent }
func (i *instBase) setParent(p *BasicBlock)  { i.parent = p }
func (i *instBase) link() *Link[Instruction] { return &i.lnk }
func (i *instBase) Opcode() Opcode           { return i.op }
func (i *instBase) Module() *Module          { return i.module }
func (i *instBase) String() string           { return FormatInstruction(i.inst(), nil) }

// RemoveFromParent unlinks the instruction from its block.
func (i *instBase) RemoveFromParent() error {
	if i.parent == nil {
		return structuralErrorf("RemoveFromParent", "instruction has no parent")
	}
	return i.parent.insts.Remove(i.inst())
}

// EraseFromParent unlinks the instruction and drops all operands.
func (i *instBase) EraseFromParent() error {
	if err := i.RemoveFromParent(); err != nil {
		return err
	}
	i.DropAllOperands()
	return nil
}

// ReplaceInstWithInst replaces this instruction by r.
func (i *instBase) ReplaceInstWithInst(r Instruction) error {
	return i.ReplaceInstWithInsts([]Instruction{r})
}

// ReplaceInstWithInsts replaces this instruction by rs; uses move to the
// last instruction of rs.
func (i *instBase) ReplaceInstWithInsts(rs []Instruction) error {
	const op = "ReplaceInstWithInsts"
	if i.parent == nil {
		return structuralErrorf(op, "instruction has no parent")
	}
	if len(rs) == 0 {
		return structuralErrorf(op, "no replacement instructions")
	}
	last := rs[len(rs)-1]
	for _, u := range i.uses {
		if err := u.user.checkOperand(u.index, last); err != nil {
			return err
		}
	}
	self := i.inst()
	list := i.parent.insts
	inserted := make([]Instruction, 0, len(rs))
	for _, r := range rs {
		if err := list.InsertBefore(r, self); err != nil {
			for _, done := range inserted {
				_ = list.Remove(done)
			}
			return err
		}
		inserted = append(inserted, r)
	}
	if err := i.ReplaceAllUsesWith(last); err != nil {
		return err
	}
	return i.EraseFromParent()
}

// ReplaceInstWithValue retargets every use to v and erases the instruction.
func (i *instBase) ReplaceInstWithValue(v Value) error {
	if i.parent == nil {
		return structuralErrorf("ReplaceInstWithValue", "instruction has no parent")
	}
	if err := i.ReplaceAllUsesWith(v); err != nil {
		return err
	}
	return i.EraseFromParent()
}

type terminatorBase struct {
	instBase
}

func (*terminatorBase) isTerminator() {}

// Successors returns the block operands in operand order.
func (t *terminatorBase) Successors() []*BasicBlock {
	var out []*BasicBlock
	for _, u := range t.operands {
		if b, ok := u.value.(*BasicBlock); ok {
			out = append(out, b)
		}
	}
	return out
}

func moduleOf(vals ...Value) *Module {
	for _, v := range vals {
		switch x := v.(type) {
		case Instruction:
			return x.Module()
		case *BasicBlock:
			return x.module
		case *Constant:
			return x.module
		case *Argument:
			return x.method.klass.module
		case *LocalVariable:
			if x.parent != nil {
				return x.parent.klass.module
			}
		case *Field:
			return x.klass.module
		case *Method:
			return x.klass.module
		}
	}
	return nil
}

func requireBlock(op string, i int, v Value) error {
	if _, ok := v.(*BasicBlock); !ok {
		return typeErrorf(op, "operand %d must be a basic block, got %s", i, v.Type())
	}
	return nil
}

func requireSubtype(op string, i int, v Value, t Type) error {
	if !v.Type().IsSubtypeOf(t) {
		return typeErrorf(op, "operand %d: %s is not a subtype of %s", i, v.Type(), t)
	}
	return nil
}

func requireIntLike(op string, i int, v Value) error {
	if !isIntLike(v.Type()) {
		return typeErrorf(op, "operand %d: %s is not a subtype of int", i, v.Type())
	}
	return nil
}

// isDataType reports whether t can be held in a register: a regular type or
// the null type.
func isDataType(t Type) bool {
	switch t.(type) {
	case RegularType, *NullType:
		return true
	}
	return false
}

func requireData(op string, i int, v Value) error {
	if !isDataType(v.Type()) {
		return typeErrorf(op, "operand %d: %s is not a data value", i, v.Type())
	}
	return nil
}
