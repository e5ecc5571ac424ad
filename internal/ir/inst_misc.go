package ir

// CastInst converts a value to a target type: primitive conversions between
// primitives and checked casts between references.
type CastInst struct {
	instBase
}

// NewCast converts v to target.
func NewCast(target RegularType, v Value) (*CastInst, error) {
	if v == nil || target == nil {
		return nil, typeErrorf("NewCast", "operand or target is nil")
	}
	c := &CastInst{}
	c.initInst(c, target.Klass().module, OpCast, target)
	if err := c.initOperands("NewCast", v); err != nil {
		return nil, err
	}
	return c, nil
}

// Value returns the converted value.
func (c *CastInst) Value() Value { return c.Operand(0) }

// Target returns the target type.
func (c *CastInst) Target() RegularType { return c.typ.(RegularType) }

// IsPrimitive reports whether the cast converts between primitives.
func (c *CastInst) IsPrimitive() bool {
	_, ok := c.typ.(*PrimitiveType)
	return ok
}

// castable reports whether a value of type from can be cast to to.
func castable(from, to Type) bool {
	if _, ok := to.(*PrimitiveType); ok {
		_, ok := from.(*PrimitiveType)
		return ok
	}
	return isReferenceLike(from) && isReferenceLike(to)
}

func (c *CastInst) checkOperand(i int, v Value) error {
	if i != 0 {
		return structuralErrorf("CastInst", "operand index %d out of range", i)
	}
	if !castable(v.Type(), c.typ) {
		return typeErrorf("CastInst", "cannot cast %s to %s", v.Type(), c.typ)
	}
	return nil
}

// InstanceofInst tests whether a reference is an instance of a type.
type InstanceofInst struct {
	instBase
	test RefType
}

// NewInstanceof tests v against t. The result is boolean.
func NewInstanceof(t RefType, v Value) (*InstanceofInst, error) {
	if v == nil || t == nil {
		return nil, typeErrorf("NewInstanceof", "operand or test type is nil")
	}
	m := t.Klass().module
	n := &InstanceofInst{test: t}
	n.initInst(n, m, OpInstanceof, m.types.Boolean())
	if err := n.initOperands("NewInstanceof", v); err != nil {
		return nil, err
	}
	return n, nil
}

// Value returns the tested value.
func (n *InstanceofInst) Value() Value { return n.Operand(0) }

// TestType returns the tested type.
func (n *InstanceofInst) TestType() RefType { return n.test }

func (n *InstanceofInst) checkOperand(i int, v Value) error {
	if i != 0 {
		return structuralErrorf("InstanceofInst", "operand index %d out of range", i)
	}
	return requireSubtype("InstanceofInst", i, v, n.module.types.Object())
}

// PhiInst selects a value by the predecessor control arrived from.
// Operands alternate block, value.
type PhiInst struct {
	instBase
}

// NewPhi creates an empty phi of type t.
func NewPhi(t RegularType) (*PhiInst, error) {
	if t == nil {
		return nil, typeErrorf("NewPhi", "type is nil")
	}
	p := &PhiInst{}
	p.initInst(p, t.Klass().module, OpPhi, t)
	if err := p.initOperands("NewPhi"); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PhiInst) blockIndex(b *BasicBlock) int {
	for i := 0; i+1 < len(p.operands); i += 2 {
		if p.operands[i].value == Value(b) {
			return i
		}
	}
	return -1
}

// Get returns the value incoming from b, or nil.
func (p *PhiInst) Get(b *BasicBlock) Value {
	i := p.blockIndex(b)
	if i < 0 {
		return nil
	}
	return p.operands[i+1].value
}

// Put sets the value incoming from b and returns the previous one, or nil
// if b is new.
func (p *PhiInst) Put(b *BasicBlock, v Value) (Value, error) {
	if b == nil || v == nil {
		return nil, typeErrorf("PhiInst.Put", "block or value is nil")
	}
	if i := p.blockIndex(b); i >= 0 {
		prev := p.operands[i+1].value
		if err := p.SetOperand(i+1, v); err != nil {
			return nil, err
		}
		return prev, nil
	}
	n := len(p.operands)
	if err := p.checkOperand(n+1, v); err != nil {
		return nil, err
	}
	if err := p.addOperand(n, b); err != nil {
		return nil, err
	}
	if err := p.addOperand(n+1, v); err != nil {
		p.removeOperand(n)
		return nil, err
	}
	return nil, nil
}

// Remove deletes the incoming pair for b and reports whether it existed.
func (p *PhiInst) Remove(b *BasicBlock) bool {
	i := p.blockIndex(b)
	if i < 0 {
		return false
	}
	p.removeOperand(i + 1)
	p.removeOperand(i)
	return true
}

// Predecessors returns the incoming blocks in operand order.
func (p *PhiInst) Predecessors() []*BasicBlock {
	var out []*BasicBlock
	for i := 0; i+1 < len(p.operands); i += 2 {
		b, _ := p.operands[i].value.(*BasicBlock)
		out = append(out, b)
	}
	return out
}

// IncomingValues returns the incoming values in operand order.
func (p *PhiInst) IncomingValues() []Value {
	var out []Value
	for i := 1; i < len(p.operands); i += 2 {
		out = append(out, p.operands[i].value)
	}
	return out
}

// PhiIncoming is one (block, value) pair.
type PhiIncoming struct {
	Block *BasicBlock
	Value Value
}

// Incoming returns the pairs in operand order.
func (p *PhiInst) Incoming() []PhiIncoming {
	var out []PhiIncoming
	for i := 0; i+1 < len(p.operands); i += 2 {
		b, _ := p.operands[i].value.(*BasicBlock)
		out = append(out, PhiIncoming{Block: b, Value: p.operands[i+1].value})
	}
	return out
}

func (p *PhiInst) checkOperand(i int, v Value) error {
	const op = "PhiInst"
	switch {
	case i < 0:
		return structuralErrorf(op, "operand index %d out of range", i)
	case i%2 == 0:
		return requireBlock(op, i, v)
	}
	return requireSubtype(op, i, v, p.typ)
}
