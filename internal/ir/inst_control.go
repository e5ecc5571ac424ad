package ir

// Sense is the comparison performed by a BranchInst.
type Sense int

const (
	Eq Sense = iota
	Ne
	Lt
	Gt
	Le
	Ge
)

var senseNames = [...]string{Eq: "eq", Ne: "ne", Lt: "lt", Gt: "gt", Le: "le", Ge: "ge"}

func (s Sense) String() string { return senseNames[s] }

// ParseSense looks a sense up by name.
func ParseSense(name string) (Sense, bool) {
	for s, n := range senseNames {
		if n == name {
			return Sense(s), true
		}
	}
	return 0, false
}

// Negate returns the sense that holds exactly when s does not.
func (s Sense) Negate() Sense {
	switch s {
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Lt:
		return Ge
	case Ge:
		return Lt
	case Gt:
		return Le
	}
	return Gt
}

// JumpInst transfers control to a single target.
type JumpInst struct {
	terminatorBase
}

// NewJump creates an unconditional jump to target.
func NewJump(target *BasicBlock) (*JumpInst, error) {
	if target == nil {
		return nil, typeErrorf("NewJump", "target is nil")
	}
	j := &JumpInst{}
	j.initInst(j, target.module, OpJump, target.module.types.Void())
	if err := j.initOperands("NewJump", target); err != nil {
		return nil, err
	}
	return j, nil
}

// Target returns the destination block.
func (j *JumpInst) Target() *BasicBlock { return j.Operand(0).(*BasicBlock) }

func (j *JumpInst) checkOperand(i int, v Value) error {
	if i != 0 {
		return structuralErrorf("JumpInst", "operand index %d out of range", i)
	}
	return requireBlock("JumpInst", i, v)
}

// BranchInst branches to one of two blocks on the comparison a sense b.
// Operands: a, b, then-block, else-block.
type BranchInst struct {
	terminatorBase
	sense Sense
}

// NewBranch creates "if a sense b goto then else goto otherwise".
func NewBranch(a Value, sense Sense, b Value, then, otherwise *BasicBlock) (*BranchInst, error) {
	if then == nil || otherwise == nil {
		return nil, typeErrorf("NewBranch", "target is nil")
	}
	br := &BranchInst{sense: sense}
	br.initInst(br, then.module, OpBranch, then.module.types.Void())
	if err := br.initOperands("NewBranch", a, b, then, otherwise); err != nil {
		return nil, err
	}
	return br, nil
}

// Sense returns the comparison.
func (br *BranchInst) Sense() Sense { return br.sense }

// Left returns the first compared value.
func (br *BranchInst) Left() Value { return br.Operand(0) }

// Right returns the second compared value.
func (br *BranchInst) Right() Value { return br.Operand(1) }

// Then returns the block taken when the comparison holds.
func (br *BranchInst) Then() *BasicBlock { return br.Operand(2).(*BasicBlock) }

// Else returns the block taken when the comparison fails.
func (br *BranchInst) Else() *BasicBlock { return br.Operand(3).(*BasicBlock) }

func (br *BranchInst) checkOperand(i int, v Value) error {
	const op = "BranchInst"
	switch i {
	case 0, 1:
		if err := requireData(op, i, v); err != nil {
			return err
		}
		other := br.Operand(1 - i)
		if other == nil {
			other = v
		}
		if !comparableTypes(v.Type(), other.Type(), br.module) {
			return typeErrorf(op, "cannot compare %s with %s", v.Type(), other.Type())
		}
		if (isReferenceLike(v.Type()) || isReferenceLike(other.Type())) && br.sense != Eq && br.sense != Ne {
			return typeErrorf(op, "reference comparison only supports eq and ne, got %s", br.sense)
		}
		return nil
	case 2, 3:
		return requireBlock(op, i, v)
	}
	return structuralErrorf(op, "operand index %d out of range", i)
}

// comparableTypes reports whether a branch can compare values of types a and b.
func comparableTypes(a, b Type, m *Module) bool {
	object := m.types.Object()
	switch {
	case a.IsSubtypeOf(object) && b.IsSubtypeOf(object):
		return true
	case isIntLike(a) && isIntLike(b):
		return true
	}
	return a == b
}

// SwitchInst selects a target by matching an int value against constant
// cases. Operands: value, default block, then (constant, block) pairs.
type SwitchInst struct {
	terminatorBase
}

// NewSwitch creates a switch on value with no cases.
func NewSwitch(value Value, def *BasicBlock) (*SwitchInst, error) {
	if def == nil {
		return nil, typeErrorf("NewSwitch", "default target is nil")
	}
	s := &SwitchInst{}
	s.initInst(s, def.module, OpSwitch, def.module.types.Void())
	if err := s.initOperands("NewSwitch", value, def); err != nil {
		return nil, err
	}
	return s, nil
}

// Value returns the scrutinee.
func (s *SwitchInst) Value() Value { return s.Operand(0) }

// SetValue replaces the scrutinee.
func (s *SwitchInst) SetValue(v Value) error { return s.SetOperand(0, v) }

// Default returns the default target.
func (s *SwitchInst) Default() *BasicBlock { return s.Operand(1).(*BasicBlock) }

// SetDefault replaces the default target.
func (s *SwitchInst) SetDefault(b *BasicBlock) error { return s.SetOperand(1, b) }

func (s *SwitchInst) caseIndex(c *Constant) int {
	for i := 2; i+1 < len(s.operands); i += 2 {
		if s.operands[i].value == Value(c) {
			return i
		}
	}
	return -1
}

// Get returns the target for case c, or nil if there is no such case.
func (s *SwitchInst) Get(c *Constant) *BasicBlock {
	i := s.caseIndex(c)
	if i < 0 {
		return nil
	}
	return s.operands[i+1].value.(*BasicBlock)
}

// Put maps case c to target b and returns the previous target, or nil if
// the case is new.
func (s *SwitchInst) Put(c *Constant, b *BasicBlock) (*BasicBlock, error) {
	if c == nil || b == nil {
		return nil, typeErrorf("SwitchInst.Put", "case or target is nil")
	}
	if i := s.caseIndex(c); i >= 0 {
		prev := s.operands[i+1].value.(*BasicBlock)
		if err := s.SetOperand(i+1, b); err != nil {
			return nil, err
		}
		return prev, nil
	}
	n := len(s.operands)
	if err := s.checkOperand(n, c); err != nil {
		return nil, err
	}
	if err := s.checkOperand(n+1, b); err != nil {
		return nil, err
	}
	if err := s.addOperand(n, c); err != nil {
		return nil, err
	}
	if err := s.addOperand(n+1, b); err != nil {
		s.removeOperand(n)
		return nil, err
	}
	return nil, nil
}

// Remove deletes case c and reports whether it existed.
func (s *SwitchInst) Remove(c *Constant) bool {
	i := s.caseIndex(c)
	if i < 0 {
		return false
	}
	s.removeOperand(i + 1)
	s.removeOperand(i)
	return true
}

// SwitchCase is one (constant, target) pair.
type SwitchCase struct {
	Key    *Constant
	Target *BasicBlock
}

// Cases returns the cases in operand order.
func (s *SwitchInst) Cases() []SwitchCase {
	var out []SwitchCase
	for i := 2; i+1 < len(s.operands); i += 2 {
		key, _ := s.operands[i].value.(*Constant)
		target, _ := s.operands[i+1].value.(*BasicBlock)
		out = append(out, SwitchCase{Key: key, Target: target})
	}
	return out
}

func (s *SwitchInst) checkOperand(i int, v Value) error {
	const op = "SwitchInst"
	switch {
	case i == 0:
		return requireIntLike(op, i, v)
	case i < 0:
		return structuralErrorf(op, "operand index %d out of range", i)
	case i%2 == 1:
		return requireBlock(op, i, v)
	}
	c, ok := v.(*Constant)
	if !ok {
		return typeErrorf(op, "case operand %d must be a constant", i)
	}
	// Keys are int constants so equal values share one case.
	if c.Kind() != ConstInt {
		return typeErrorf(op, "case operand %d: %s key must be an int constant", i, c.Type())
	}
	return nil
}

// ReturnInst returns from the method, with a value unless the return type
// is void.
type ReturnInst struct {
	terminatorBase
	returnType ReturnType
}

// NewReturn creates a return of v for a method returning rt. v must be nil
// exactly when rt is void.
func NewReturn(rt ReturnType, v Value) (*ReturnInst, error) {
	m := rt.Klass().module
	r := &ReturnInst{returnType: rt}
	r.initInst(r, m, OpReturn, m.types.Void())
	_, void := rt.(*VoidType)
	switch {
	case void && v != nil:
		return nil, typeErrorf("NewReturn", "void return cannot carry a value")
	case !void && v == nil:
		return nil, typeErrorf("NewReturn", "%s return needs a value", rt)
	case void:
		return r, nil
	}
	if err := r.initOperands("NewReturn", v); err != nil {
		return nil, err
	}
	return r, nil
}

// NewReturnVoid creates a void return.
func NewReturnVoid(m *Module) *ReturnInst {
	r, _ := NewReturn(m.types.Void(), nil)
	return r
}

// ReturnType returns the type the instruction returns.
func (r *ReturnInst) ReturnType() ReturnType { return r.returnType }

// Value returns the returned value, nil for void returns.
func (r *ReturnInst) Value() Value { return r.Operand(0) }

func (r *ReturnInst) checkOperand(i int, v Value) error {
	if i != 0 || r.returnType == ReturnType(r.module.types.Void()) {
		return structuralErrorf("ReturnInst", "operand index %d out of range", i)
	}
	return requireSubtype("ReturnInst", i, v, r.returnType)
}

// ThrowInst throws a java.lang.Throwable.
type ThrowInst struct {
	terminatorBase
}

// NewThrow creates a throw of ex.
func NewThrow(ex Value) (*ThrowInst, error) {
	if ex == nil {
		return nil, typeErrorf("NewThrow", "exception is nil")
	}
	m := moduleOf(ex)
	if m == nil {
		return nil, structuralErrorf("NewThrow", "cannot determine module of %s", ex.Type())
	}
	t := &ThrowInst{}
	t.initInst(t, m, OpThrow, m.types.Void())
	if err := t.initOperands("NewThrow", ex); err != nil {
		return nil, err
	}
	return t, nil
}

// Exception returns the thrown value.
func (t *ThrowInst) Exception() Value { return t.Operand(0) }

func (t *ThrowInst) checkOperand(i int, v Value) error {
	if i != 0 {
		return structuralErrorf("ThrowInst", "operand index %d out of range", i)
	}
	throwable, err := t.module.types.Reference(t.module.Klass(ThrowableClass))
	if err != nil {
		return err
	}
	return requireSubtype("ThrowInst", i, v, throwable)
}
