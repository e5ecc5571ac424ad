package ir

// BinaryOp is an arithmetic, bitwise, shift or comparison operator.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Rem
	Shl
	Shr
	Ushr
	And
	Or
	Xor
	Cmp
	Cmpg
)

var binaryOpInfo = [...]struct {
	name  string
	kinds []PrimitiveKind
}{
	Add:  {"add", []PrimitiveKind{Int, Long, Float, Double}},
	Sub:  {"sub", []PrimitiveKind{Int, Long, Float, Double}},
	Mul:  {"mul", []PrimitiveKind{Int, Long, Float, Double}},
	Div:  {"div", []PrimitiveKind{Int, Long, Float, Double}},
	Rem:  {"rem", []PrimitiveKind{Int, Long, Float, Double}},
	Shl:  {"shl", []PrimitiveKind{Int, Long}},
	Shr:  {"shr", []PrimitiveKind{Int, Long}},
	Ushr: {"ushr", []PrimitiveKind{Int, Long}},
	And:  {"and", []PrimitiveKind{Int, Long}},
	Or:   {"or", []PrimitiveKind{Int, Long}},
	Xor:  {"xor", []PrimitiveKind{Int, Long}},
	Cmp:  {"cmp", []PrimitiveKind{Long, Float, Double}},
	Cmpg: {"cmpg", []PrimitiveKind{Float, Double}},
}

func (op BinaryOp) String() string { return binaryOpInfo[op].name }

// ParseBinaryOp looks an operator up by name.
func ParseBinaryOp(name string) (BinaryOp, bool) {
	for op := range binaryOpInfo {
		if binaryOpInfo[op].name == name {
			return BinaryOp(op), true
		}
	}
	return 0, false
}

// IsShift reports whether op is a shift.
func (op BinaryOp) IsShift() bool { return op == Shl || op == Shr || op == Ushr }

// IsComparison reports whether op is CMP or CMPG.
func (op BinaryOp) IsComparison() bool { return op == Cmp || op == Cmpg }

// AppliesTo reports whether op is defined on operands of kind k after int
// promotion.
func (op BinaryOp) AppliesTo(t *PrimitiveType) bool {
	k := promotedKind(t)
	for _, ok := range binaryOpInfo[op].kinds {
		if ok == k {
			return true
		}
	}
	return false
}

func promotedKind(t *PrimitiveType) PrimitiveKind {
	if t.IsIntLike() {
		return Int
	}
	return t.kind
}

// BinaryInst computes left op right.
type BinaryInst struct {
	instBase
	binop BinaryOp
}

// NewBinary creates left op right.
//
// The result is int for comparisons and for any pair of operands that
// promote to int; otherwise both operands must have the same type, which is
// also the result type. A shift takes an int shift distance.
func NewBinary(left Value, op BinaryOp, right Value) (*BinaryInst, error) {
	if left == nil || right == nil {
		return nil, typeErrorf("NewBinary", "operand is nil")
	}
	t, err := binaryResultType(op, left.Type(), right.Type())
	if err != nil {
		return nil, err
	}
	b := &BinaryInst{binop: op}
	b.initInst(b, t.klass.module, OpBinary, t)
	if err := b.initOperands("NewBinary", left, right); err != nil {
		return nil, err
	}
	return b, nil
}

func binaryResultType(op BinaryOp, lt, rt Type) (*PrimitiveType, error) {
	l, lok := lt.(*PrimitiveType)
	r, rok := rt.(*PrimitiveType)
	if !lok || !rok {
		return nil, typeErrorf("NewBinary", "%s needs primitive operands, got %s and %s", op, lt, rt)
	}
	if !op.AppliesTo(l) {
		return nil, typeErrorf("NewBinary", "%s is not defined on %s", op, l)
	}
	if op.IsShift() {
		if !r.IsIntLike() {
			return nil, typeErrorf("NewBinary", "%s distance must be int, got %s", op, r)
		}
		if l.IsIntLike() {
			return l.tf.Int(), nil
		}
		return l, nil
	}
	if !op.AppliesTo(r) {
		return nil, typeErrorf("NewBinary", "%s is not defined on %s", op, r)
	}
	tf := l.tf
	if l.IsIntLike() && r.IsIntLike() {
		return tf.Int(), nil
	}
	if l != r {
		return nil, typeErrorf("NewBinary", "%s operands must have the same type, got %s and %s", op, l, r)
	}
	if op.IsComparison() {
		return tf.Int(), nil
	}
	return l, nil
}

// Op returns the operator.
func (b *BinaryInst) Op() BinaryOp { return b.binop }

// Left returns the first operand.
func (b *BinaryInst) Left() Value { return b.Operand(0) }

// Right returns the second operand.
func (b *BinaryInst) Right() Value { return b.Operand(1) }

// checkOperand requires the replacement to keep the computed type.
func (b *BinaryInst) checkOperand(i int, v Value) error {
	if i < 0 || i > 1 {
		return structuralErrorf("BinaryInst", "operand index %d out of range", i)
	}
	other := b.Operand(1 - i)
	if other == nil {
		p, ok := v.Type().(*PrimitiveType)
		if !ok || (!b.binop.AppliesTo(p) && !(i == 1 && b.binop.IsShift() && p.IsIntLike())) {
			return typeErrorf("BinaryInst", "operand %d: %s is not defined on %s", i, b.binop, v.Type())
		}
		return nil
	}
	l, r := v, other
	if i == 1 {
		l, r = other, v
	}
	t, err := binaryResultType(b.binop, l.Type(), r.Type())
	if err != nil {
		return err
	}
	if Type(t) != b.typ {
		return typeErrorf("BinaryInst", "operand %d: result type would change from %s to %s", i, b.typ, t)
	}
	return nil
}
