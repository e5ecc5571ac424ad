package ir

// CallInst invokes a method. Operand 0 is the callee, the remaining
// operands are the arguments (receiver first for instance methods).
type CallInst struct {
	instBase
	methodType *MethodType
}

// NewCall creates a call of m with its declared type.
func NewCall(m *Method, args ...Value) (*CallInst, error) {
	if m == nil {
		return nil, typeErrorf("NewCall", "callee is nil")
	}
	if m.IsSignaturePolymorphic() {
		return nil, typeErrorf("NewCall", "%s is signature-polymorphic and needs an explicit call type", m.Signature())
	}
	return NewCallWithType(m, m.MethodType(), args...)
}

// NewCallWithType creates a call of m with call type t. t must be m's type
// unless m is signature-polymorphic, in which case the arguments are not
// checked at all.
func NewCallWithType(m *Method, t *MethodType, args ...Value) (*CallInst, error) {
	if m == nil || t == nil {
		return nil, typeErrorf("NewCall", "callee or call type is nil")
	}
	poly := m.IsSignaturePolymorphic()
	if !poly && Type(t) != m.Type() {
		return nil, typeErrorf("NewCall", "call type %s does not match %s", t, m.Signature())
	}
	if !poly && len(args) != t.NumParams() {
		return nil, typeErrorf("NewCall", "%s takes %d arguments, got %d", m.Signature(), t.NumParams(), len(args))
	}
	c := &CallInst{methodType: t}
	c.initInst(c, m.klass.module, OpCall, t.Return())
	if err := c.initOperands("NewCall", append([]Value{m}, args...)...); err != nil {
		return nil, err
	}
	return c, nil
}

// Method returns the callee.
func (c *CallInst) Method() *Method { return c.Operand(0).(*Method) }

// MethodType returns the call type.
func (c *CallInst) MethodType() *MethodType { return c.methodType }

// Argument returns argument i.
func (c *CallInst) Argument(i int) Value { return c.Operand(i + 1) }

// Arguments returns the arguments in order.
func (c *CallInst) Arguments() []Value { return c.Operands()[1:] }

// NumArguments returns the number of arguments.
func (c *CallInst) NumArguments() int { return c.NumOperands() - 1 }

// CallDescriptor returns the JVM descriptor used at the call site: no
// receiver, and void for constructors.
func (c *CallInst) CallDescriptor() string {
	m := c.Method()
	return jvmDescriptor(c.methodType, m.HasReceiver(), m.IsConstructor())
}

func (c *CallInst) checkOperand(i int, v Value) error {
	const op = "CallInst"
	if i == 0 {
		m, ok := v.(*Method)
		if !ok {
			return typeErrorf(op, "operand 0 must be a method, got %s", v.Type())
		}
		if !m.IsSignaturePolymorphic() && m.Type() != Type(c.methodType) {
			return typeErrorf(op, "callee %s does not have call type %s", m.Signature(), c.methodType)
		}
		return nil
	}
	if callee, ok := c.Operand(0).(*Method); ok && callee.IsSignaturePolymorphic() {
		return requireData(op, i, v)
	}
	if i < 1 || i > c.methodType.NumParams() {
		return structuralErrorf(op, "operand index %d out of range", i)
	}
	p := c.methodType.Param(i - 1)
	if isIntLike(v.Type()) && isIntLike(p) {
		return nil
	}
	return requireSubtype(op, i, v, p)
}
