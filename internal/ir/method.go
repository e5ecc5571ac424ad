package ir

import "fmt"

// Reserved method names.
const (
	ConstructorName       = "<init>"
	StaticInitializerName = "<clinit>"
)

// Method is a method of a klass. As a Value it is typed by its MethodType
// and is the callee operand of CallInst.
//
// A resolved method has a body made of basic blocks and local variables;
// the body may still be empty while it is being built. Methods installed
// from descriptors, abstract and native methods are unresolved.
type Method struct {
	valueBase
	lnk       Link[*Method]
	parent    *Klass
	klass     *Klass
	modifiers Modifiers
	resolved  bool
	arguments []*Argument
	blocks    *List[*Method, *BasicBlock]
	locals    *List[*Method, *LocalVariable]
}

func newMethod(k *Klass, name string, t *MethodType, mods Modifiers, mutable bool) *Method {
	m := &Method{klass: k, modifiers: mods}
	m.init(m, t, name)
	m.resolved = mutable && !mods.Has(Abstract) && !mods.Has(Native)
	m.blocks = newList[*Method, *BasicBlock](m)
	m.locals = newList[*Method, *LocalVariable](m)
	if !m.resolved {
		m.blocks.Freeze()
		m.locals.Freeze()
	}
	for i, p := range t.params {
		a := &Argument{method: m, index: i}
		name := fmt.Sprintf("arg%d", i)
		if m.HasReceiver() {
			name = fmt.Sprintf("arg%d", i-1)
			if i == 0 {
				name = "this"
			}
		}
		a.init(a, p, name)
		m.arguments = append(m.arguments, a)
	}
	return m
}

// Parent returns the owning klass, nil once removed.
func (m *Method) Parent() *Klass       { return m.parent }
func (m *Method) setParent(p *Klass)   { m.parent = p }
func (m *Method) link() *Link[*Method] { return &m.lnk }

// Klass returns the declaring klass.
func (m *Method) Klass() *Klass { return m.klass }

// MethodType returns the IR method type.
func (m *Method) MethodType() *MethodType { return m.typ.(*MethodType) }

// ReturnType returns the declared return type.
func (m *Method) ReturnType() ReturnType { return m.MethodType().Return() }

// Modifiers returns the method modifiers.
func (m *Method) Modifiers() Modifiers { return m.modifiers }

// Access returns the visibility.
func (m *Method) Access() Access { return AccessOf(m.modifiers) }

// SetAccess changes the visibility of a mutable method.
func (m *Method) SetAccess(a Access) error {
	if !m.IsMutable() {
		return structuralErrorf("Method.SetAccess", "%s is immutable", m.Signature())
	}
	m.modifiers = m.modifiers.WithAccess(a)
	return nil
}

// SetName renames a mutable method.
func (m *Method) SetName(name string) error {
	if !m.IsMutable() {
		return structuralErrorf("Method.SetName", "%s is immutable", m.Signature())
	}
	if name == "" {
		return structuralErrorf("Method.SetName", "method name is empty")
	}
	if other := m.klass.Method(name, m.MethodType()); other != nil && other != m {
		return structuralErrorf("Method.SetName", "%s already has %s%s", m.klass.name, name, m.Descriptor())
	}
	m.name = name
	return nil
}

// IsMutable reports whether the declaring klass is mutable.
func (m *Method) IsMutable() bool { return m.klass.mutable }

// IsResolved reports whether the method has a body.
func (m *Method) IsResolved() bool { return m.resolved }

// IsStatic reports whether the method is static.
func (m *Method) IsStatic() bool { return m.modifiers.Has(Static) }

// IsAbstract reports whether the method is abstract.
func (m *Method) IsAbstract() bool { return m.modifiers.Has(Abstract) }

// IsNative reports whether the method is native.
func (m *Method) IsNative() bool { return m.modifiers.Has(Native) }

// IsConstructor reports whether the method is an instance initializer.
func (m *Method) IsConstructor() bool { return m.name == ConstructorName }

// IsStaticInitializer reports whether the method is the class initializer.
func (m *Method) IsStaticInitializer() bool { return m.name == StaticInitializerName }

// HasReceiver reports whether the first argument is the receiver.
func (m *Method) HasReceiver() bool {
	return !m.IsStatic() && !m.IsConstructor() && !m.IsStaticInitializer()
}

// IsSignaturePolymorphic reports whether the method accepts any argument
// list, like MethodHandle.invokeExact.
func (m *Method) IsSignaturePolymorphic() bool {
	switch m.klass.name {
	case "java.lang.invoke.MethodHandle", "java.lang.invoke.VarHandle":
	default:
		return false
	}
	return m.IsNative() && m.modifiers.Has(Varargs) &&
		m.Descriptor() == "([Ljava/lang/Object;)Ljava/lang/Object;"
}

// Descriptor returns the JVM descriptor: no receiver, and void for
// constructors.
func (m *Method) Descriptor() string { return jvmDescriptor(m.MethodType(), m.HasReceiver(), m.IsConstructor()) }

// Signature returns the stable key "owner.name(desc)".
func (m *Method) Signature() string { return m.klass.name + "." + m.name + m.Descriptor() }

func jvmDescriptor(t *MethodType, receiver, constructor bool) string {
	if receiver && t.NumParams() > 0 {
		t, _ = t.DropFirstArgument()
	}
	if constructor {
		t = t.WithReturnType(t.tf.Void())
	}
	return t.Descriptor()
}

// Arguments returns the arguments, receiver first when present.
func (m *Method) Arguments() []*Argument { return append([]*Argument(nil), m.arguments...) }

// Argument returns argument i.
func (m *Method) Argument(i int) *Argument { return m.arguments[i] }

// Receiver returns the receiver argument or nil.
func (m *Method) Receiver() *Argument {
	if !m.HasReceiver() {
		return nil
	}
	return m.arguments[0]
}

// Blocks returns the basic block list. The first block is the entry.
func (m *Method) Blocks() *List[*Method, *BasicBlock] { return m.blocks }

// EntryBlock returns the first block or nil.
func (m *Method) EntryBlock() *BasicBlock { return m.blocks.First() }

// NewBlock appends a new empty block to a resolved method.
func (m *Method) NewBlock(name string) (*BasicBlock, error) {
	b := NewBasicBlock(m.klass.module, name)
	if err := m.blocks.Append(b); err != nil {
		return nil, err
	}
	return b, nil
}

// LocalVariables returns the local variable list.
func (m *Method) LocalVariables() *List[*Method, *LocalVariable] { return m.locals }

// NewLocal appends a new local variable holding values of type t.
func (m *Method) NewLocal(t RegularType, name string) (*LocalVariable, error) {
	v := &LocalVariable{}
	v.init(v, m.klass.module.types.StaticFieldType(t), name)
	if err := m.locals.Append(v); err != nil {
		return nil, err
	}
	return v, nil
}

// RemoveFromParent unlinks the method from its klass.
func (m *Method) RemoveFromParent() error {
	if m.parent == nil {
		return structuralErrorf("Method.RemoveFromParent", "method has no parent")
	}
	return m.parent.methods.Remove(m)
}

func (m *Method) String() string { return m.Signature() }

// Argument is a formal parameter of a method.
type Argument struct {
	valueBase
	method *Method
	index  int
}

// Parent returns the method declaring the argument.
func (a *Argument) Parent() *Method { return a.method }

// Index returns the parameter position, counting the receiver.
func (a *Argument) Index() int { return a.index }

// IsReceiver reports whether the argument is the receiver.
func (a *Argument) IsReceiver() bool { return a.index == 0 && a.method.HasReceiver() }

// LocalVariable is a method-scoped storage slot accessed through LoadInst
// and StoreInst. Its type is a static FieldType over the stored type.
type LocalVariable struct {
	valueBase
	lnk    Link[*LocalVariable]
	parent *Method
}

// Parent returns the owning method, nil once removed.
func (v *LocalVariable) Parent() *Method             { return v.parent }
func (v *LocalVariable) setParent(p *Method)         { v.parent = p }
func (v *LocalVariable) link() *Link[*LocalVariable] { return &v.lnk }

// FieldType returns the location type.
func (v *LocalVariable) FieldType() *FieldType { return v.typ.(*FieldType) }

// Stored returns the type of the value held by the variable.
func (v *LocalVariable) Stored() RegularType { return v.FieldType().Stored() }

// RemoveFromParent unlinks the variable from its method.
func (v *LocalVariable) RemoveFromParent() error {
	if v.parent == nil {
		return structuralErrorf("LocalVariable.RemoveFromParent", "variable has no parent")
	}
	return v.parent.locals.Remove(v)
}
