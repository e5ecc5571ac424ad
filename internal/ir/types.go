package ir

import "strings"

// Type is a sealed interface for the interned IR types.
// Types are created only by a Module's TypeFactory, so two types are equal
// exactly when they are the same pointer.
type Type interface {
	// IsSubtypeOf reports whether a value of this type may be used where
	// other is expected.
	IsSubtypeOf(other Type) bool

	// String returns a human-readable rendering.
	String() string

	isType()
}

// ReturnType is a type a method may return: void or a RegularType.
type ReturnType interface {
	Type

	// Klass returns the backing klass (the pseudo-klass for void and
	// primitives).
	Klass() *Klass

	// Descriptor returns the JVM descriptor, e.g. "I" or "Ljava/lang/Object;".
	Descriptor() string

	returnType()
}

// RegularType is a type a value can hold: primitive, reference or array.
type RegularType interface {
	ReturnType

	// Category returns the number of JVM stack slots the type occupies.
	Category() int

	regularType()
}

// RefType is a reference-valued RegularType: a class type or an array type.
type RefType interface {
	RegularType
	referenceType()
}

// PrimitiveKind enumerates the JVM primitive types.
type PrimitiveKind int

const (
	Boolean PrimitiveKind = iota
	Byte
	Char
	Short
	Int
	Long
	Float
	Double
)

var primitiveInfo = [...]struct {
	name    string
	desc    string
	wrapper string
	unbox   string
}{
	Boolean: {"boolean", "Z", "java.lang.Boolean", "booleanValue"},
	Byte:    {"byte", "B", "java.lang.Byte", "byteValue"},
	Char:    {"char", "C", "java.lang.Character", "charValue"},
	Short:   {"short", "S", "java.lang.Short", "shortValue"},
	Int:     {"int", "I", "java.lang.Integer", "intValue"},
	Long:    {"long", "J", "java.lang.Long", "longValue"},
	Float:   {"float", "F", "java.lang.Float", "floatValue"},
	Double:  {"double", "D", "java.lang.Double", "doubleValue"},
}

// PrimitiveKinds lists every primitive kind in declaration order.
var PrimitiveKinds = []PrimitiveKind{Boolean, Byte, Char, Short, Int, Long, Float, Double}

// String returns the Java keyword for the kind.
func (k PrimitiveKind) String() string { return primitiveInfo[k].name }

// Descriptor returns the one-letter JVM descriptor.
func (k PrimitiveKind) Descriptor() string { return primitiveInfo[k].desc }

// WrapperName returns the binary name of the boxing class.
func (k PrimitiveKind) WrapperName() string { return primitiveInfo[k].wrapper }

// UnboxMethodName returns the name of the wrapper's unboxing accessor.
func (k PrimitiveKind) UnboxMethodName() string { return primitiveInfo[k].unbox }

// VoidType is the return type of methods without a result, and the type of
// every instruction that produces no value.
type VoidType struct {
	klass *Klass
}

func (*VoidType) isType()     {}
func (*VoidType) returnType() {}

// Klass returns the void pseudo-klass.
func (t *VoidType) Klass() *Klass { return t.klass }

// Descriptor returns "V".
func (*VoidType) Descriptor() string { return "V" }

// IsSubtypeOf holds only for void itself.
func (t *VoidType) IsSubtypeOf(other Type) bool { return other == Type(t) }

func (*VoidType) String() string { return "void" }

// NullType is the type of the null constant.
type NullType struct{}

func (*NullType) isType() {}

// IsSubtypeOf holds for null itself, void, and every reference or array type.
func (t *NullType) IsSubtypeOf(other Type) bool {
	switch other.(type) {
	case *NullType, *VoidType, *ReferenceType, *ArrayType:
		return true
	}
	return false
}

func (*NullType) String() string { return "null" }

// PrimitiveType is one of the eight JVM primitive types.
type PrimitiveType struct {
	kind  PrimitiveKind
	klass *Klass
	tf    *TypeFactory
}

func (*PrimitiveType) isType()      {}
func (*PrimitiveType) returnType()  {}
func (*PrimitiveType) regularType() {}

// Kind returns the primitive kind.
func (t *PrimitiveType) Kind() PrimitiveKind { return t.kind }

// Klass returns the primitive pseudo-klass.
func (t *PrimitiveType) Klass() *Klass { return t.klass }

// Descriptor returns the one-letter descriptor.
func (t *PrimitiveType) Descriptor() string { return t.kind.Descriptor() }

// Category returns 2 for long and double, 1 otherwise.
func (t *PrimitiveType) Category() int {
	if t.kind == Long || t.kind == Double {
		return 2
	}
	return 1
}

// IsIntegral reports whether the type is an integer type (including
// boolean and char, which the JVM computes with as int).
func (t *PrimitiveType) IsIntegral() bool {
	return t.kind != Float && t.kind != Double
}

// IsIntLike reports whether values of the type are computed with as int.
func (t *PrimitiveType) IsIntLike() bool {
	return t.kind != Long && t.kind != Float && t.kind != Double
}

// Wrapper returns the boxing class type, or nil if the module cannot
// resolve it.
func (t *PrimitiveType) Wrapper() *ReferenceType {
	k := t.tf.module.Klass(t.kind.WrapperName())
	if k == nil {
		return nil
	}
	rt, err := t.tf.Reference(k)
	if err != nil {
		return nil
	}
	return rt
}

// IsSubtypeOf implements JVM int promotion: boolean, byte, char and short
// are subtypes of int, byte is a subtype of short.
func (t *PrimitiveType) IsSubtypeOf(other Type) bool {
	o, ok := other.(*PrimitiveType)
	if !ok {
		return false
	}
	if o == t {
		return true
	}
	switch o.kind {
	case Int:
		return t.IsIntLike()
	case Short:
		return t.kind == Byte
	}
	return false
}

func (t *PrimitiveType) String() string { return t.kind.String() }

// ReferenceType is the type of references to instances of a class or
// interface klass.
type ReferenceType struct {
	klass *Klass
	tf    *TypeFactory
}

func (*ReferenceType) isType()        {}
func (*ReferenceType) returnType()    {}
func (*ReferenceType) regularType()   {}
func (*ReferenceType) referenceType() {}

// Klass returns the class or interface.
func (t *ReferenceType) Klass() *Klass { return t.klass }

// Descriptor returns "L" + internal name + ";".
func (t *ReferenceType) Descriptor() string { return classDescriptor(t.klass.Name()) }

// Category is always 1.
func (*ReferenceType) Category() int { return 1 }

// Unwrap returns the primitive boxed by this wrapper class.
func (t *ReferenceType) Unwrap() (*PrimitiveType, bool) {
	for _, k := range PrimitiveKinds {
		if k.WrapperName() == t.klass.Name() {
			return t.tf.Primitive(k), true
		}
	}
	return nil, false
}

// IsSubtypeOf holds if other is a class type for this klass or one of its
// superclasses or superinterfaces.
func (t *ReferenceType) IsSubtypeOf(other Type) bool {
	o, ok := other.(*ReferenceType)
	if !ok {
		return false
	}
	return t.klass.isSubclassOf(o.klass)
}

func (t *ReferenceType) String() string { return t.klass.Name() }

// ArrayType is the type of arrays of a RegularType element with a fixed
// number of dimensions.
type ArrayType struct {
	klass     *Klass
	element   RegularType
	component RegularType
	dims      int
}

func (*ArrayType) isType()        {}
func (*ArrayType) returnType()    {}
func (*ArrayType) regularType()   {}
func (*ArrayType) referenceType() {}

// Klass returns the array klass.
func (t *ArrayType) Klass() *Klass { return t.klass }

// Element returns the innermost non-array type.
func (t *ArrayType) Element() RegularType { return t.element }

// Component returns the type one dimension down.
func (t *ArrayType) Component() RegularType { return t.component }

// Dimensions returns the number of array dimensions.
func (t *ArrayType) Dimensions() int { return t.dims }

// Descriptor returns "[" + component descriptor.
func (t *ArrayType) Descriptor() string { return "[" + t.component.Descriptor() }

// Category is always 1.
func (*ArrayType) Category() int { return 1 }

// IsSubtypeOf uses the covariant array rules: primitive components must be
// identical, reference components recurse, and an array is otherwise a
// subtype only of Object and the interfaces every array implements.
func (t *ArrayType) IsSubtypeOf(other Type) bool {
	switch o := other.(type) {
	case *ArrayType:
		if o == t {
			return true
		}
		switch c := t.component.(type) {
		case *PrimitiveType:
			return Type(c) == Type(o.component)
		case RefType:
			oc, ok := o.component.(RefType)
			return ok && c.IsSubtypeOf(oc)
		}
		return false
	case *ReferenceType:
		return t.klass.isSubclassOf(o.klass)
	}
	return false
}

func (t *ArrayType) String() string {
	return t.element.String() + strings.Repeat("[]", t.dims)
}

// FieldType is the type of a field or local variable. A static field type
// has no instance type; an instance field type also records the type of
// the object holding the field.
type FieldType struct {
	stored   RegularType
	instance RefType
}

func (*FieldType) isType() {}

// Stored returns the type of the value held in the location.
func (t *FieldType) Stored() RegularType { return t.stored }

// Instance returns the holder type, nil for static locations.
func (t *FieldType) Instance() RefType { return t.instance }

// IsStatic reports whether the location needs no instance.
func (t *FieldType) IsStatic() bool { return t.instance == nil }

// IsSubtypeOf requires the same static-ness and covariant instance and
// stored types.
func (t *FieldType) IsSubtypeOf(other Type) bool {
	o, ok := other.(*FieldType)
	if !ok {
		return false
	}
	if o == t {
		return true
	}
	if t.IsStatic() != o.IsStatic() {
		return false
	}
	if !t.IsStatic() && !t.instance.IsSubtypeOf(o.instance) {
		return false
	}
	return t.stored.IsSubtypeOf(o.stored)
}

func (t *FieldType) String() string {
	if t.instance == nil {
		return "field<" + t.stored.String() + ">"
	}
	return "field<" + t.instance.String() + ", " + t.stored.String() + ">"
}

// MethodType is the type of a method: a return type and parameter types.
// Instance methods include the receiver as the first parameter.
type MethodType struct {
	ret    ReturnType
	params []RegularType
	desc   string
	tf     *TypeFactory
}

func (*MethodType) isType() {}

// Return returns the return type.
func (t *MethodType) Return() ReturnType { return t.ret }

// Params returns a copy of the parameter types.
func (t *MethodType) Params() []RegularType {
	out := make([]RegularType, len(t.params))
	copy(out, t.params)
	return out
}

// NumParams returns the number of parameters.
func (t *MethodType) NumParams() int { return len(t.params) }

// Param returns parameter i.
func (t *MethodType) Param(i int) RegularType { return t.params[i] }

// Descriptor returns the JVM method descriptor, e.g. "(IJ)V".
func (t *MethodType) Descriptor() string { return t.desc }

// WithReturnType returns the method type with ret as the return type.
func (t *MethodType) WithReturnType(ret ReturnType) *MethodType {
	return t.tf.MethodType(ret, t.params...)
}

// PrependArgument returns the method type with p as first parameter.
func (t *MethodType) PrependArgument(p RegularType) *MethodType {
	return t.tf.MethodType(t.ret, append([]RegularType{p}, t.params...)...)
}

// AppendArgument returns the method type with p as last parameter.
func (t *MethodType) AppendArgument(p RegularType) *MethodType {
	return t.tf.MethodType(t.ret, append(t.Params(), p)...)
}

// DropFirstArgument returns the method type without its first parameter.
func (t *MethodType) DropFirstArgument() (*MethodType, error) {
	if len(t.params) == 0 {
		return nil, typeErrorf("DropFirstArgument", "%s has no parameters", t.desc)
	}
	return t.tf.MethodType(t.ret, t.params[1:]...), nil
}

// DropLastArgument returns the method type without its last parameter.
func (t *MethodType) DropLastArgument() (*MethodType, error) {
	if len(t.params) == 0 {
		return nil, typeErrorf("DropLastArgument", "%s has no parameters", t.desc)
	}
	return t.tf.MethodType(t.ret, t.params[:len(t.params)-1]...), nil
}

// IsSubtypeOf holds only for the identical method type.
func (t *MethodType) IsSubtypeOf(other Type) bool { return other == Type(t) }

func (t *MethodType) String() string { return t.desc }

// BasicBlockType is the type of basic blocks used as branch targets.
type BasicBlockType struct{}

func (*BasicBlockType) isType() {}

// IsSubtypeOf holds only for the basic block type.
func (t *BasicBlockType) IsSubtypeOf(other Type) bool { return other == Type(t) }

func (*BasicBlockType) String() string { return "label" }

// classDescriptor converts a binary class name to a descriptor.
func classDescriptor(name string) string {
	return "L" + internalName(name) + ";"
}

// internalName converts "java.lang.Object" to "java/lang/Object".
func internalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// binaryName converts "java/lang/Object" to "java.lang.Object".
func binaryName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// isIntLike reports whether t is a primitive computed with as int.
func isIntLike(t Type) bool {
	p, ok := t.(*PrimitiveType)
	return ok && p.IsIntLike()
}

// isReferenceLike reports whether t is a reference, array or null type.
func isReferenceLike(t Type) bool {
	switch t.(type) {
	case *ReferenceType, *ArrayType, *NullType:
		return true
	}
	return false
}
