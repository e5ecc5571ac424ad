package ir

import (
	"strings"
)

// TypeFactory interns every Type of a Module.
type TypeFactory struct {
	module    *Module
	void      *VoidType
	null      *NullType
	block     *BasicBlockType
	prims     [len(primitiveInfo)]*PrimitiveType
	refs      map[*Klass]*ReferenceType
	arrays    map[*Klass]*ArrayType
	methods   map[string]*MethodType
	statics   map[RegularType]*FieldType
	instances map[instanceFieldKey]*FieldType
}

type instanceFieldKey struct {
	instance RefType
	stored   RegularType
}

func newTypeFactory(m *Module) *TypeFactory {
	return &TypeFactory{
		module:    m,
		null:      &NullType{},
		block:     &BasicBlockType{},
		refs:      make(map[*Klass]*ReferenceType),
		arrays:    make(map[*Klass]*ArrayType),
		methods:   make(map[string]*MethodType),
		statics:   make(map[RegularType]*FieldType),
		instances: make(map[instanceFieldKey]*FieldType),
	}
}

// Void returns the void type.
func (tf *TypeFactory) Void() *VoidType { return tf.void }

// Null returns the type of the null constant.
func (tf *TypeFactory) Null() *NullType { return tf.null }

// BasicBlock returns the type of basic blocks.
func (tf *TypeFactory) BasicBlock() *BasicBlockType { return tf.block }

// Primitive returns the primitive type of the given kind.
func (tf *TypeFactory) Primitive(k PrimitiveKind) *PrimitiveType { return tf.prims[k] }

// Int returns the int type.
func (tf *TypeFactory) Int() *PrimitiveType { return tf.prims[Int] }

// Boolean returns the boolean type.
func (tf *TypeFactory) Boolean() *PrimitiveType { return tf.prims[Boolean] }

// Object returns the java.lang.Object type.
func (tf *TypeFactory) Object() *ReferenceType { return tf.refs[tf.module.object] }

// Type returns the type backed by klass: void, primitive, reference or array.
func (tf *TypeFactory) Type(k *Klass) ReturnType {
	switch k.kind {
	case klassVoid:
		return tf.void
	case klassPrimitive:
		return tf.prims[k.prim]
	case klassArray:
		return tf.arrayFor(k)
	}
	return tf.referenceFor(k)
}

// Regular returns the type backed by klass, failing for void.
func (tf *TypeFactory) Regular(k *Klass) (RegularType, error) {
	rt, ok := tf.Type(k).(RegularType)
	if !ok {
		return nil, typeErrorf("Regular", "%s is not a regular type", k.Name())
	}
	return rt, nil
}

// Reference returns the class type of a class or interface klass.
func (tf *TypeFactory) Reference(k *Klass) (*ReferenceType, error) {
	if k.kind != klassClass {
		return nil, typeErrorf("Reference", "%s is not a class or interface", k.Name())
	}
	return tf.referenceFor(k), nil
}

// RefOf returns the reference or array type of a non-primitive klass.
func (tf *TypeFactory) RefOf(k *Klass) (RefType, error) {
	rt, ok := tf.Type(k).(RefType)
	if !ok {
		return nil, typeErrorf("RefOf", "%s is not a reference type", k.Name())
	}
	return rt, nil
}

func (tf *TypeFactory) referenceFor(k *Klass) *ReferenceType {
	if rt, ok := tf.refs[k]; ok {
		return rt
	}
	rt := &ReferenceType{klass: k, tf: tf}
	tf.refs[k] = rt
	return rt
}

// Array returns the array type with the given element and dimensions.
// An array element adds its own dimensions.
func (tf *TypeFactory) Array(element RegularType, dims int) (*ArrayType, error) {
	if dims < 1 {
		return nil, typeErrorf("Array", "dimensions must be positive, got %d", dims)
	}
	k, err := tf.module.ArrayKlass(element.Klass(), dims)
	if err != nil {
		return nil, err
	}
	return tf.arrayFor(k), nil
}

// ArrayOf returns the array type backed by an array klass.
func (tf *TypeFactory) ArrayOf(k *Klass) (*ArrayType, error) {
	if k.kind != klassArray {
		return nil, typeErrorf("ArrayOf", "%s is not an array klass", k.Name())
	}
	return tf.arrayFor(k), nil
}

func (tf *TypeFactory) arrayFor(k *Klass) *ArrayType {
	if at, ok := tf.arrays[k]; ok {
		return at
	}
	at := &ArrayType{
		klass:     k,
		element:   tf.Type(k.element).(RegularType),
		component: tf.Type(k.component).(RegularType),
		dims:      k.dims,
	}
	tf.arrays[k] = at
	return at
}

// MethodType returns the method type with the given return and parameter
// types.
func (tf *TypeFactory) MethodType(ret ReturnType, params ...RegularType) *MethodType {
	var sb strings.Builder
	sb.WriteByte('(')
	for _, p := range params {
		sb.WriteString(p.Descriptor())
	}
	sb.WriteByte(')')
	sb.WriteString(ret.Descriptor())
	desc := sb.String()
	if mt, ok := tf.methods[desc]; ok {
		return mt
	}
	mt := &MethodType{ret: ret, params: append([]RegularType(nil), params...), desc: desc, tf: tf}
	tf.methods[desc] = mt
	return mt
}

// StaticFieldType returns the type of a static location holding stored.
func (tf *TypeFactory) StaticFieldType(stored RegularType) *FieldType {
	if ft, ok := tf.statics[stored]; ok {
		return ft
	}
	ft := &FieldType{stored: stored}
	tf.statics[stored] = ft
	return ft
}

// InstanceFieldType returns the type of an instance field of instance
// holding stored.
func (tf *TypeFactory) InstanceFieldType(instance RefType, stored RegularType) *FieldType {
	key := instanceFieldKey{instance: instance, stored: stored}
	if ft, ok := tf.instances[key]; ok {
		return ft
	}
	ft := &FieldType{stored: stored, instance: instance}
	tf.instances[key] = ft
	return ft
}

// FieldTypeOf returns the location type of a field or local variable.
func (tf *TypeFactory) FieldTypeOf(v Value) (*FieldType, error) {
	return locationType("FieldTypeOf", 0, v)
}

// FromDescriptor returns the type named by a JVM field descriptor or "V".
// Referenced classes are resolved through the module.
func (tf *TypeFactory) FromDescriptor(desc string) (ReturnType, error) {
	t, n, err := tf.parseDescriptor(desc, 0)
	if err != nil {
		return nil, err
	}
	if n != len(desc) {
		return nil, typeErrorf("FromDescriptor", "trailing characters in %q", desc)
	}
	return t, nil
}

// RegularFromDescriptor is FromDescriptor restricted to regular types.
func (tf *TypeFactory) RegularFromDescriptor(desc string) (RegularType, error) {
	t, err := tf.FromDescriptor(desc)
	if err != nil {
		return nil, err
	}
	rt, ok := t.(RegularType)
	if !ok {
		return nil, typeErrorf("RegularFromDescriptor", "%q is not a regular type", desc)
	}
	return rt, nil
}

// MethodTypeFromDescriptor parses a JVM method descriptor such as
// "(ILjava/lang/String;)V".
func (tf *TypeFactory) MethodTypeFromDescriptor(desc string) (*MethodType, error) {
	if !strings.HasPrefix(desc, "(") {
		return nil, typeErrorf("MethodTypeFromDescriptor", "%q does not start with '('", desc)
	}
	var params []RegularType
	pos := 1
	for pos < len(desc) && desc[pos] != ')' {
		t, n, err := tf.parseDescriptor(desc, pos)
		if err != nil {
			return nil, err
		}
		rt, ok := t.(RegularType)
		if !ok {
			return nil, typeErrorf("MethodTypeFromDescriptor", "void parameter in %q", desc)
		}
		params = append(params, rt)
		pos = n
	}
	if pos >= len(desc) {
		return nil, typeErrorf("MethodTypeFromDescriptor", "unterminated parameter list in %q", desc)
	}
	ret, err := tf.FromDescriptor(desc[pos+1:])
	if err != nil {
		return nil, err
	}
	return tf.MethodType(ret, params...), nil
}

func (tf *TypeFactory) parseDescriptor(desc string, pos int) (ReturnType, int, error) {
	if pos >= len(desc) {
		return nil, pos, typeErrorf("FromDescriptor", "truncated descriptor %q", desc)
	}
	c := desc[pos]
	if c == 'V' {
		return tf.void, pos + 1, nil
	}
	for _, k := range PrimitiveKinds {
		if k.Descriptor()[0] == c {
			return tf.prims[k], pos + 1, nil
		}
	}
	switch c {
	case 'L':
		end := strings.IndexByte(desc[pos:], ';')
		if end < 0 {
			return nil, pos, typeErrorf("FromDescriptor", "unterminated class name in %q", desc)
		}
		name := binaryName(desc[pos+1 : pos+end])
		k, err := tf.module.LookupKlass(name)
		if err != nil {
			return nil, pos, err
		}
		if k == nil {
			return nil, pos, typeErrorf("FromDescriptor", "unknown class %s", name)
		}
		return tf.Type(k), pos + end + 1, nil
	case '[':
		dims := 0
		for pos < len(desc) && desc[pos] == '[' {
			dims++
			pos++
		}
		elem, n, err := tf.parseDescriptor(desc, pos)
		if err != nil {
			return nil, n, err
		}
		rt, ok := elem.(RegularType)
		if !ok {
			return nil, n, typeErrorf("FromDescriptor", "array of void in %q", desc)
		}
		at, err := tf.Array(rt, dims)
		if err != nil {
			return nil, n, err
		}
		return at, n, nil
	}
	return nil, pos, typeErrorf("FromDescriptor", "unexpected %q at %d in %q", c, pos, desc)
}

// ByName returns the type for a source-level name such as "int",
// "java.lang.String" or "long[][]".
func (tf *TypeFactory) ByName(name string) (ReturnType, error) {
	dims := 0
	for strings.HasSuffix(name, "[]") {
		dims++
		name = strings.TrimSuffix(name, "[]")
	}
	var base ReturnType
	if name == "void" {
		base = tf.void
	}
	for _, k := range PrimitiveKinds {
		if k.String() == name {
			base = tf.prims[k]
		}
	}
	if base == nil {
		k, err := tf.module.LookupKlass(name)
		if err != nil {
			return nil, err
		}
		if k == nil {
			return nil, typeErrorf("ByName", "unknown class %s", name)
		}
		base = tf.Type(k)
	}
	if dims == 0 {
		return base, nil
	}
	rt, ok := base.(RegularType)
	if !ok {
		return nil, typeErrorf("ByName", "array of void")
	}
	return tf.Array(rt, dims)
}
