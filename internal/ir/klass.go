package ir

type klassKind int

const (
	klassClass klassKind = iota
	klassPrimitive
	klassVoid
	klassArray
)

// Klass is a class, interface, array class, or the pseudo-klass of a
// primitive or void. Klasses live in their Module's klass list.
//
// Mutable klasses are created with Module.NewKlass and accept new fields
// and methods. Klasses installed from a ClassDescriptor, array klasses and
// pseudo-klasses are immutable.
type Klass struct {
	lnk    Link[*Klass]
	parent *Module
	module *Module

	name       string
	kind       klassKind
	prim       PrimitiveKind
	modifiers  Modifiers
	superclass *Klass
	interfaces []*Klass
	fields     *List[*Klass, *Field]
	methods    *List[*Klass, *Method]
	mutable    bool

	desc      *ClassDescriptor
	populated bool

	element   *Klass
	component *Klass
	dims      int
}

// Parent returns the owning Module, nil once removed.
func (k *Klass) Parent() *Module     { return k.parent }
func (k *Klass) setParent(p *Module) { k.parent = p }
func (k *Klass) link() *Link[*Klass] { return &k.lnk }

// Module returns the module the klass was created in.
func (k *Klass) Module() *Module { return k.module }

// Name returns the binary name.
func (k *Klass) Name() string { return k.name }

// Modifiers returns the class modifiers.
func (k *Klass) Modifiers() Modifiers { return k.modifiers }

// SetModifiers replaces the modifiers of a mutable klass.
func (k *Klass) SetModifiers(mods Modifiers) error {
	if !k.mutable {
		return structuralErrorf("Klass.SetModifiers", "%s is immutable", k.name)
	}
	if bad, ok := mods.validFor(onClass); !ok {
		return structuralErrorf("Klass.SetModifiers", "modifier %s is not valid on a class", bad)
	}
	k.modifiers = mods
	return nil
}

// Access returns the visibility.
func (k *Klass) Access() Access { return AccessOf(k.modifiers) }

// SetAccess changes the visibility of a mutable klass.
func (k *Klass) SetAccess(a Access) error { return k.SetModifiers(k.modifiers.WithAccess(a)) }

// IsMutable reports whether members can be added.
func (k *Klass) IsMutable() bool { return k.mutable }

// IsInterface reports whether the klass is an interface.
func (k *Klass) IsInterface() bool { return k.modifiers.Has(Interface) }

// IsArray reports whether the klass is an array class.
func (k *Klass) IsArray() bool { return k.kind == klassArray }

// IsPrimitive reports whether the klass is a primitive pseudo-klass.
func (k *Klass) IsPrimitive() bool { return k.kind == klassPrimitive }

// Dimensions returns the array dimensions, 0 for non-arrays.
func (k *Klass) Dimensions() int { return k.dims }

// ComponentKlass returns the klass one dimension down, nil for non-arrays.
func (k *Klass) ComponentKlass() *Klass { return k.component }

// ElementKlass returns the innermost element klass, nil for non-arrays.
func (k *Klass) ElementKlass() *Klass { return k.element }

// Superclass returns the direct superclass, nil for Object, interfaces
// without one, and pseudo-klasses.
func (k *Klass) Superclass() *Klass { return k.superclass }

// Superclasses returns the superclass chain, nearest first.
func (k *Klass) Superclasses() []*Klass {
	var out []*Klass
	for s := k.superclass; s != nil; s = s.superclass {
		out = append(out, s)
	}
	return out
}

// Interfaces returns the direct superinterfaces.
func (k *Klass) Interfaces() []*Klass { return append([]*Klass(nil), k.interfaces...) }

// Type returns the type backed by the klass.
func (k *Klass) Type() ReturnType { return k.module.types.Type(k) }

// Fields returns the field list, populating descriptor-backed klasses on
// first access.
func (k *Klass) Fields() *List[*Klass, *Field] {
	k.populate()
	return k.fields
}

// Methods returns the method list, populating descriptor-backed klasses on
// first access.
func (k *Klass) Methods() *List[*Klass, *Method] {
	k.populate()
	return k.methods
}

// Field returns the field with the given name or nil.
func (k *Klass) Field(name string) *Field {
	for f := range k.Fields().All() {
		if f.Name() == name {
			return f
		}
	}
	return nil
}

// Method returns the method with the given name and type, or nil.
// Signature-polymorphic methods match any type.
func (k *Klass) Method(name string, t *MethodType) *Method {
	for m := range k.Methods().All() {
		if m.Name() == name && (m.Type() == Type(t) || m.IsSignaturePolymorphic()) {
			return m
		}
	}
	return nil
}

// MethodByDescriptor returns the method with the given name and JVM
// descriptor (receiver excluded), or nil.
func (k *Klass) MethodByDescriptor(name, desc string) *Method {
	for m := range k.Methods().All() {
		if m.Name() == name && (m.Descriptor() == desc || m.IsSignaturePolymorphic()) {
			return m
		}
	}
	return nil
}

// MethodsNamed returns every method with the given name.
func (k *Klass) MethodsNamed(name string) []*Method {
	var out []*Method
	for m := range k.Methods().All() {
		if m.Name() == name {
			out = append(out, m)
		}
	}
	return out
}

// MethodByVirtual resolves name and JVM descriptor the way virtual dispatch
// selects a declaration: this klass, then its superclasses, then the
// superinterfaces breadth-first.
func (k *Klass) MethodByVirtual(name, desc string) *Method {
	for c := k; c != nil; c = c.superclass {
		if m := c.MethodByDescriptor(name, desc); m != nil {
			return m
		}
	}
	seen := map[*Klass]bool{}
	queue := []*Klass{k}
	queue = append(queue, k.Superclasses()...)
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, in := range c.interfaces {
			if seen[in] {
				continue
			}
			seen[in] = true
			if m := in.MethodByDescriptor(name, desc); m != nil && !m.IsStatic() {
				return m
			}
			queue = append(queue, in)
		}
	}
	return nil
}

// isSubclassOf reports whether other is k or one of its supertypes.
func (k *Klass) isSubclassOf(other *Klass) bool {
	if k == other {
		return true
	}
	if k.superclass != nil && k.superclass.isSubclassOf(other) {
		return true
	}
	for _, in := range k.interfaces {
		if in.isSubclassOf(other) {
			return true
		}
	}
	return false
}

// IsSubclassOf reports whether other is k or one of its supertypes.
func (k *Klass) IsSubclassOf(other *Klass) bool { return k.isSubclassOf(other) }

// NewField adds a field to a mutable klass.
func (k *Klass) NewField(t RegularType, name string, mods Modifiers) (*Field, error) {
	if !k.mutable {
		return nil, structuralErrorf("Klass.NewField", "%s is immutable", k.name)
	}
	if name == "" {
		return nil, structuralErrorf("Klass.NewField", "field name is empty")
	}
	if k.Field(name) != nil {
		return nil, structuralErrorf("Klass.NewField", "%s already has a field %s", k.name, name)
	}
	if bad, ok := mods.validFor(onField); !ok {
		return nil, structuralErrorf("Klass.NewField", "modifier %s is not valid on a field", bad)
	}
	if k.IsInterface() && !mods.Has(Static) {
		return nil, structuralErrorf("Klass.NewField", "interface field %s must be static", name)
	}
	f := newField(k, t, name, mods)
	if err := k.fields.Append(f); err != nil {
		return nil, err
	}
	return f, nil
}

// NewMethod adds a method to a mutable klass. The type is the IR method
// type: instance methods take the receiver as first parameter and
// constructors return the klass type.
func (k *Klass) NewMethod(name string, t *MethodType, mods Modifiers) (*Method, error) {
	if !k.mutable {
		return nil, structuralErrorf("Klass.NewMethod", "%s is immutable", k.name)
	}
	if name == "" {
		return nil, structuralErrorf("Klass.NewMethod", "method name is empty")
	}
	if k.Method(name, t) != nil {
		return nil, structuralErrorf("Klass.NewMethod", "%s already has %s%s", k.name, name, t.Descriptor())
	}
	if bad, ok := mods.validFor(onMethod); !ok {
		return nil, structuralErrorf("Klass.NewMethod", "modifier %s is not valid on a method", bad)
	}
	if err := checkMethodShape(k, name, t, mods); err != nil {
		return nil, err
	}
	m := newMethod(k, name, t, mods, true)
	if err := k.methods.Append(m); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMethodFromDescriptor adds a method given its JVM descriptor, deriving
// the IR method type.
func (k *Klass) NewMethodFromDescriptor(name, desc string, mods Modifiers) (*Method, error) {
	t, err := k.irMethodType(name, desc, mods)
	if err != nil {
		return nil, err
	}
	return k.NewMethod(name, t, mods)
}

// irMethodType converts a JVM descriptor into the IR method type for a
// member of k.
func (k *Klass) irMethodType(name, desc string, mods Modifiers) (*MethodType, error) {
	tf := k.module.types
	t, err := tf.MethodTypeFromDescriptor(desc)
	if err != nil {
		return nil, err
	}
	self, err := tf.RefOf(k)
	if err != nil {
		return nil, err
	}
	switch {
	case name == ConstructorName:
		if t.Return() != ReturnType(tf.Void()) {
			return nil, typeErrorf("irMethodType", "constructor descriptor %s must return void", desc)
		}
		return t.WithReturnType(self), nil
	case mods.Has(Static) || name == StaticInitializerName:
		return t, nil
	}
	return t.PrependArgument(self), nil
}

func checkMethodShape(k *Klass, name string, t *MethodType, mods Modifiers) error {
	self, err := k.module.types.RefOf(k)
	if err != nil {
		return err
	}
	switch {
	case name == ConstructorName:
		if mods.Has(Static) {
			return structuralErrorf("Klass.NewMethod", "constructor cannot be static")
		}
		if t.Return() != ReturnType(self) {
			return typeErrorf("Klass.NewMethod", "constructor of %s must return %s, got %s", k.name, self, t.Return())
		}
	case name == StaticInitializerName:
		if !mods.Has(Static) || t.NumParams() != 0 || t.Return() != ReturnType(k.module.types.Void()) {
			return typeErrorf("Klass.NewMethod", "static initializer must be static ()V")
		}
	case !mods.Has(Static):
		if t.NumParams() == 0 || !Type(self).IsSubtypeOf(t.Param(0)) {
			return typeErrorf("Klass.NewMethod", "instance method %s must take a %s receiver first", name, self)
		}
	}
	return nil
}

// populate installs the members of a descriptor-backed klass.
// Members whose types cannot be resolved are skipped with a warning.
func (k *Klass) populate() {
	if k.populated {
		return
	}
	k.populated = true
	tf := k.module.types
	log := k.module.logger
	for _, fd := range k.desc.Fields {
		t, err := tf.RegularFromDescriptor(fd.Type)
		if err != nil {
			log.Warn("skipping field", "klass", k.name, "field", fd.Name, "error", err)
			continue
		}
		k.fields.linkAfter(newField(k, t, fd.Name, fd.Modifiers), k.fields.last)
	}
	for _, md := range k.desc.Methods {
		t, err := k.irMethodType(md.Name, md.Descriptor, md.Modifiers)
		if err != nil {
			log.Warn("skipping method", "klass", k.name, "method", md.Name, "error", err)
			continue
		}
		k.methods.linkAfter(newMethod(k, md.Name, t, md.Modifiers, false), k.methods.last)
	}
}

func (k *Klass) String() string { return k.name }
