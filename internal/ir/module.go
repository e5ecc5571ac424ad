package ir

import (
	"log/slog"
	"strings"
)

// Module is the root container of the IR. It owns the klasses, the type
// factory and the constant factory.
type Module struct {
	klasses   *List[*Module, *Klass]
	byName    map[string]*Klass
	types     *TypeFactory
	constants *ConstantFactory
	source    ClassSource
	logger    *slog.Logger

	void         *Klass
	object       *Klass
	cloneable    *Klass
	serializable *Klass
}

// ModuleOption configures a Module.
type ModuleOption func(*Module)

// WithClassSource adds a source of class descriptors. Sources are consulted
// in the order given, after the compiled-in core classes.
func WithClassSource(src ClassSource) ModuleOption {
	return func(m *Module) {
		m.source = ChainSources(m.source, src)
	}
}

// WithLogger sets the logger used for diagnostics. Defaults to slog.Default().
func WithLogger(l *slog.Logger) ModuleOption {
	return func(m *Module) {
		m.logger = l
	}
}

// NewModule creates a Module with the primitive and void pseudo-klasses and
// the core platform classes installed.
func NewModule(opts ...ModuleOption) *Module {
	m := &Module{
		byName: make(map[string]*Klass),
		source: coreSource,
		logger: slog.Default(),
	}
	m.klasses = newList[*Module, *Klass](m)
	m.types = newTypeFactory(m)
	m.constants = newConstantFactory(m)
	for _, opt := range opts {
		opt(m)
	}

	m.void = m.installPseudo("void", klassVoid, 0)
	m.types.void = &VoidType{klass: m.void}
	for _, k := range PrimitiveKinds {
		pk := m.installPseudo(k.String(), klassPrimitive, k)
		m.types.prims[k] = &PrimitiveType{kind: k, klass: pk, tf: m.types}
	}

	m.object = m.mustCore(ObjectClass)
	m.cloneable = m.mustCore(CloneableClass)
	m.serializable = m.mustCore(SerializableClass)
	m.types.referenceFor(m.object)
	return m
}

func (m *Module) installPseudo(name string, kind klassKind, prim PrimitiveKind) *Klass {
	k := &Klass{
		module:    m,
		name:      name,
		kind:      kind,
		prim:      prim,
		modifiers: Mods(Public, Final, Abstract),
		populated: true,
	}
	k.fields = newList[*Klass, *Field](k)
	k.methods = newList[*Klass, *Method](k)
	k.fields.Freeze()
	k.methods.Freeze()
	m.register(k)
	return k
}

func (m *Module) mustCore(name string) *Klass {
	k, err := m.LookupKlass(name)
	if err != nil || k == nil {
		panic("ir: core class " + name + " unavailable")
	}
	return k
}

func (m *Module) register(k *Klass) {
	m.byName[k.name] = k
	// Registering never fails: the list is never frozen and k is fresh.
	_ = m.klasses.Append(k)
}

func (m *Module) unregister(k *Klass) {
	delete(m.byName, k.name)
	_ = m.klasses.Remove(k)
}

// Types returns the module's type factory.
func (m *Module) Types() *TypeFactory { return m.types }

// Constants returns the module's constant factory.
func (m *Module) Constants() *ConstantFactory { return m.constants }

// Logger returns the module's logger.
func (m *Module) Logger() *slog.Logger { return m.logger }

// Klasses returns the loaded klasses in definition order.
func (m *Module) Klasses() []*Klass { return m.klasses.Slice() }

// ObjectKlass returns java.lang.Object.
func (m *Module) ObjectKlass() *Klass { return m.object }

// Klass returns the klass with the given binary name, loading it from the
// class sources if needed. It returns nil if the class is unknown or its
// descriptor is inconsistent.
func (m *Module) Klass(name string) *Klass {
	k, err := m.LookupKlass(name)
	if err != nil {
		m.logger.Warn("klass lookup failed", "name", name, "error", err)
		return nil
	}
	return k
}

// LookupKlass is Klass with error reporting: it returns (nil, nil) if no
// source knows the class and an error if its descriptor cannot be installed.
// Array names use the JVM form, e.g. "[I" or "[Ljava.lang.String;".
func (m *Module) LookupKlass(name string) (*Klass, error) {
	if k, ok := m.byName[name]; ok {
		return k, nil
	}
	if strings.HasPrefix(name, "[") {
		return m.lookupArray(name)
	}
	d, ok := m.source.LookupClass(name)
	if !ok {
		return nil, nil
	}
	return m.define(d)
}

func (m *Module) lookupArray(name string) (*Klass, error) {
	dims := 0
	for dims < len(name) && name[dims] == '[' {
		dims++
	}
	rest := name[dims:]
	var elem *Klass
	switch {
	case strings.HasPrefix(rest, "L") && strings.HasSuffix(rest, ";"):
		k, err := m.LookupKlass(rest[1 : len(rest)-1])
		if err != nil || k == nil {
			return nil, err
		}
		elem = k
	case len(rest) == 1:
		for _, pk := range PrimitiveKinds {
			if pk.Descriptor() == rest {
				elem = m.types.prims[pk].klass
			}
		}
	}
	if elem == nil {
		return nil, nil
	}
	return m.ArrayKlass(elem, dims)
}

// define installs an immutable klass from a descriptor. The klass is
// registered before its supertypes are resolved so cyclic references
// terminate.
func (m *Module) define(d *ClassDescriptor) (*Klass, error) {
	if d.Name == "" {
		return nil, structuralErrorf("LookupKlass", "descriptor without a name")
	}
	if bad, ok := d.Modifiers.validFor(onClass); !ok {
		return nil, structuralErrorf("LookupKlass", "%s: modifier %s is not valid on a class", d.Name, bad)
	}
	k := &Klass{
		module:    m,
		name:      d.Name,
		kind:      klassClass,
		modifiers: d.Modifiers,
		desc:      d,
	}
	k.fields = newList[*Klass, *Field](k)
	k.methods = newList[*Klass, *Method](k)
	k.fields.Freeze()
	k.methods.Freeze()
	m.register(k)

	fail := func(err error) (*Klass, error) {
		m.unregister(k)
		return nil, err
	}
	if d.Superclass != "" {
		super, err := m.LookupKlass(d.Superclass)
		if err != nil {
			return fail(err)
		}
		if super == nil {
			return fail(structuralErrorf("LookupKlass", "%s: unknown superclass %s", d.Name, d.Superclass))
		}
		k.superclass = super
	} else if d.Name != ObjectClass && !d.Modifiers.Has(Interface) {
		return fail(structuralErrorf("LookupKlass", "%s: missing superclass", d.Name))
	}
	for _, in := range d.Interfaces {
		ik, err := m.LookupKlass(in)
		if err != nil {
			return fail(err)
		}
		if ik == nil {
			return fail(structuralErrorf("LookupKlass", "%s: unknown interface %s", d.Name, in))
		}
		k.interfaces = append(k.interfaces, ik)
	}
	m.logger.Debug("klass loaded", "name", d.Name)
	return k, nil
}

// NewKlass creates a mutable klass. A nil superclass means java.lang.Object.
func (m *Module) NewKlass(name string, super *Klass, interfaces []*Klass, mods Modifiers) (*Klass, error) {
	if name == "" {
		return nil, structuralErrorf("NewKlass", "klass name is empty")
	}
	if _, ok := m.byName[name]; ok {
		return nil, structuralErrorf("NewKlass", "klass %s already exists", name)
	}
	if _, ok := m.source.LookupClass(name); ok {
		return nil, structuralErrorf("NewKlass", "klass %s is provided by a class source", name)
	}
	if bad, ok := mods.validFor(onClass); !ok {
		return nil, structuralErrorf("NewKlass", "modifier %s is not valid on a class", bad)
	}
	if super == nil {
		super = m.object
	}
	if super.kind != klassClass || super.IsInterface() || super.modifiers.Has(Final) {
		return nil, structuralErrorf("NewKlass", "%s cannot be extended", super.Name())
	}
	for _, in := range interfaces {
		if !in.IsInterface() {
			return nil, structuralErrorf("NewKlass", "%s is not an interface", in.Name())
		}
	}
	k := &Klass{
		module:     m,
		name:       name,
		kind:       klassClass,
		modifiers:  mods,
		superclass: super,
		interfaces: append([]*Klass(nil), interfaces...),
		mutable:    true,
		populated:  true,
	}
	k.fields = newList[*Klass, *Field](k)
	k.methods = newList[*Klass, *Method](k)
	m.register(k)
	return k, nil
}

// ArrayKlass returns the klass of arrays of component with dims dimensions.
// An array component adds its own dimensions.
func (m *Module) ArrayKlass(component *Klass, dims int) (*Klass, error) {
	if dims < 1 {
		return nil, structuralErrorf("ArrayKlass", "dimensions must be positive, got %d", dims)
	}
	elem := component
	if component.kind == klassArray {
		elem = component.element
		dims += component.dims
	}
	if elem.kind == klassVoid {
		return nil, typeErrorf("ArrayKlass", "array of void")
	}
	var elemName string
	if elem.kind == klassPrimitive {
		elemName = elem.prim.Descriptor()
	} else {
		elemName = "L" + elem.name + ";"
	}
	name := strings.Repeat("[", dims) + elemName
	if k, ok := m.byName[name]; ok {
		return k, nil
	}
	comp := elem
	if dims > 1 {
		c, err := m.ArrayKlass(elem, dims-1)
		if err != nil {
			return nil, err
		}
		comp = c
	}
	access := elem.modifiers & Mods(Public, Protected, Private)
	k := &Klass{
		module:     m,
		name:       name,
		kind:       klassArray,
		modifiers:  access.With(Abstract, Final),
		superclass: m.object,
		interfaces: []*Klass{m.cloneable, m.serializable},
		element:    elem,
		component:  comp,
		dims:       dims,
		populated:  true,
	}
	k.fields = newList[*Klass, *Field](k)
	k.methods = newList[*Klass, *Method](k)
	k.fields.Freeze()
	k.methods.Freeze()
	m.register(k)
	return k, nil
}
