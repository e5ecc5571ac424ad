package ir

// Field is a static or instance field of a klass. As a Value it is the
// location operand of LoadInst and StoreInst, typed by a FieldType.
type Field struct {
	valueBase
	lnk       Link[*Field]
	parent    *Klass
	klass     *Klass
	modifiers Modifiers
}

func newField(k *Klass, t RegularType, name string, mods Modifiers) *Field {
	f := &Field{klass: k, modifiers: mods}
	tf := k.module.types
	var ft *FieldType
	if mods.Has(Static) {
		ft = tf.StaticFieldType(t)
	} else {
		self, err := tf.RefOf(k)
		if err != nil {
			// Pseudo-klasses never get fields.
			panic(err)
		}
		ft = tf.InstanceFieldType(self, t)
	}
	f.init(f, ft, name)
	return f
}

// Parent returns the owning klass, nil once removed.
func (f *Field) Parent() *Klass      { return f.parent }
func (f *Field) setParent(p *Klass)  { f.parent = p }
func (f *Field) link() *Link[*Field] { return &f.lnk }

// Klass returns the declaring klass.
func (f *Field) Klass() *Klass { return f.klass }

// FieldType returns the field's location type.
func (f *Field) FieldType() *FieldType { return f.typ.(*FieldType) }

// Stored returns the type of the value held by the field.
func (f *Field) Stored() RegularType { return f.FieldType().Stored() }

// Modifiers returns the field modifiers.
func (f *Field) Modifiers() Modifiers { return f.modifiers }

// IsStatic reports whether the field is static.
func (f *Field) IsStatic() bool { return f.modifiers.Has(Static) }

// IsMutable reports whether the declaring klass is mutable.
func (f *Field) IsMutable() bool { return f.klass.mutable }

// Access returns the visibility.
func (f *Field) Access() Access { return AccessOf(f.modifiers) }

// SetAccess changes the visibility of a mutable field. Static-ness is part
// of the type and cannot change.
func (f *Field) SetAccess(a Access) error {
	if !f.IsMutable() {
		return structuralErrorf("Field.SetAccess", "%s.%s is immutable", f.klass.name, f.name)
	}
	f.modifiers = f.modifiers.WithAccess(a)
	return nil
}

// SetName renames a mutable field.
func (f *Field) SetName(name string) error {
	if !f.IsMutable() {
		return structuralErrorf("Field.SetName", "%s.%s is immutable", f.klass.name, f.name)
	}
	if name == "" {
		return structuralErrorf("Field.SetName", "field name is empty")
	}
	if name != f.name && f.klass.Field(name) != nil {
		return structuralErrorf("Field.SetName", "%s already has a field %s", f.klass.name, name)
	}
	f.name = name
	return nil
}

// RemoveFromParent unlinks the field from its klass.
func (f *Field) RemoveFromParent() error {
	if f.parent == nil {
		return structuralErrorf("Field.RemoveFromParent", "field has no parent")
	}
	return f.parent.fields.Remove(f)
}

func (f *Field) String() string { return f.klass.name + "." + f.name }
