package ir

// locationType returns the FieldType of a field or local variable operand.
func locationType(op string, i int, v Value) (*FieldType, error) {
	ft, ok := v.Type().(*FieldType)
	if !ok {
		return nil, typeErrorf(op, "operand %d must be a field or local variable, got %s", i, v.Type())
	}
	return ft, nil
}

// LoadInst reads a static field, an instance field or a local variable.
// Operands: location, then the instance for instance fields.
type LoadInst struct {
	instBase
}

// NewLoadStatic reads static field f.
func NewLoadStatic(f *Field) (*LoadInst, error) {
	if f == nil {
		return nil, typeErrorf("NewLoad", "field is nil")
	}
	return newLoad(f, nil)
}

// NewLoadField reads instance field f of instance.
func NewLoadField(f *Field, instance Value) (*LoadInst, error) {
	if f == nil || instance == nil {
		return nil, typeErrorf("NewLoad", "field or instance is nil")
	}
	return newLoad(f, instance)
}

// NewLoadLocal reads local variable v.
func NewLoadLocal(v *LocalVariable) (*LoadInst, error) {
	if v == nil {
		return nil, typeErrorf("NewLoad", "local variable is nil")
	}
	return newLoad(v, nil)
}

func newLoad(loc, instance Value) (*LoadInst, error) {
	ft, err := locationType("NewLoad", 0, loc)
	if err != nil {
		return nil, err
	}
	m := ft.stored.Klass().module
	l := &LoadInst{}
	l.initInst(l, m, OpLoad, ft.stored)
	ops := []Value{loc}
	if instance != nil {
		ops = append(ops, instance)
	}
	if err := l.initOperands("NewLoad", ops...); err != nil {
		return nil, err
	}
	return l, nil
}

// Location returns the field or local variable read.
func (l *LoadInst) Location() Value { return l.Operand(0) }

// Instance returns the object read from, nil for static and local loads.
func (l *LoadInst) Instance() Value { return l.Operand(1) }

// IsLocal reports whether the load reads a local variable.
func (l *LoadInst) IsLocal() bool {
	_, ok := l.Operand(0).(*LocalVariable)
	return ok
}

func (l *LoadInst) checkOperand(i int, v Value) error {
	const op = "LoadInst"
	switch i {
	case 0:
		ft, err := locationType(op, i, v)
		if err != nil {
			return err
		}
		if ft.IsStatic() != (len(l.operands) == 1) {
			return typeErrorf(op, "location %s does not match the operand count", ft)
		}
		if !Type(ft.stored).IsSubtypeOf(l.typ) {
			return typeErrorf(op, "location holds %s, load produces %s", ft.stored, l.typ)
		}
		return nil
	case 1:
		ft, err := locationType(op, 0, l.Operand(0))
		if err != nil {
			return err
		}
		return requireSubtype(op, i, v, ft.instance)
	}
	return structuralErrorf(op, "operand index %d out of range", i)
}

// StoreInst writes a static field, an instance field or a local variable.
// Operands: location, data, then the instance for instance fields.
type StoreInst struct {
	instBase
}

// NewStoreStatic writes data to static field f.
func NewStoreStatic(f *Field, data Value) (*StoreInst, error) {
	if f == nil {
		return nil, typeErrorf("NewStore", "field is nil")
	}
	return newStore(f, data, nil)
}

// NewStoreField writes data to instance field f of instance.
func NewStoreField(f *Field, data, instance Value) (*StoreInst, error) {
	if f == nil || instance == nil {
		return nil, typeErrorf("NewStore", "field or instance is nil")
	}
	return newStore(f, data, instance)
}

// NewStoreLocal writes data to local variable v.
func NewStoreLocal(v *LocalVariable, data Value) (*StoreInst, error) {
	if v == nil {
		return nil, typeErrorf("NewStore", "local variable is nil")
	}
	return newStore(v, data, nil)
}

func newStore(loc, data, instance Value) (*StoreInst, error) {
	ft, err := locationType("NewStore", 0, loc)
	if err != nil {
		return nil, err
	}
	m := ft.stored.Klass().module
	s := &StoreInst{}
	s.initInst(s, m, OpStore, m.types.Void())
	ops := []Value{loc, data}
	if instance != nil {
		ops = append(ops, instance)
	}
	if err := s.initOperands("NewStore", ops...); err != nil {
		return nil, err
	}
	return s, nil
}

// Location returns the field or local variable written.
func (s *StoreInst) Location() Value { return s.Operand(0) }

// Data returns the stored value.
func (s *StoreInst) Data() Value { return s.Operand(1) }

// Instance returns the object written to, nil for static and local stores.
func (s *StoreInst) Instance() Value { return s.Operand(2) }

// IsLocal reports whether the store writes a local variable.
func (s *StoreInst) IsLocal() bool {
	_, ok := s.Operand(0).(*LocalVariable)
	return ok
}

func (s *StoreInst) checkOperand(i int, v Value) error {
	const op = "StoreInst"
	switch i {
	case 0:
		ft, err := locationType(op, i, v)
		if err != nil {
			return err
		}
		if ft.IsStatic() != (len(s.operands) == 2) {
			return typeErrorf(op, "location %s does not match the operand count", ft)
		}
		if data := s.Operand(1); data != nil && !data.Type().IsSubtypeOf(ft.stored) {
			return typeErrorf(op, "location holds %s, data is %s", ft.stored, data.Type())
		}
		if inst := s.Operand(2); inst != nil && !inst.Type().IsSubtypeOf(ft.instance) {
			return typeErrorf(op, "instance %s does not hold %s", inst.Type(), ft)
		}
		return nil
	case 1, 2:
		ft, err := locationType(op, 0, s.Operand(0))
		if err != nil {
			return err
		}
		if i == 1 {
			return requireSubtype(op, i, v, ft.stored)
		}
		return requireSubtype(op, i, v, ft.instance)
	}
	return structuralErrorf(op, "operand index %d out of range", i)
}

// unifyInt widens types computed with as int to int.
func unifyInt(t Type) Type {
	if p, ok := t.(*PrimitiveType); ok && p.IsIntLike() {
		return p.tf.Int()
	}
	return t
}

func requireArray(op string, i int, v Value) error {
	switch v.Type().(type) {
	case *ArrayType, *NullType:
		return nil
	}
	return typeErrorf(op, "operand %d: %s is not an array", i, v.Type())
}

// ArrayLengthInst reads the length of an array.
type ArrayLengthInst struct {
	instBase
}

// NewArrayLength reads the length of array.
func NewArrayLength(array Value) (*ArrayLengthInst, error) {
	if array == nil {
		return nil, typeErrorf("NewArrayLength", "array is nil")
	}
	m := moduleOf(array)
	if m == nil {
		return nil, structuralErrorf("NewArrayLength", "cannot determine module of %s", array.Type())
	}
	a := &ArrayLengthInst{}
	a.initInst(a, m, OpArrayLength, m.types.Int())
	if err := a.initOperands("NewArrayLength", array); err != nil {
		return nil, err
	}
	return a, nil
}

// Array returns the array operand.
func (a *ArrayLengthInst) Array() Value { return a.Operand(0) }

func (a *ArrayLengthInst) checkOperand(i int, v Value) error {
	if i != 0 {
		return structuralErrorf("ArrayLengthInst", "operand index %d out of range", i)
	}
	return requireArray("ArrayLengthInst", i, v)
}

// ArrayLoadInst reads an array element. Operands: array, index.
type ArrayLoadInst struct {
	instBase
}

// NewArrayLoad reads array[index]. The result has the array's component
// type.
func NewArrayLoad(array, index Value) (*ArrayLoadInst, error) {
	if array == nil || index == nil {
		return nil, typeErrorf("NewArrayLoad", "operand is nil")
	}
	at, ok := array.Type().(*ArrayType)
	if !ok {
		return nil, typeErrorf("NewArrayLoad", "operand 0: %s is not an array", array.Type())
	}
	m := at.klass.module
	a := &ArrayLoadInst{}
	a.initInst(a, m, OpArrayLoad, at.component)
	if err := a.initOperands("NewArrayLoad", array, index); err != nil {
		return nil, err
	}
	return a, nil
}

// Array returns the array operand.
func (a *ArrayLoadInst) Array() Value { return a.Operand(0) }

// Index returns the index operand.
func (a *ArrayLoadInst) Index() Value { return a.Operand(1) }

func (a *ArrayLoadInst) checkOperand(i int, v Value) error {
	const op = "ArrayLoadInst"
	switch i {
	case 0:
		if err := requireArray(op, i, v); err != nil {
			return err
		}
		if at, ok := v.Type().(*ArrayType); ok && !Type(at.component).IsSubtypeOf(a.typ) {
			return typeErrorf(op, "component %s is not a subtype of %s", at.component, a.typ)
		}
		return nil
	case 1:
		return requireIntLike(op, i, v)
	}
	return structuralErrorf(op, "operand index %d out of range", i)
}

// ArrayStoreInst writes an array element. Operands: array, index, data.
type ArrayStoreInst struct {
	instBase
}

// NewArrayStore writes data to array[index].
func NewArrayStore(array, index, data Value) (*ArrayStoreInst, error) {
	m := moduleOf(array, index, data)
	if m == nil {
		return nil, structuralErrorf("NewArrayStore", "cannot determine module")
	}
	a := &ArrayStoreInst{}
	a.initInst(a, m, OpArrayStore, m.types.Void())
	if err := a.initOperands("NewArrayStore", array, index, data); err != nil {
		return nil, err
	}
	return a, nil
}

// Array returns the array operand.
func (a *ArrayStoreInst) Array() Value { return a.Operand(0) }

// Index returns the index operand.
func (a *ArrayStoreInst) Index() Value { return a.Operand(1) }

// Data returns the stored value.
func (a *ArrayStoreInst) Data() Value { return a.Operand(2) }

func storable(array, data Type) bool {
	at, ok := array.(*ArrayType)
	if !ok {
		return isDataType(data)
	}
	return unifyInt(data).IsSubtypeOf(unifyInt(at.component))
}

func (a *ArrayStoreInst) checkOperand(i int, v Value) error {
	const op = "ArrayStoreInst"
	switch i {
	case 0:
		if err := requireArray(op, i, v); err != nil {
			return err
		}
		if data := a.Operand(2); data != nil && !storable(v.Type(), data.Type()) {
			return typeErrorf(op, "cannot store %s into %s", data.Type(), v.Type())
		}
		return nil
	case 1:
		return requireIntLike(op, i, v)
	case 2:
		if err := requireData(op, i, v); err != nil {
			return err
		}
		if array := a.Operand(0); array != nil && !storable(array.Type(), v.Type()) {
			return typeErrorf(op, "cannot store %s into %s", v.Type(), array.Type())
		}
		return nil
	}
	return structuralErrorf(op, "operand index %d out of range", i)
}

// NewArrayInst allocates an array. Operands: one length per allocated
// dimension.
type NewArrayInst struct {
	instBase
}

// NewNewArray allocates an array of type t with the given dimension
// lengths; fewer lengths than dimensions leave inner arrays null.
func NewNewArray(t *ArrayType, dims ...Value) (*NewArrayInst, error) {
	if t == nil {
		return nil, typeErrorf("NewNewArray", "array type is nil")
	}
	if len(dims) < 1 || len(dims) > t.dims {
		return nil, typeErrorf("NewNewArray", "%s takes 1 to %d lengths, got %d", t, t.dims, len(dims))
	}
	n := &NewArrayInst{}
	n.initInst(n, t.klass.module, OpNewArray, t)
	if err := n.initOperands("NewNewArray", dims...); err != nil {
		return nil, err
	}
	return n, nil
}

// ArrayType returns the allocated type.
func (n *NewArrayInst) ArrayType() *ArrayType { return n.typ.(*ArrayType) }

// Dimensions returns the length operands.
func (n *NewArrayInst) Dimensions() []Value { return n.Operands() }

func (n *NewArrayInst) checkOperand(i int, v Value) error {
	if i < 0 || i >= n.ArrayType().dims {
		return structuralErrorf("NewArrayInst", "operand index %d out of range", i)
	}
	return requireIntLike("NewArrayInst", i, v)
}
