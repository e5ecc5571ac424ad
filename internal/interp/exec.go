package interp

import (
	"context"
	"fmt"
	"math"

	"github.com/roach88/bcir/internal/ir"
)

// exec runs one non-phi instruction. It returns the successor and the
// return value, with done set for terminators; a returning terminator has
// no successor.
func (in *Interpreter) exec(ctx context.Context, f *frame, inst ir.Instruction, depth int) (*ir.BasicBlock, any, bool, error) {
	switch x := inst.(type) {
	case *ir.BinaryInst:
		l, r, err := in.pair(f, x.Left(), x.Right())
		if err != nil {
			return nil, nil, false, err
		}
		v, err := in.binary(x, l, r)
		return nil, nil, false, in.define(f, x, v, err)

	case *ir.JumpInst:
		return x.Target(), nil, true, nil

	case *ir.BranchInst:
		l, r, err := in.pair(f, x.Left(), x.Right())
		if err != nil {
			return nil, nil, false, err
		}
		if compare(x.Sense(), l, r) {
			return x.Then(), nil, true, nil
		}
		return x.Else(), nil, true, nil

	case *ir.SwitchInst:
		v, err := in.value(f, x.Value())
		if err != nil {
			return nil, nil, false, err
		}
		key, _ := v.(int32)
		for _, c := range x.Cases() {
			if k, ok := c.Key.Int64(); ok && k == int64(key) {
				return c.Target, nil, true, nil
			}
		}
		return x.Default(), nil, true, nil

	case *ir.ReturnInst:
		if x.Value() == nil {
			return nil, nil, true, nil
		}
		v, err := in.value(f, x.Value())
		return nil, v, true, err

	case *ir.ThrowInst:
		v, err := in.value(f, x.Exception())
		if err != nil {
			return nil, nil, false, err
		}
		if v == nil {
			return nil, nil, false, in.throw("java.lang.NullPointerException", "throw null")
		}
		return nil, nil, false, &Thrown{Value: v}

	case *ir.CallInst:
		args, err := in.values(f, x.Arguments())
		if err != nil {
			return nil, nil, false, err
		}
		v, err := in.invoke(ctx, x.Method(), args, depth)
		return nil, nil, false, in.define(f, x, v, err)

	case *ir.CastInst:
		v, err := in.value(f, x.Value())
		if err != nil {
			return nil, nil, false, err
		}
		v, err = in.cast(x, v)
		return nil, nil, false, in.define(f, x, v, err)

	case *ir.InstanceofInst:
		v, err := in.value(f, x.Value())
		if err != nil {
			return nil, nil, false, err
		}
		return nil, nil, false, in.define(f, x, boolInt(v != nil && in.isInstance(v, x.TestType())), nil)

	case *ir.LoadInst:
		v, err := in.load(ctx, f, x, depth)
		return nil, nil, false, in.define(f, x, v, err)

	case *ir.StoreInst:
		return nil, nil, false, in.store(ctx, f, x, depth)

	case *ir.NewArrayInst:
		dims, err := in.values(f, x.Dimensions())
		if err != nil {
			return nil, nil, false, err
		}
		v, err := in.newArray(x.ArrayType(), dims)
		return nil, nil, false, in.define(f, x, v, err)

	case *ir.ArrayLengthInst:
		v, err := in.value(f, x.Array())
		if err != nil {
			return nil, nil, false, err
		}
		arr, err := in.array(v)
		if err != nil {
			return nil, nil, false, err
		}
		return nil, nil, false, in.define(f, x, int32(len(arr.Elems)), nil)

	case *ir.ArrayLoadInst:
		v, i, err := in.pair(f, x.Array(), x.Index())
		if err != nil {
			return nil, nil, false, err
		}
		arr, idx, err := in.element(v, i)
		if err != nil {
			return nil, nil, false, err
		}
		return nil, nil, false, in.define(f, x, arr.Elems[idx], nil)

	case *ir.ArrayStoreInst:
		v, i, err := in.pair(f, x.Array(), x.Index())
		if err != nil {
			return nil, nil, false, err
		}
		data, err := in.value(f, x.Data())
		if err != nil {
			return nil, nil, false, err
		}
		arr, idx, err := in.element(v, i)
		if err != nil {
			return nil, nil, false, err
		}
		if p, ok := arr.Type.Component().(*ir.PrimitiveType); ok {
			data = convert(data, promoted(x.Data().Type()), p.Kind())
		}
		arr.Elems[idx] = data
		return nil, nil, false, nil
	}
	return nil, nil, false, fmt.Errorf("interp: cannot execute %s", inst.Opcode())
}

func (in *Interpreter) define(f *frame, inst ir.Instruction, v any, err error) error {
	if err != nil {
		return err
	}
	f.values[inst] = v
	return nil
}

func (in *Interpreter) pair(f *frame, a, b ir.Value) (any, any, error) {
	x, err := in.value(f, a)
	if err != nil {
		return nil, nil, err
	}
	y, err := in.value(f, b)
	if err != nil {
		return nil, nil, err
	}
	return x, y, nil
}

// promoted returns the runtime kind of a primitive-typed value.
func promoted(t ir.Type) ir.PrimitiveKind {
	p, ok := t.(*ir.PrimitiveType)
	if !ok {
		return ir.Int
	}
	if p.IsIntLike() {
		return ir.Int
	}
	return p.Kind()
}

func (in *Interpreter) binary(b *ir.BinaryInst, l, r any) (any, error) {
	op := b.Op()
	switch x := l.(type) {
	case int32:
		y, _ := r.(int32)
		return in.intOp(op, x, y)
	case int64:
		if op.IsShift() {
			y, _ := r.(int32)
			return longShift(op, x, y), nil
		}
		y, _ := r.(int64)
		return in.longOp(op, x, y)
	case float32:
		y, _ := r.(float32)
		v, err := floatOp(op, float64(x), float64(y))
		if f, ok := v.(float64); ok {
			return float32(f), err
		}
		return v, err
	case float64:
		y, _ := r.(float64)
		return floatOp(op, x, y)
	}
	return nil, fmt.Errorf("interp: %s on %T", op, l)
}

func (in *Interpreter) intOp(op ir.BinaryOp, x, y int32) (any, error) {
	switch op {
	case ir.Add:
		return x + y, nil
	case ir.Sub:
		return x - y, nil
	case ir.Mul:
		return x * y, nil
	case ir.Div:
		if y == 0 {
			return nil, in.throw("java.lang.ArithmeticException", "/ by zero")
		}
		return x / y, nil
	case ir.Rem:
		if y == 0 {
			return nil, in.throw("java.lang.ArithmeticException", "/ by zero")
		}
		return x % y, nil
	case ir.Shl:
		return x << (uint32(y) & 31), nil
	case ir.Shr:
		return x >> (uint32(y) & 31), nil
	case ir.Ushr:
		return int32(uint32(x) >> (uint32(y) & 31)), nil
	case ir.And:
		return x & y, nil
	case ir.Or:
		return x | y, nil
	case ir.Xor:
		return x ^ y, nil
	}
	return nil, fmt.Errorf("interp: %s on int", op)
}

func (in *Interpreter) longOp(op ir.BinaryOp, x, y int64) (any, error) {
	switch op {
	case ir.Add:
		return x + y, nil
	case ir.Sub:
		return x - y, nil
	case ir.Mul:
		return x * y, nil
	case ir.Div:
		if y == 0 {
			return nil, in.throw("java.lang.ArithmeticException", "/ by zero")
		}
		return x / y, nil
	case ir.Rem:
		if y == 0 {
			return nil, in.throw("java.lang.ArithmeticException", "/ by zero")
		}
		return x % y, nil
	case ir.And:
		return x & y, nil
	case ir.Or:
		return x | y, nil
	case ir.Xor:
		return x ^ y, nil
	case ir.Cmp:
		switch {
		case x < y:
			return int32(-1), nil
		case x > y:
			return int32(1), nil
		}
		return int32(0), nil
	}
	return nil, fmt.Errorf("interp: %s on long", op)
}

func longShift(op ir.BinaryOp, x int64, y int32) int64 {
	s := uint32(y) & 63
	switch op {
	case ir.Shl:
		return x << s
	case ir.Shr:
		return x >> s
	}
	return int64(uint64(x) >> s)
}

func floatOp(op ir.BinaryOp, x, y float64) (any, error) {
	switch op {
	case ir.Add:
		return x + y, nil
	case ir.Sub:
		return x - y, nil
	case ir.Mul:
		return x * y, nil
	case ir.Div:
		return x / y, nil
	case ir.Rem:
		return math.Mod(x, y), nil
	case ir.Cmp, ir.Cmpg:
		switch {
		case math.IsNaN(x) || math.IsNaN(y):
			if op == ir.Cmpg {
				return int32(1), nil
			}
			return int32(-1), nil
		case x < y:
			return int32(-1), nil
		case x > y:
			return int32(1), nil
		}
		return int32(0), nil
	}
	return nil, fmt.Errorf("interp: %s on floating point", op)
}

func compare(s ir.Sense, l, r any) bool {
	switch a := l.(type) {
	case int32:
		if b, ok := r.(int32); ok {
			return ordered(s, a, b)
		}
	case int64:
		if b, ok := r.(int64); ok {
			return ordered(s, a, b)
		}
	case float32:
		if b, ok := r.(float32); ok {
			return ordered(s, a, b)
		}
	case float64:
		if b, ok := r.(float64); ok {
			return ordered(s, a, b)
		}
	}
	eq := sameRef(l, r)
	if s == ir.Ne {
		return !eq
	}
	return eq
}

// ordered compares primitives. Every sense but ne is false when a float
// operand is NaN.
func ordered[T int32 | int64 | float32 | float64](s ir.Sense, a, b T) bool {
	switch s {
	case ir.Eq:
		return a == b
	case ir.Ne:
		return a != b
	case ir.Lt:
		return a < b
	case ir.Gt:
		return a > b
	case ir.Le:
		return a <= b
	}
	return a >= b
}

func (in *Interpreter) cast(c *ir.CastInst, v any) (any, error) {
	if p, ok := c.Target().(*ir.PrimitiveType); ok {
		return convert(v, promoted(c.Value().Type()), p.Kind()), nil
	}
	if v == nil {
		return nil, nil
	}
	if rt, ok := c.Target().(ir.RefType); ok && !in.isInstance(v, rt) {
		return nil, in.throw("java.lang.ClassCastException", fmt.Sprintf("%s cannot be cast to %s", Display(v), rt))
	}
	return v, nil
}

// runtimeType returns the IR type of a reference, or nil for host values.
func (in *Interpreter) runtimeType(v any) ir.RefType {
	tf := in.mod.Types()
	var k *ir.Klass
	switch x := v.(type) {
	case string:
		k = in.mod.Klass(ir.StringClass)
	case *ir.Klass:
		k = in.mod.Klass(ir.ClassClass)
	case *Object:
		k = x.Klass
	case *Box:
		k = x.Klass
	case *Array:
		return x.Type
	}
	if k == nil {
		return nil
	}
	t, err := tf.Reference(k)
	if err != nil {
		return nil
	}
	return t
}

func (in *Interpreter) isInstance(v any, t ir.RefType) bool {
	rt := in.runtimeType(v)
	if rt == nil {
		return true
	}
	return rt.IsSubtypeOf(t)
}

func (in *Interpreter) load(ctx context.Context, f *frame, l *ir.LoadInst, depth int) (any, error) {
	switch loc := l.Location().(type) {
	case *ir.LocalVariable:
		return f.local(loc), nil
	case *ir.Field:
		if loc.IsStatic() {
			if err := in.initialize(ctx, loc.Klass(), depth); err != nil {
				return nil, err
			}
			return in.static(loc), nil
		}
		v, err := in.value(f, l.Instance())
		if err != nil {
			return nil, err
		}
		obj, err := in.object(v, loc)
		if err != nil {
			return nil, err
		}
		if x, ok := obj.Fields[loc]; ok {
			return x, nil
		}
		return Zero(loc.Stored()), nil
	}
	return nil, fmt.Errorf("interp: cannot load from %s", l.Location().Name())
}

func (in *Interpreter) store(ctx context.Context, f *frame, s *ir.StoreInst, depth int) error {
	data, err := in.value(f, s.Data())
	if err != nil {
		return err
	}
	switch loc := s.Location().(type) {
	case *ir.LocalVariable:
		f.locals[loc] = data
		return nil
	case *ir.Field:
		if loc.IsStatic() {
			if err := in.initialize(ctx, loc.Klass(), depth); err != nil {
				return err
			}
			in.statics[loc] = data
			return nil
		}
		v, err := in.value(f, s.Instance())
		if err != nil {
			return err
		}
		obj, err := in.object(v, loc)
		if err != nil {
			return err
		}
		obj.Fields[loc] = data
		return nil
	}
	return fmt.Errorf("interp: cannot store to %s", s.Location().Name())
}

func (in *Interpreter) object(v any, f *ir.Field) (*Object, error) {
	switch x := v.(type) {
	case nil:
		return nil, in.throw("java.lang.NullPointerException", "field "+f.String())
	case *Object:
		return x, nil
	}
	return nil, fmt.Errorf("interp: %s has no field %s", Display(v), f)
}

func (in *Interpreter) newArray(t *ir.ArrayType, dims []any) (*Array, error) {
	n, _ := dims[0].(int32)
	if n < 0 {
		return nil, in.throw("java.lang.NegativeArraySizeException", fmt.Sprint(n))
	}
	arr := &Array{Type: t, Elems: make([]any, n)}
	sub, nested := t.Component().(*ir.ArrayType)
	for i := range arr.Elems {
		if nested && len(dims) > 1 {
			inner, err := in.newArray(sub, dims[1:])
			if err != nil {
				return nil, err
			}
			arr.Elems[i] = inner
			continue
		}
		arr.Elems[i] = Zero(t.Component())
	}
	return arr, nil
}

func (in *Interpreter) array(v any) (*Array, error) {
	switch x := v.(type) {
	case nil:
		return nil, in.throw("java.lang.NullPointerException", "array is null")
	case *Array:
		return x, nil
	}
	return nil, fmt.Errorf("interp: %s is not an array", Display(v))
}

func (in *Interpreter) element(v, i any) (*Array, int, error) {
	arr, err := in.array(v)
	if err != nil {
		return nil, 0, err
	}
	idx, _ := i.(int32)
	if idx < 0 || int(idx) >= len(arr.Elems) {
		return nil, 0, in.throw("java.lang.ArrayIndexOutOfBoundsException",
			fmt.Sprintf("index %d out of bounds for length %d", idx, len(arr.Elems)))
	}
	return arr, int(idx), nil
}
