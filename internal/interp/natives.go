package interp

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/roach88/bcir/internal/ir"
)

// MethodHandle is the runtime value of a java.lang.invoke.MethodHandle.
// Invoke receives the arguments after the handle itself.
type MethodHandle interface {
	Invoke(ctx context.Context, args []any) (any, error)
}

// HandleFunc adapts a function to MethodHandle.
type HandleFunc func(ctx context.Context, args []any) (any, error)

// Invoke calls f.
func (f HandleFunc) Invoke(ctx context.Context, args []any) (any, error) { return f(ctx, args) }

// hashMap backs java.util.HashMap instances.
type hashMap struct {
	m map[any]any
}

func (h *hashMap) Get(k any) any { return h.m[mapKey(k)] }

func (h *hashMap) ContainsKey(k any) bool {
	_, ok := h.m[mapKey(k)]
	return ok
}

func (h *hashMap) Len() int { return len(h.m) }

func (h *hashMap) Put(k, v any) any {
	prev := h.m[mapKey(k)]
	h.m[mapKey(k)] = v
	return prev
}

func (h *hashMap) Remove(k any) any {
	prev := h.m[mapKey(k)]
	delete(h.m, mapKey(k))
	return prev
}

type boxKey struct {
	klass *ir.Klass
	value any
}

// mapKey gives boxes value equality.
func mapKey(k any) any {
	if b, ok := k.(*Box); ok {
		return boxKey{b.Klass, b.Value}
	}
	return k
}

// builtins returns the natives for the platform classes, keyed by
// signature.
func builtins() map[string]Native {
	n := map[string]Native{}

	n["java.lang.Object.<init>()V"] = newPlainObject
	n["java.lang.Object.hashCode()I"] = objectHash
	n["java.lang.Object.equals(Ljava/lang/Object;)Z"] = objectEquals
	n["java.lang.Object.toString()Ljava/lang/String;"] = objectString
	n["java.lang.Object.getClass()Ljava/lang/Class;"] = objectClass
	n["java.lang.Class.getName()Ljava/lang/String;"] = className
	n["java.lang.Throwable.getMessage()Ljava/lang/String;"] = throwableMessage

	for _, owner := range []string{ir.StringClass, "java.lang.CharSequence"} {
		n[owner+".length()I"] = stringLength
		n[owner+".charAt(I)C"] = stringCharAt
	}
	n["java.lang.String.concat(Ljava/lang/String;)Ljava/lang/String;"] = stringConcat
	n["java.lang.String.equals(Ljava/lang/Object;)Z"] = stringEquals
	n["java.lang.String.hashCode()I"] = stringHash
	n["java.lang.String.valueOf(I)Ljava/lang/String;"] = stringValueOf

	n["java.lang.Math.abs(I)I"] = mathAbs
	n["java.lang.Math.abs(J)J"] = mathAbs
	n["java.lang.Math.abs(D)D"] = mathAbs
	n["java.lang.Math.max(II)I"] = mathMax
	n["java.lang.Math.max(JJ)J"] = mathMax
	n["java.lang.Math.min(II)I"] = mathMin
	n["java.lang.Math.min(JJ)J"] = mathMin
	n["java.lang.Math.sqrt(D)D"] = mathSqrt
	n["java.lang.Math.floorDiv(II)I"] = mathFloorDiv

	n["java.lang.StringBuilder.<init>()V"] = builderNew
	n["java.lang.StringBuilder.<init>(Ljava/lang/String;)V"] = builderNew
	for _, d := range []string{"Ljava/lang/String;", "I", "Ljava/lang/Object;"} {
		n["java.lang.StringBuilder.append("+d+")Ljava/lang/StringBuilder;"] = builderAppend
	}
	n["java.lang.StringBuilder.length()I"] = builderLength
	n["java.lang.StringBuilder.toString()Ljava/lang/String;"] = objectString

	n["java.lang.invoke.MethodHandle.invokeExact([Ljava/lang/Object;)Ljava/lang/Object;"] = invokeHandle
	n["java.lang.invoke.MethodHandle.invoke([Ljava/lang/Object;)Ljava/lang/Object;"] = invokeHandle

	for _, owner := range []string{"java.util.Map", "java.util.HashMap"} {
		n[owner+".size()I"] = mapSize
		n[owner+".isEmpty()Z"] = mapIsEmpty
		n[owner+".containsKey(Ljava/lang/Object;)Z"] = mapContainsKey
		n[owner+".get(Ljava/lang/Object;)Ljava/lang/Object;"] = mapGet
		n[owner+".put(Ljava/lang/Object;Ljava/lang/Object;)Ljava/lang/Object;"] = mapPut
		n[owner+".remove(Ljava/lang/Object;)Ljava/lang/Object;"] = mapRemove
	}
	n["java.util.HashMap.<init>()V"] = newHashMap

	for _, k := range ir.PrimitiveKinds {
		addWrapper(n, k)
	}
	for _, to := range []ir.PrimitiveKind{ir.Int, ir.Long, ir.Float, ir.Double} {
		n["java.lang.Number."+to.UnboxMethodName()+"()"+to.Descriptor()] = func(_ context.Context, in *Interpreter, a []any) (any, error) {
			return unbox(a[0], to)
		}
	}
	return n
}

func addWrapper(n map[string]Native, k ir.PrimitiveKind) {
	w := k.WrapperName()
	d := k.Descriptor()
	box := func(_ context.Context, in *Interpreter, a []any) (any, error) {
		return &Box{Klass: in.mod.Klass(w), Value: a[0]}, nil
	}
	n[w+".valueOf("+d+")L"+strings.ReplaceAll(w, ".", "/")+";"] = box
	n[w+".<init>("+d+")V"] = box
	n[w+"."+k.UnboxMethodName()+"()"+d] = func(_ context.Context, in *Interpreter, a []any) (any, error) {
		return unbox(a[0], k)
	}
	n[w+".hashCode()I"] = func(_ context.Context, in *Interpreter, a []any) (any, error) {
		b, err := asBox(a[0])
		if err != nil {
			return nil, err
		}
		return boxHash(k, b.Value), nil
	}
	n[w+".equals(Ljava/lang/Object;)Z"] = func(_ context.Context, in *Interpreter, a []any) (any, error) {
		b, err := asBox(a[0])
		if err != nil {
			return nil, err
		}
		o, ok := a[1].(*Box)
		return boolInt(ok && o.Klass == b.Klass && sameBits(o.Value, b.Value)), nil
	}
}

func asBox(v any) (*Box, error) {
	b, ok := v.(*Box)
	if !ok {
		return nil, fmt.Errorf("interp: %s is not a boxed primitive", Display(v))
	}
	return b, nil
}

func wrapperKind(k *ir.Klass) (ir.PrimitiveKind, bool) {
	for _, p := range ir.PrimitiveKinds {
		if p.WrapperName() == k.Name() {
			return p, true
		}
	}
	return 0, false
}

func unbox(v any, to ir.PrimitiveKind) (any, error) {
	b, err := asBox(v)
	if err != nil {
		return nil, err
	}
	from, ok := wrapperKind(b.Klass)
	if !ok {
		return nil, fmt.Errorf("interp: %s is not a wrapper", b.Klass.Name())
	}
	rep := from
	if from != ir.Long && from != ir.Float && from != ir.Double {
		rep = ir.Int
	}
	return convert(b.Value, rep, to), nil
}

func boxHash(k ir.PrimitiveKind, v any) int32 {
	switch x := v.(type) {
	case int32:
		if k == ir.Boolean {
			if x != 0 {
				return 1231
			}
			return 1237
		}
		return x
	case int64:
		return int32(x ^ int64(uint64(x)>>32))
	case float32:
		if math.IsNaN(float64(x)) {
			return 0x7fc00000
		}
		return int32(math.Float32bits(x))
	case float64:
		bits := math.Float64bits(x)
		if math.IsNaN(x) {
			bits = 0x7ff8000000000000
		}
		return int32(bits ^ bits>>32)
	}
	return 0
}

// sameBits compares floating values by bit pattern, as Float.equals does.
func sameBits(a, b any) bool {
	switch x := a.(type) {
	case float32:
		y, ok := b.(float32)
		return ok && (math.Float32bits(x) == math.Float32bits(y) || math.IsNaN(float64(x)) && math.IsNaN(float64(y)))
	case float64:
		y, ok := b.(float64)
		return ok && (math.Float64bits(x) == math.Float64bits(y) || math.IsNaN(x) && math.IsNaN(y))
	}
	return a == b
}

// construct allocates an instance for a platform constructor without a
// native. A throwable constructed with a string keeps it as its message.
func construct(in *Interpreter, m *ir.Method, args []any) any {
	obj := NewObject(m.Klass())
	if len(args) == 1 {
		if s, ok := args[0].(string); ok && m.Klass().IsSubclassOf(in.mod.Klass(ir.ThrowableClass)) {
			obj.Native = s
		}
	}
	return obj
}

func newPlainObject(_ context.Context, in *Interpreter, _ []any) (any, error) {
	return NewObject(in.mod.ObjectKlass()), nil
}

func newHashMap(_ context.Context, in *Interpreter, _ []any) (any, error) {
	obj := NewObject(in.mod.Klass("java.util.HashMap"))
	obj.Native = &hashMap{m: map[any]any{}}
	return obj, nil
}

func objectHash(_ context.Context, in *Interpreter, a []any) (any, error) {
	switch x := a[0].(type) {
	case string:
		return javaHash(x), nil
	case *Box:
		k, _ := wrapperKind(x.Klass)
		return boxHash(k, x.Value), nil
	}
	return in.identity(a[0]), nil
}

func objectEquals(ctx context.Context, in *Interpreter, a []any) (any, error) {
	if s, ok := a[0].(string); ok {
		return stringEquals(ctx, in, []any{s, a[1]})
	}
	return boolInt(sameRef(a[0], a[1])), nil
}

func objectString(_ context.Context, _ *Interpreter, a []any) (any, error) {
	return Display(a[0]), nil
}

func objectClass(_ context.Context, in *Interpreter, a []any) (any, error) {
	t := in.runtimeType(a[0])
	if t == nil {
		return in.mod.ObjectKlass(), nil
	}
	return t.Klass(), nil
}

func className(_ context.Context, in *Interpreter, a []any) (any, error) {
	k, ok := a[0].(*ir.Klass)
	if !ok {
		return nil, fmt.Errorf("interp: %s is not a class", Display(a[0]))
	}
	return k.Name(), nil
}

func throwableMessage(_ context.Context, _ *Interpreter, a []any) (any, error) {
	if obj, ok := a[0].(*Object); ok {
		if s, ok := obj.Native.(string); ok {
			return s, nil
		}
	}
	return nil, nil
}

func asString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("interp: %s is not a string", Display(v))
	}
	return s, nil
}

func stringLength(_ context.Context, _ *Interpreter, a []any) (any, error) {
	s, err := asString(a[0])
	if err != nil {
		return nil, err
	}
	return int32(len(utf16.Encode([]rune(s)))), nil
}

func stringCharAt(_ context.Context, in *Interpreter, a []any) (any, error) {
	s, err := asString(a[0])
	if err != nil {
		return nil, err
	}
	units := utf16.Encode([]rune(s))
	i := a[1].(int32)
	if i < 0 || int(i) >= len(units) {
		return nil, in.throw("java.lang.StringIndexOutOfBoundsException", fmt.Sprintf("index %d, length %d", i, len(units)))
	}
	return int32(units[i]), nil
}

func stringConcat(_ context.Context, in *Interpreter, a []any) (any, error) {
	s, err := asString(a[0])
	if err != nil {
		return nil, err
	}
	if a[1] == nil {
		return nil, in.throw("java.lang.NullPointerException", "concat(null)")
	}
	t, err := asString(a[1])
	if err != nil {
		return nil, err
	}
	return s + t, nil
}

func stringEquals(_ context.Context, _ *Interpreter, a []any) (any, error) {
	s, _ := a[0].(string)
	t, ok := a[1].(string)
	return boolInt(ok && s == t), nil
}

func stringHash(_ context.Context, _ *Interpreter, a []any) (any, error) {
	s, err := asString(a[0])
	if err != nil {
		return nil, err
	}
	return javaHash(s), nil
}

func stringValueOf(_ context.Context, _ *Interpreter, a []any) (any, error) {
	return Display(a[0]), nil
}

// javaHash is String.hashCode over UTF-16 code units.
func javaHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}

func mathAbs(_ context.Context, _ *Interpreter, a []any) (any, error) {
	switch x := a[0].(type) {
	case int32:
		if x < 0 {
			return -x, nil
		}
		return x, nil
	case int64:
		if x < 0 {
			return -x, nil
		}
		return x, nil
	case float64:
		return math.Abs(x), nil
	}
	return nil, fmt.Errorf("interp: abs of %T", a[0])
}

func mathMax(_ context.Context, _ *Interpreter, a []any) (any, error) {
	switch x := a[0].(type) {
	case int32:
		return max(x, a[1].(int32)), nil
	case int64:
		return max(x, a[1].(int64)), nil
	}
	return nil, fmt.Errorf("interp: max of %T", a[0])
}

func mathMin(_ context.Context, _ *Interpreter, a []any) (any, error) {
	switch x := a[0].(type) {
	case int32:
		return min(x, a[1].(int32)), nil
	case int64:
		return min(x, a[1].(int64)), nil
	}
	return nil, fmt.Errorf("interp: min of %T", a[0])
}

func mathSqrt(_ context.Context, _ *Interpreter, a []any) (any, error) {
	return math.Sqrt(a[0].(float64)), nil
}

func mathFloorDiv(_ context.Context, in *Interpreter, a []any) (any, error) {
	x, y := a[0].(int32), a[1].(int32)
	if y == 0 {
		return nil, in.throw("java.lang.ArithmeticException", "/ by zero")
	}
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q, nil
}

func builderNew(_ context.Context, in *Interpreter, a []any) (any, error) {
	sb := &strings.Builder{}
	if len(a) == 1 {
		s, err := asString(a[0])
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}
	obj := NewObject(in.mod.Klass("java.lang.StringBuilder"))
	obj.Native = sb
	return obj, nil
}

func builder(v any) (*strings.Builder, error) {
	if obj, ok := v.(*Object); ok {
		if sb, ok := obj.Native.(*strings.Builder); ok {
			return sb, nil
		}
	}
	return nil, fmt.Errorf("interp: %s is not a StringBuilder", Display(v))
}

func builderAppend(_ context.Context, _ *Interpreter, a []any) (any, error) {
	sb, err := builder(a[0])
	if err != nil {
		return nil, err
	}
	sb.WriteString(Display(a[1]))
	return a[0], nil
}

func builderLength(_ context.Context, _ *Interpreter, a []any) (any, error) {
	sb, err := builder(a[0])
	if err != nil {
		return nil, err
	}
	return int32(len(utf16.Encode([]rune(sb.String())))), nil
}

func invokeHandle(ctx context.Context, in *Interpreter, a []any) (any, error) {
	h, ok := a[0].(MethodHandle)
	if !ok {
		return nil, fmt.Errorf("interp: %s is not a method handle", Display(a[0]))
	}
	return h.Invoke(ctx, a[1:])
}

// mapTarget returns the host object behind a Map receiver.
func mapTarget(v any) any {
	if obj, ok := v.(*Object); ok && obj.Native != nil {
		return obj.Native
	}
	return v
}

func mapSize(_ context.Context, _ *Interpreter, a []any) (any, error) {
	m, ok := mapTarget(a[0]).(interface{ Len() int })
	if !ok {
		return nil, fmt.Errorf("interp: %s does not support size", Display(a[0]))
	}
	return int32(m.Len()), nil
}

func mapIsEmpty(ctx context.Context, in *Interpreter, a []any) (any, error) {
	n, err := mapSize(ctx, in, a)
	if err != nil {
		return nil, err
	}
	return boolInt(n == int32(0)), nil
}

func mapContainsKey(_ context.Context, _ *Interpreter, a []any) (any, error) {
	m, ok := mapTarget(a[0]).(interface{ ContainsKey(any) bool })
	if !ok {
		return nil, fmt.Errorf("interp: %s does not support containsKey", Display(a[0]))
	}
	return boolInt(m.ContainsKey(a[1])), nil
}

func mapGet(_ context.Context, _ *Interpreter, a []any) (any, error) {
	m, ok := mapTarget(a[0]).(interface{ Get(any) any })
	if !ok {
		return nil, fmt.Errorf("interp: %s does not support get", Display(a[0]))
	}
	return m.Get(a[1]), nil
}

func mapPut(_ context.Context, _ *Interpreter, a []any) (any, error) {
	m, ok := mapTarget(a[0]).(interface{ Put(any, any) any })
	if !ok {
		return nil, fmt.Errorf("interp: %s does not support put", Display(a[0]))
	}
	return m.Put(a[1], a[2]), nil
}

func mapRemove(_ context.Context, _ *Interpreter, a []any) (any, error) {
	m, ok := mapTarget(a[0]).(interface{ Remove(any) any })
	if !ok {
		return nil, fmt.Errorf("interp: %s does not support remove", Display(a[0]))
	}
	return m.Remove(a[1]), nil
}
