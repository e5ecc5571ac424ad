package interp

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/roach88/bcir/internal/ir"
)

// Object is an instance of a non-array, non-wrapper klass.
type Object struct {
	Klass  *ir.Klass
	Fields map[*ir.Field]any

	// Native holds host state for platform classes: the message of a
	// throwable, the buffer of a StringBuilder, the table of a HashMap.
	Native any
}

// NewObject allocates an instance of k with every field at its zero value.
func NewObject(k *ir.Klass) *Object {
	return &Object{Klass: k, Fields: map[*ir.Field]any{}}
}

// Box is a primitive wrapper instance.
type Box struct {
	Klass *ir.Klass
	Value any
}

// Array is a JVM array.
type Array struct {
	Type  *ir.ArrayType
	Elems []any
}

// Zero returns the default value of a location of type t.
func Zero(t ir.Type) any {
	p, ok := t.(*ir.PrimitiveType)
	if !ok {
		return nil
	}
	switch p.Kind() {
	case ir.Long:
		return int64(0)
	case ir.Float:
		return float32(0)
	case ir.Double:
		return float64(0)
	}
	return int32(0)
}

// constant converts an IR constant to its runtime value.
func constant(c *ir.Constant) any {
	switch d := c.Datum().(type) {
	case bool:
		return boolInt(d)
	case int8:
		return int32(d)
	case uint16:
		return int32(d)
	case int16:
		return int32(d)
	default:
		return d
	}
}

// convert performs a JVM primitive conversion of v, held in the runtime
// representation of from, to kind to.
func convert(v any, from, to ir.PrimitiveKind) any {
	switch to {
	case ir.Long:
		switch x := v.(type) {
		case int32:
			return int64(x)
		case int64:
			return x
		case float32:
			return f2l(float64(x))
		case float64:
			return f2l(x)
		}
	case ir.Float:
		switch x := v.(type) {
		case int32:
			return float32(x)
		case int64:
			return float32(x)
		case float32:
			return x
		case float64:
			return float32(x)
		}
	case ir.Double:
		switch x := v.(type) {
		case int32:
			return float64(x)
		case int64:
			return float64(x)
		case float32:
			return float64(x)
		case float64:
			return x
		}
	}
	var i int32
	switch x := v.(type) {
	case int32:
		i = x
	case int64:
		i = int32(x)
	case float32:
		i = f2i(float64(x))
	case float64:
		i = f2i(x)
	}
	switch to {
	case ir.Byte:
		return int32(int8(i))
	case ir.Char:
		return int32(uint16(i))
	case ir.Short:
		return int32(int16(i))
	case ir.Boolean:
		if i&1 != 0 {
			return int32(1)
		}
		return int32(0)
	}
	return i
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

func f2i(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

func f2l(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

// sameRef compares references by identity. Strings compare by content.
func sameRef(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// Display renders a runtime value for messages and toString.
func Display(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case *ir.Klass:
		return "class " + x.Name()
	case *Box:
		return boxString(x)
	case *Array:
		return fmt.Sprintf("%s@%p", x.Type.Descriptor(), x)
	case *Object:
		if sb, ok := x.Native.(*strings.Builder); ok {
			return sb.String()
		}
		if msg, ok := x.Native.(string); ok {
			return x.Klass.Name() + ": " + msg
		}
		return fmt.Sprintf("%s@%p", x.Klass.Name(), x)
	}
	return fmt.Sprintf("%v", v)
}

func boxString(b *Box) string {
	switch b.Klass.Name() {
	case ir.Boolean.WrapperName():
		if b.Value == int32(1) {
			return "true"
		}
		return "false"
	case ir.Char.WrapperName():
		if c, ok := b.Value.(int32); ok {
			return string(rune(c))
		}
	}
	return Display(b.Value)
}

// Coerce converts a convenient Go value into the runtime representation
// for a parameter of type t. Go ints and bools become int32, ints widen to
// int64 for long, and float64 narrows to float32 for float. Reference
// parameters take any non-numeric value as is.
func Coerce(t ir.Type, v any) (any, error) {
	p, ok := t.(*ir.PrimitiveType)
	if !ok {
		switch v.(type) {
		case int, int32, int64, float32, float64, bool:
			return nil, fmt.Errorf("cannot pass %T as %s", v, t)
		}
		return v, nil
	}
	kind := p.Kind()
	switch x := v.(type) {
	case bool:
		if kind == ir.Boolean {
			return boolInt(x), nil
		}
	case int:
		if kind == ir.Long {
			return int64(x), nil
		}
		if kind != ir.Float && kind != ir.Double && x >= math.MinInt32 && x <= math.MaxInt32 {
			return convert(int32(x), ir.Int, kind), nil
		}
	case int32:
		if kind != ir.Float && kind != ir.Double {
			return convert(x, ir.Int, kind), nil
		}
	case int64:
		if kind == ir.Long {
			return x, nil
		}
	case float32:
		if kind == ir.Float || kind == ir.Double {
			return convert(x, ir.Float, kind), nil
		}
	case float64:
		if kind == ir.Float || kind == ir.Double {
			return convert(x, ir.Double, kind), nil
		}
	}
	return nil, fmt.Errorf("cannot pass %T(%v) as %s", v, v, t)
}

// ParseArg parses a command-line argument for a parameter of type t.
// Reference parameters accept "null" and otherwise receive the text as a
// string.
func ParseArg(t ir.Type, s string) (any, error) {
	p, ok := t.(*ir.PrimitiveType)
	if !ok {
		if s == "null" {
			return nil, nil
		}
		return s, nil
	}
	switch p.Kind() {
	case ir.Boolean:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}
		return Coerce(t, b)
	case ir.Char:
		if r := []rune(s); len(r) == 1 {
			return int32(uint16(r[0])), nil
		}
		return nil, fmt.Errorf("char argument %q is not one character", s)
	case ir.Long:
		return strconv.ParseInt(s, 0, 64)
	case ir.Float:
		f, err := strconv.ParseFloat(s, 32)
		return float32(f), err
	case ir.Double:
		return strconv.ParseFloat(s, 64)
	}
	bits := map[ir.PrimitiveKind]int{ir.Byte: 8, ir.Short: 16, ir.Int: 32}[p.Kind()]
	n, err := strconv.ParseInt(s, 0, bits)
	if err != nil {
		return nil, err
	}
	return int32(n), nil
}
