package ir

import (
	"fmt"
	"math"
	"strconv"
)

// ConstantKind identifies the datum carried by a Constant.
type ConstantKind int

const (
	ConstNull ConstantKind = iota
	ConstBoolean
	ConstByte
	ConstChar
	ConstShort
	ConstInt
	ConstLong
	ConstFloat
	ConstDouble
	ConstString
	ConstClass
)

// Constant is an immutable, interned literal: null, a primitive, a string
// or a class literal. Equal data yield the same *Constant, so constants
// compare by identity.
type Constant struct {
	valueBase
	module *Module
	kind   ConstantKind
	bits   uint64
	str    string
	klass  *Klass
}

// Parent returns the module that interned the constant.
func (c *Constant) Parent() *Module { return c.module }

// Kind returns the datum kind.
func (c *Constant) Kind() ConstantKind { return c.kind }

// IsNull reports whether c is the null constant.
func (c *Constant) IsNull() bool { return c.kind == ConstNull }

// Datum returns the Go value: nil, bool, int8, uint16, int16, int32, int64,
// float32, float64, string or *Klass.
func (c *Constant) Datum() any {
	switch c.kind {
	case ConstBoolean:
		return c.bits != 0
	case ConstByte:
		return int8(c.bits)
	case ConstChar:
		return uint16(c.bits)
	case ConstShort:
		return int16(c.bits)
	case ConstInt:
		return int32(c.bits)
	case ConstLong:
		return int64(c.bits)
	case ConstFloat:
		return math.Float32frombits(uint32(c.bits))
	case ConstDouble:
		return math.Float64frombits(c.bits)
	case ConstString:
		return c.str
	case ConstClass:
		return c.klass
	}
	return nil
}

// Int64 returns the value of an integral constant (boolean and char
// included) widened to int64.
func (c *Constant) Int64() (int64, bool) {
	switch c.kind {
	case ConstBoolean, ConstChar:
		return int64(c.bits), true
	case ConstByte:
		return int64(int8(c.bits)), true
	case ConstShort:
		return int64(int16(c.bits)), true
	case ConstInt:
		return int64(int32(c.bits)), true
	case ConstLong:
		return int64(c.bits), true
	}
	return 0, false
}

// Float64 returns the value of a floating-point constant.
func (c *Constant) Float64() (float64, bool) {
	switch c.kind {
	case ConstFloat:
		return float64(math.Float32frombits(uint32(c.bits))), true
	case ConstDouble:
		return math.Float64frombits(c.bits), true
	}
	return 0, false
}

// Bits returns the raw bit pattern of a primitive constant.
func (c *Constant) Bits() uint64 { return c.bits }

// SetName is unsupported: a constant's name is its literal rendering.
func (c *Constant) SetName(string) error {
	return unsupportedErrorf("Constant.SetName", "constants cannot be renamed")
}

// ReplaceAllUsesWith is unsupported on constants.
func (c *Constant) ReplaceAllUsesWith(Value) error {
	return unsupportedErrorf("Constant.ReplaceAllUsesWith", "cannot replace uses of constant %s", c.name)
}

func (c *Constant) String() string { return c.name }

type constantKey struct {
	kind  ConstantKind
	bits  uint64
	str   string
	klass *Klass
}

// ConstantFactory interns the constants of a Module.
type ConstantFactory struct {
	module *Module
	byKey  map[constantKey]*Constant
	order  []*Constant
}

func newConstantFactory(m *Module) *ConstantFactory {
	return &ConstantFactory{module: m, byKey: make(map[constantKey]*Constant)}
}

func (cf *ConstantFactory) intern(key constantKey, t func() Type, name func() string) *Constant {
	if c, ok := cf.byKey[key]; ok {
		return c
	}
	c := &Constant{module: cf.module, kind: key.kind, bits: key.bits, str: key.str, klass: key.klass}
	c.init(c, t(), name())
	cf.byKey[key] = c
	cf.order = append(cf.order, c)
	return c
}

func (cf *ConstantFactory) primitive(kind ConstantKind, pk PrimitiveKind, bits uint64, name string) *Constant {
	return cf.intern(constantKey{kind: kind, bits: bits},
		func() Type { return cf.module.types.Primitive(pk) },
		func() string { return name })
}

// Null returns the null constant.
func (cf *ConstantFactory) Null() *Constant {
	return cf.intern(constantKey{kind: ConstNull},
		func() Type { return cf.module.types.Null() },
		func() string { return "null" })
}

// Bool returns a boolean constant.
func (cf *ConstantFactory) Bool(v bool) *Constant {
	var bits uint64
	if v {
		bits = 1
	}
	return cf.primitive(ConstBoolean, Boolean, bits, strconv.FormatBool(v))
}

// Byte returns a byte constant.
func (cf *ConstantFactory) Byte(v int8) *Constant {
	return cf.primitive(ConstByte, Byte, uint64(uint8(v)), fmt.Sprintf("(byte)%d", v))
}

// Char returns a char constant.
func (cf *ConstantFactory) Char(v uint16) *Constant {
	return cf.primitive(ConstChar, Char, uint64(v), fmt.Sprintf("(char)%d", v))
}

// Short returns a short constant.
func (cf *ConstantFactory) Short(v int16) *Constant {
	return cf.primitive(ConstShort, Short, uint64(uint16(v)), fmt.Sprintf("(short)%d", v))
}

// Int returns an int constant.
func (cf *ConstantFactory) Int(v int32) *Constant {
	return cf.primitive(ConstInt, Int, uint64(uint32(v)), strconv.FormatInt(int64(v), 10))
}

// Long returns a long constant.
func (cf *ConstantFactory) Long(v int64) *Constant {
	return cf.primitive(ConstLong, Long, uint64(v), strconv.FormatInt(v, 10)+"L")
}

// Float returns a float constant. Floats are keyed by bit pattern, so NaN
// interns and 0.0 differs from -0.0.
func (cf *ConstantFactory) Float(v float32) *Constant {
	return cf.primitive(ConstFloat, Float, uint64(math.Float32bits(v)),
		strconv.FormatFloat(float64(v), 'g', -1, 32)+"f")
}

// Double returns a double constant, keyed by bit pattern.
func (cf *ConstantFactory) Double(v float64) *Constant {
	return cf.primitive(ConstDouble, Double, math.Float64bits(v),
		strconv.FormatFloat(v, 'g', -1, 64)+"d")
}

// String returns a java.lang.String constant.
func (cf *ConstantFactory) String(s string) *Constant {
	return cf.intern(constantKey{kind: ConstString, str: s},
		func() Type { return cf.module.types.referenceFor(cf.module.Klass(StringClass)) },
		func() string { return strconv.Quote(s) })
}

// Class returns a java.lang.Class constant for k.
func (cf *ConstantFactory) Class(k *Klass) *Constant {
	return cf.intern(constantKey{kind: ConstClass, klass: k},
		func() Type { return cf.module.types.referenceFor(cf.module.Klass(ClassClass)) },
		func() string { return k.Name() + ".class" })
}

// SmallestInt returns the constant of the narrowest type holding v:
// boolean for 0 and 1, then byte, char, short and int.
func (cf *ConstantFactory) SmallestInt(v int32) *Constant {
	switch {
	case v == 0:
		return cf.Bool(false)
	case v == 1:
		return cf.Bool(true)
	case v >= math.MinInt8 && v <= math.MaxInt8:
		return cf.Byte(int8(v))
	case v >= 0 && v <= math.MaxUint16:
		return cf.Char(uint16(v))
	case v >= math.MinInt16 && v <= math.MaxInt16:
		return cf.Short(int16(v))
	}
	return cf.Int(v)
}

// All returns every interned constant in creation order.
func (cf *ConstantFactory) All() []*Constant {
	return append([]*Constant(nil), cf.order...)
}
