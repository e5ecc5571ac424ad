package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstantFactory_Interning(t *testing.T) {
	mod := newTestModule(t)
	cf := mod.Constants()

	assert.Same(t, cf.Int(5), cf.Int(5))
	assert.NotSame(t, cf.Int(5), cf.Long(5), "kinds are part of the key")
	assert.NotSame(t, cf.Int(1), cf.Bool(true))
	assert.Same(t, cf.String("a"), cf.String("a"))
	assert.Same(t, cf.Null(), cf.Null())
	assert.Same(t, cf.Class(mod.ObjectKlass()), cf.Class(mod.ObjectKlass()))
	assert.NotSame(t, cf.Class(mod.ObjectKlass()), cf.Class(mod.Klass(StringClass)))
}

func TestConstantFactory_FloatBits(t *testing.T) {
	mod := newTestModule(t)
	cf := mod.Constants()

	nan := float32(math.NaN())
	assert.Same(t, cf.Float(nan), cf.Float(nan), "NaN interns by bit pattern")
	assert.NotSame(t, cf.Float(0), cf.Float(float32(math.Copysign(0, -1))), "0.0 and -0.0 differ")
	assert.NotSame(t, cf.Double(0), cf.Double(math.Copysign(0, -1)))
	assert.Same(t, cf.Double(math.Inf(1)), cf.Double(math.Inf(1)))
}

func TestConstant_Types(t *testing.T) {
	mod := newTestModule(t)
	tf := mod.Types()
	cf := mod.Constants()

	tests := []struct {
		c     *Constant
		want  Type
		name  string
		datum any
	}{
		{cf.Bool(true), tf.Boolean(), "true", true},
		{cf.Byte(-3), tf.Primitive(Byte), "(byte)-3", int8(-3)},
		{cf.Char('A'), tf.Primitive(Char), "(char)65", uint16('A')},
		{cf.Short(300), tf.Primitive(Short), "(short)300", int16(300)},
		{cf.Int(-7), tf.Int(), "-7", int32(-7)},
		{cf.Long(42), tf.Primitive(Long), "42L", int64(42)},
		{cf.Float(1.5), tf.Primitive(Float), "1.5f", float32(1.5)},
		{cf.Double(2.25), tf.Primitive(Double), "2.25d", 2.25},
		{cf.String("hi"), stringType(t, mod), `"hi"`, "hi"},
		{cf.Null(), tf.Null(), "null", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Type())
			assert.Equal(t, tt.name, tt.c.Name())
			assert.Equal(t, tt.datum, tt.c.Datum())
		})
	}

	cls := cf.Class(mod.ObjectKlass())
	assert.Equal(t, "java.lang.Object.class", cls.Name())
	assert.Equal(t, ClassClass, cls.Type().String())
	assert.Same(t, mod.ObjectKlass(), cls.Datum())
	assert.True(t, cf.Null().IsNull())
}

func TestConstant_NumericAccessors(t *testing.T) {
	mod := newTestModule(t)
	cf := mod.Constants()

	v, ok := cf.Byte(-1).Int64()
	require.True(t, ok)
	assert.Equal(t, int64(-1), v)
	v, ok = cf.Char(0xffff).Int64()
	require.True(t, ok)
	assert.Equal(t, int64(0xffff), v, "char is unsigned")
	v, ok = cf.Bool(true).Int64()
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
	_, ok = cf.Double(1).Int64()
	assert.False(t, ok)

	f, ok := cf.Float(0.5).Float64()
	require.True(t, ok)
	assert.Equal(t, 0.5, f)
	_, ok = cf.Int(1).Float64()
	assert.False(t, ok)
	assert.Equal(t, math.Float64bits(3), cf.Double(3).Bits())
}

func TestConstantFactory_SmallestInt(t *testing.T) {
	mod := newTestModule(t)
	cf := mod.Constants()

	tests := []struct {
		v    int32
		want *Constant
	}{
		{0, cf.Bool(false)},
		{1, cf.Bool(true)},
		{-1, cf.Byte(-1)},
		{127, cf.Byte(127)},
		{200, cf.Char(200)},
		{65535, cf.Char(65535)},
		{-200, cf.Short(-200)},
		{70000, cf.Int(70000)},
		{-40000, cf.Int(-40000)},
	}
	for _, tt := range tests {
		assert.Same(t, tt.want, cf.SmallestInt(tt.v), "value %d", tt.v)
	}
}

func TestConstantFactory_AllInCreationOrder(t *testing.T) {
	mod := newTestModule(t)
	cf := mod.Constants()

	a := cf.Int(10)
	b := cf.String("x")
	cf.Int(10)
	c := cf.Null()

	assert.Equal(t, []*Constant{a, b, c}, cf.All())
	assert.Same(t, mod, a.Parent())
}
