package dump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bcir/internal/asm"
	"github.com/roach88/bcir/internal/ir"
	"github.com/roach88/bcir/internal/testutil"
)

func golden(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func loadCounter(t *testing.T) (*ir.Module, *ir.Klass) {
	t.Helper()
	mod := testutil.NewModule(t)
	ks, err := asm.Load(mod, "testdata/counter.yaml")
	require.NoError(t, err)
	require.Len(t, ks, 2)
	return mod, ks[1]
}

func TestModule_Golden(t *testing.T) {
	mod, _ := loadCounter(t)
	// Pull a platform klass in so the dump has something to skip.
	require.NotNil(t, mod.Klass("java.lang.Math"))

	var buf bytes.Buffer
	require.NoError(t, Module(&buf, mod))
	golden(t).Assert(t, "counter", buf.Bytes())
}

func TestMethod_Golden(t *testing.T) {
	_, k := loadCounter(t)
	bump := k.MethodByDescriptor("bump", "(I)I")
	require.NotNil(t, bump)

	var buf bytes.Buffer
	require.NoError(t, Method(&buf, bump))
	golden(t).Assert(t, "bump", buf.Bytes())
	assert.Equal(t, buf.String(), String(bump))
}

func TestMethod_NumbersUnnamedValues(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.Anon")
	m := testutil.NewStatic(t, k, "f", tf.Int(), tf.Int(), tf.Int())
	b := testutil.NewBlock(t, m, "")
	exit := testutil.NewBlock(t, m, "")
	sum := testutil.Append(t, b, ir.Must(ir.NewBinary(m.Argument(0), ir.Add, m.Argument(1))))
	testutil.Append(t, b, ir.Must(ir.NewJump(exit)))
	testutil.Append(t, exit, ir.Must(ir.NewBinary(sum, ir.Mul, cf.Int(3))))
	testutil.Append(t, exit, ir.Must(ir.NewReturn(tf.Int(), sum)))

	want := strings.Join([]string{
		"public static int f(int %arg0, int %arg1) {",
		"%0:",
		"  %2 = add int %arg0, %arg1",
		"  jump %1",
		"%1:",
		"  %3 = mul int %2, 3",
		"  return %2",
		"}",
		"",
	}, "\n")
	assert.Equal(t, want, String(m))
}

func TestMethod_Declaration(t *testing.T) {
	mod := testutil.NewModule(t)
	abs := mod.Klass("java.lang.Math").MethodByDescriptor("abs", "(I)I")
	require.NotNil(t, abs)

	assert.Equal(t, "public static int abs(int %arg0)\n", String(abs))
}

func TestKlass_Empty(t *testing.T) {
	mod := testutil.NewModule(t)
	k := testutil.NewKlass(t, mod, "test.Empty")

	var buf bytes.Buffer
	require.NoError(t, Klass(&buf, k))
	assert.Equal(t, "public class test.Empty extends java.lang.Object {\n}\n", buf.String())
}
