package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named[T Instruction](t *testing.T, inst T, name string) T {
	t.Helper()
	require.NoError(t, inst.SetName(name))
	return inst
}

func TestFormatInstruction(t *testing.T) {
	mod := newTestModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := newTestKlass(t, mod, "test.Format")
	count := Must(k.NewField(tf.Int(), "count", Mods(Private)))
	total := Must(k.NewField(tf.Int(), "TOTAL", Mods(Static)))
	self := Must(tf.Reference(k))
	intArr := Must(tf.Array(tf.Int(), 1))
	m := newStatic(t, k, "f", tf.Int(), tf.Int(), self, intArr)
	a, obj, arr := m.Argument(0), m.Argument(1), m.Argument(2)
	require.NoError(t, a.SetName("a"))
	require.NoError(t, obj.SetName("obj"))
	require.NoError(t, arr.SetName("arr"))
	then := newBlock(t, m, "then")
	other := newBlock(t, m, "else")
	v := Must(m.NewLocal(tf.Int(), "v"))
	valueOf := mod.Klass("java.lang.Integer").MethodByDescriptor("valueOf", "(I)Ljava/lang/Integer;")

	sw := Must(NewSwitch(a, other))
	_, err := sw.Put(cf.Int(1), then)
	require.NoError(t, err)
	phi := named(t, Must(NewPhi(tf.Int())), "p")
	_, err = phi.Put(then, a)
	require.NoError(t, err)
	_, err = phi.Put(other, cf.Int(0))
	require.NoError(t, err)

	tests := []struct {
		inst Instruction
		want string
	}{
		{named(t, Must(NewBinary(a, Add, cf.Int(2))), "sum"), "%sum = add int %a, 2"},
		{Must(NewBranch(a, Lt, cf.Int(0), then, other)), "branch lt %a, 0, %then, %else"},
		{Must(NewJump(then)), "jump %then"},
		{sw, "switch %a, default %else [1: %then]"},
		{Must(NewReturn(tf.Int(), a)), "return %a"},
		{NewReturnVoid(mod), "return"},
		{Must(NewThrow(cf.Null())), "throw null"},
		{named(t, Must(NewCall(valueOf, a)), "boxed"), "%boxed = call java.lang.Integer.valueOf(I)Ljava/lang/Integer;(%a)"},
		{named(t, Must(NewCast(tf.Object(), obj)), "o"), "%o = cast %obj to java.lang.Object"},
		{named(t, Must(NewInstanceof(self, obj)), "is"), "%is = instanceof %obj, test.Format"},
		{named(t, Must(NewNewArray(intArr, a)), "na"), "%na = newarray int[] [%a]"},
		{named(t, Must(NewArrayLength(arr)), "len"), "%len = arraylength %arr"},
		{named(t, Must(NewArrayLoad(arr, a)), "el"), "%el = arrayload %arr[%a]"},
		{Must(NewArrayStore(arr, a, cf.Char(7))), "arraystore %arr[%a], (char)7"},
		{named(t, Must(NewLoadStatic(total)), "t"), "%t = load test.Format.TOTAL"},
		{named(t, Must(NewLoadField(count, obj)), "c"), "%c = load test.Format.count, %obj"},
		{named(t, Must(NewLoadLocal(v)), "lv"), "%lv = load %v"},
		{Must(NewStoreField(count, a, obj)), "store test.Format.count, %a, %obj"},
		{Must(NewStoreLocal(v, cf.Int(5))), "store %v, 5"},
		{phi, "%p = phi int [%then: %a, %else: 0]"},
		{Must(NewBinary(a, Mul, a)), "%<unnamed> = mul int %a, %a"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatInstruction(tt.inst, nil))
			assert.Equal(t, tt.want, tt.inst.String())
		})
	}
}

func TestFormatInstruction_CustomNamer(t *testing.T) {
	mod := newTestModule(t)
	tf := mod.Types()
	k := newTestKlass(t, mod, "test.Format")
	m := newStatic(t, k, "f", tf.Int(), tf.Int())
	b := newBlock(t, m, "entry")

	ids := map[Value]int{}
	namer := func(v Value) string {
		if _, ok := ids[v]; !ok {
			ids[v] = len(ids)
		}
		return "%" + string(rune('0'+ids[v]))
	}
	sum := appendInst(t, b, Must(NewBinary(m.Argument(0), Add, m.Argument(0))), nil)
	assert.Equal(t, "%0 = add int %1, %1", FormatInstruction(sum, namer))

	sum.DropAllOperands()
	assert.Equal(t, "%0 = add int <dropped>, <dropped>", FormatInstruction(sum, namer))
}
