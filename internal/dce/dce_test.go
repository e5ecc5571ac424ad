package dce

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/roach88/bcir/internal/ir"
	"github.com/roach88/bcir/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opcodes(b *ir.BasicBlock) []ir.Opcode {
	var out []ir.Opcode
	for inst := range b.Instructions().All() {
		out = append(out, inst.Opcode())
	}
	return out
}

func quiet(opts ...Option) *Eliminator {
	return New(append([]Option{WithLogger(testutil.DiscardLogger())}, opts...)...)
}

// ============================================================================
// Rule 1: unused instructions
// ============================================================================

func TestUnusedInstructions_Binary(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Void(), tf.Int(), tf.Int())
	x, y := m.Argument(0), m.Argument(1)
	b := testutil.NewBlock(t, m, "entry")

	testutil.Append(t, b, ir.Must(ir.NewBinary(x, ir.Add, cf.Int(1))))
	byZero := testutil.Append(t, b, ir.Must(ir.NewBinary(x, ir.Div, cf.Int(0))))
	testutil.Append(t, b, ir.Must(ir.NewBinary(x, ir.Div, cf.Int(2))))
	byArg := testutil.Append(t, b, ir.Must(ir.NewBinary(x, ir.Rem, y)))
	testutil.Append(t, b, ir.NewReturnVoid(mod))

	changed, err := quiet().Method(m)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []ir.Opcode{ir.OpBinary, ir.OpBinary, ir.OpReturn}, opcodes(b))
	assert.Same(t, b, byZero.Parent(), "division by zero may throw")
	assert.Same(t, b, byArg.Parent(), "divisor is not a known constant")
	testutil.RequireMethodConsistent(t, m)
}

func TestUnusedInstructions_FloatingDivision(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Void(), tf.Primitive(ir.Double))
	b := testutil.NewBlock(t, m, "entry")

	testutil.Append(t, b, ir.Must(ir.NewBinary(m.Argument(0), ir.Div, cf.Double(0))))
	testutil.Append(t, b, ir.NewReturnVoid(mod))

	changed, err := UnusedInstructions.Block(b)
	require.NoError(t, err)
	assert.True(t, changed, "floating-point division never throws")
	assert.Equal(t, []ir.Opcode{ir.OpReturn}, opcodes(b))
}

func TestUnusedInstructions_LoadsAndExtras(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	k := testutil.NewKlass(t, mod, "test.DCE")
	total := ir.Must(k.NewField(tf.Int(), "total", ir.Mods(ir.Static)))
	m := testutil.NewStatic(t, k, "f", tf.Void(), tf.Object())
	obj := m.Argument(0)
	v := ir.Must(m.NewLocal(tf.Int(), "v"))
	b := testutil.NewBlock(t, m, "entry")
	str := ir.Must(tf.Reference(mod.Klass(ir.StringClass)))

	testutil.Append(t, b, ir.Must(ir.NewLoadLocal(v)))
	static := testutil.Append(t, b, ir.Must(ir.NewLoadStatic(total)))
	testutil.Append(t, b, ir.Must(ir.NewInstanceof(str, obj)))
	cast := testutil.Append(t, b, ir.Must(ir.NewCast(str, obj)))
	testutil.Append(t, b, ir.Must(ir.NewPhi(tf.Int())))
	testutil.Append(t, b, ir.NewReturnVoid(mod))

	changed, err := UnusedInstructions.Block(b)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []ir.Opcode{ir.OpLoad, ir.OpCast, ir.OpReturn}, opcodes(b))
	assert.Same(t, b, static.Parent(), "field loads are kept")
	assert.Same(t, b, cast.Parent(), "casts may throw")
}

func TestUnusedInstructions_Chain(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Void(), tf.Int())
	b := testutil.NewBlock(t, m, "entry")

	a := testutil.Append(t, b, ir.Must(ir.NewBinary(m.Argument(0), ir.Mul, cf.Int(3))))
	c := testutil.Append(t, b, ir.Must(ir.NewBinary(a, ir.Add, cf.Int(1))))
	testutil.Append(t, b, ir.Must(ir.NewBinary(c, ir.Xor, a)))
	testutil.Append(t, b, ir.NewReturnVoid(mod))

	changed, err := UnusedInstructions.Block(b)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []ir.Opcode{ir.OpReturn}, opcodes(b))
	assert.Equal(t, 0, m.Argument(0).NumUses())
}

// ============================================================================
// Box/unbox, casts and pure calls
// ============================================================================

func TestBoxUnbox(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Int(), tf.Int())
	x := m.Argument(0)
	b := testutil.NewBlock(t, m, "entry")
	integer := mod.Klass("java.lang.Integer")
	valueOf := integer.MethodByDescriptor("valueOf", "(I)Ljava/lang/Integer;")
	intValue := integer.MethodByDescriptor("intValue", "()I")
	require.NotNil(t, valueOf)
	require.NotNil(t, intValue)

	boxed := testutil.Append(t, b, ir.Must(ir.NewCall(valueOf, x)))
	unboxed := testutil.Append(t, b, ir.Must(ir.NewCall(intValue, boxed)))
	ret := testutil.Append(t, b, ir.Must(ir.NewReturn(tf.Int(), unboxed)))

	changed, err := quiet().Method(m)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []ir.Opcode{ir.OpReturn}, opcodes(b), "the box is an unused pure call afterwards")
	assert.Equal(t, ir.Value(x), ret.Value())
	testutil.RequireMethodConsistent(t, m)
}

func TestBoxUnbox_MismatchedWrapper(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Primitive(ir.Long), tf.Primitive(ir.Long))
	b := testutil.NewBlock(t, m, "entry")
	long := mod.Klass("java.lang.Long")
	valueOf := long.MethodByDescriptor("valueOf", "(J)Ljava/lang/Long;")
	intValue := mod.Klass("java.lang.Number").MethodByDescriptor("intValue", "()I")
	require.NotNil(t, valueOf)
	require.NotNil(t, intValue)

	boxed := testutil.Append(t, b, ir.Must(ir.NewCall(valueOf, m.Argument(0))))
	narrowed := testutil.Append(t, b, ir.Must(ir.NewCall(intValue, boxed)))
	testutil.Append(t, b, ir.Must(ir.NewReturn(tf.Primitive(ir.Long), m.Argument(0))))

	changed, err := BoxUnbox.Block(b)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, b, narrowed.Parent())
}

func TestBoxUnbox_NarrowingArgument(t *testing.T) {
	for _, kind := range []ir.PrimitiveKind{ir.Boolean, ir.Byte, ir.Char, ir.Short} {
		t.Run(kind.String(), func(t *testing.T) {
			mod := testutil.NewModule(t)
			tf := mod.Types()
			narrow := tf.Primitive(kind)
			k := testutil.NewKlass(t, mod, "test.DCE")
			m := testutil.NewStatic(t, k, "f", narrow, tf.Int())
			b := testutil.NewBlock(t, m, "entry")
			wrapper := mod.Klass(kind.WrapperName())
			boxedDesc := "L" + strings.ReplaceAll(kind.WrapperName(), ".", "/") + ";"
			valueOf := wrapper.MethodByDescriptor("valueOf", "("+kind.Descriptor()+")"+boxedDesc)
			unboxM := wrapper.MethodByDescriptor(kind.UnboxMethodName(), "()"+kind.Descriptor())
			require.NotNil(t, valueOf)
			require.NotNil(t, unboxM)

			boxed := testutil.Append(t, b, ir.Must(ir.NewCall(valueOf, m.Argument(0))))
			unboxed := testutil.Append(t, b, ir.Must(ir.NewCall(unboxM, boxed)))
			ret := testutil.Append(t, b, ir.Must(ir.NewReturn(narrow, unboxed)))
			require.Empty(t, ir.Verify(m))

			changed, err := BoxUnbox.Block(b)
			require.NoError(t, err)
			assert.False(t, changed, "an int argument is narrowed by valueOf")
			assert.Equal(t, ir.Value(unboxed), ret.Value())

			_, err = quiet().Method(m)
			require.NoError(t, err, "the full pass accepts the method")
			testutil.RequireMethodConsistent(t, m)
		})
	}
}

func TestDeadCasts(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	k := testutil.NewKlass(t, mod, "test.DCE")
	str := ir.Must(tf.Reference(mod.Klass(ir.StringClass)))
	m := testutil.NewStatic(t, k, "f", tf.Object(), str, tf.Object())
	s, o := m.Argument(0), m.Argument(1)
	b := testutil.NewBlock(t, m, "entry")

	same := testutil.Append(t, b, ir.Must(ir.NewCast(str, s)))
	down := testutil.Append(t, b, ir.Must(ir.NewCast(str, o)))
	r := testutil.Append(t, b, ir.Must(ir.NewReturn(tf.Object(), same)))

	changed, err := DeadCasts.Method(m)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, same.Parent())
	assert.Same(t, b, down.Parent(), "a downcast is kept")
	assert.Equal(t, ir.Value(s), r.Value())
}

func TestUnusedPureCalls(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Void())
	b := testutil.NewBlock(t, m, "entry")
	abs := mod.Klass("java.lang.Math").MethodByDescriptor("abs", "(I)I")
	valueOf := mod.Klass("java.lang.Integer").MethodByDescriptor("valueOf", "(I)Ljava/lang/Integer;")
	require.NotNil(t, abs)

	box := testutil.Append(t, b, ir.Must(ir.NewCall(valueOf, cf.Int(1))))
	call := testutil.Append(t, b, ir.Must(ir.NewCall(abs, cf.Int(-1))))
	testutil.Append(t, b, ir.NewReturnVoid(mod))

	changed, err := UnusedPureCalls.Block(b)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, box.Parent())
	assert.Same(t, b, call.Parent(), "not on the default allow-list")

	e := quiet(WithPureMethods("java.lang.Math.abs(I)I"))
	changed, err = e.RuleBlock(UnusedPureCalls, b)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []ir.Opcode{ir.OpReturn}, opcodes(b))
}

// ============================================================================
// Dead stores
// ============================================================================

func TestDeadStores_Loop(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Void())
	v := ir.Must(m.NewLocal(tf.Int(), "v"))

	entry := testutil.NewBlock(t, m, "entry")
	head := testutil.NewBlock(t, m, "head")
	body := testutil.NewBlock(t, m, "body")
	exit := testutil.NewBlock(t, m, "exit")

	initial := testutil.Append(t, entry, ir.Must(ir.NewStoreLocal(v, cf.Int(1))))
	testutil.Append(t, entry, ir.Must(ir.NewJump(head)))
	cur := testutil.Append(t, head, ir.Must(ir.NewLoadLocal(v)))
	testutil.Append(t, head, ir.Must(ir.NewBranch(cur, ir.Lt, cf.Int(10), body, exit)))
	next := testutil.Append(t, body, ir.Must(ir.NewBinary(cur, ir.Add, cf.Int(1))))
	backedge := testutil.Append(t, body, ir.Must(ir.NewStoreLocal(v, next)))
	testutil.Append(t, body, ir.Must(ir.NewJump(head)))
	last := testutil.Append(t, exit, ir.Must(ir.NewStoreLocal(v, cf.Int(0))))
	testutil.Append(t, exit, ir.NewReturnVoid(mod))

	changed, err := DeadStores.Method(m)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Same(t, entry, initial.Parent())
	assert.Same(t, body, backedge.Parent(), "the loop header reads it")
	assert.Nil(t, last.Parent())
	testutil.RequireMethodConsistent(t, m)
}

func TestDeadStores_SelfLoop(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Void())
	v := ir.Must(m.NewLocal(tf.Int(), "v"))

	loop := testutil.NewBlock(t, m, "loop")
	exit := testutil.NewBlock(t, m, "exit")
	cur := testutil.Append(t, loop, ir.Must(ir.NewLoadLocal(v)))
	next := testutil.Append(t, loop, ir.Must(ir.NewBinary(cur, ir.Add, cf.Int(1))))
	st := testutil.Append(t, loop, ir.Must(ir.NewStoreLocal(v, next)))
	testutil.Append(t, loop, ir.Must(ir.NewBranch(next, ir.Lt, cf.Int(10), loop, exit)))
	testutil.Append(t, exit, ir.NewReturnVoid(mod))

	changed, err := DeadStores.Block(loop)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, loop, st.Parent(), "the load earlier in the same block runs again")
}

func TestDeadStores_OverwrittenAndFields(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	f := ir.Must(k.NewField(tf.Int(), "f", ir.Mods(ir.Static)))
	m := testutil.NewStatic(t, k, "f", tf.Int())
	v := ir.Must(m.NewLocal(tf.Int(), "v"))
	w := ir.Must(m.NewLocal(tf.Int(), "w"))
	b := testutil.NewBlock(t, m, "entry")

	first := testutil.Append(t, b, ir.Must(ir.NewStoreLocal(v, cf.Int(1))))
	other := testutil.Append(t, b, ir.Must(ir.NewStoreLocal(w, cf.Int(2))))
	field := testutil.Append(t, b, ir.Must(ir.NewStoreStatic(f, cf.Int(3))))
	ld := testutil.Append(t, b, ir.Must(ir.NewLoadLocal(v)))
	testutil.Append(t, b, ir.Must(ir.NewReturn(tf.Int(), ld)))

	changed, err := DeadStores.Block(b)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Same(t, b, first.Parent())
	assert.Nil(t, other.Parent(), "w is never read")
	assert.Same(t, b, field.Parent(), "field stores are not candidates")
}

// ============================================================================
// Useless phis
// ============================================================================

func TestUselessPhis_ThroughIntermediatePhi(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Int(), tf.Int())
	x := m.Argument(0)

	entry := testutil.NewBlock(t, m, "entry")
	head := testutil.NewBlock(t, m, "head")
	body := testutil.NewBlock(t, m, "body")
	exit := testutil.NewBlock(t, m, "exit")

	testutil.Append(t, entry, ir.Must(ir.NewJump(head)))
	p := testutil.Append(t, head, ir.Must(ir.NewPhi(tf.Int())))
	br := testutil.Append(t, head, ir.Must(ir.NewBranch(p, ir.Lt, cf.Int(10), body, exit)))
	q := testutil.Append(t, body, ir.Must(ir.NewPhi(tf.Int())))
	testutil.Append(t, body, ir.Must(ir.NewJump(head)))
	ret := testutil.Append(t, exit, ir.Must(ir.NewReturn(tf.Int(), p)))

	_, err := p.Put(entry, x)
	require.NoError(t, err)
	_, err = p.Put(body, q)
	require.NoError(t, err)
	_, err = q.Put(head, p)
	require.NoError(t, err)
	require.Empty(t, ir.Verify(m))

	changed, err := UselessPhis.Method(m)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Nil(t, p.Parent())
	assert.Nil(t, q.Parent())
	assert.Equal(t, ir.Value(x), br.Left())
	assert.Equal(t, ir.Value(x), ret.Value())
	testutil.RequireMethodConsistent(t, m)
}

func TestUselessPhis_DistinctSourcesKept(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Int(), tf.Int())
	x := m.Argument(0)

	entry := testutil.NewBlock(t, m, "entry")
	neg := testutil.NewBlock(t, m, "neg")
	join := testutil.NewBlock(t, m, "join")
	testutil.Append(t, entry, ir.Must(ir.NewBranch(x, ir.Lt, cf.Int(0), neg, join)))
	testutil.Append(t, neg, ir.Must(ir.NewJump(join)))
	phi := testutil.Append(t, join, ir.Must(ir.NewPhi(tf.Int())))
	testutil.Append(t, join, ir.Must(ir.NewReturn(tf.Int(), phi)))
	_, err := phi.Put(entry, x)
	require.NoError(t, err)
	_, err = phi.Put(neg, cf.Int(0))
	require.NoError(t, err)

	changed, err := UselessPhis.Method(m)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Same(t, join, phi.Parent())
}

// ============================================================================
// Drivers
// ============================================================================

// buildNoisy builds a method exercising every rule once.
func buildNoisy(t *testing.T, k *ir.Klass) *ir.Method {
	t.Helper()
	mod := k.Module()
	tf := mod.Types()
	cf := mod.Constants()
	m := testutil.NewStatic(t, k, "noisy", tf.Int(), tf.Int())
	x := m.Argument(0)
	v := ir.Must(m.NewLocal(tf.Int(), "v"))
	integer := mod.Klass("java.lang.Integer")
	valueOf := integer.MethodByDescriptor("valueOf", "(I)Ljava/lang/Integer;")
	intValue := integer.MethodByDescriptor("intValue", "()I")

	entry := testutil.NewBlock(t, m, "entry")
	join := testutil.NewBlock(t, m, "join")
	boxed := testutil.Append(t, entry, ir.Must(ir.NewCall(valueOf, x)))
	unboxed := testutil.Append(t, entry, ir.Must(ir.NewCall(intValue, boxed)))
	same := testutil.Append(t, entry, ir.Must(ir.NewCast(tf.Int(), unboxed)))
	testutil.Append(t, entry, ir.Must(ir.NewStoreLocal(v, same)))
	testutil.Append(t, entry, ir.Must(ir.NewBinary(same, ir.Mul, cf.Int(2))))
	testutil.Append(t, entry, ir.Must(ir.NewJump(join)))
	phi := testutil.Append(t, join, ir.Must(ir.NewPhi(tf.Int())))
	testutil.Append(t, join, ir.Must(ir.NewReturn(tf.Int(), phi)))
	_, err := phi.Put(entry, same)
	require.NoError(t, err)
	return m
}

func TestEliminator_MethodReachesFixpoint(t *testing.T) {
	mod := testutil.NewModule(t)
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := buildNoisy(t, k)

	var fired []Rule
	e := quiet(WithTrace(func(f Firing) {
		assert.Equal(t, "test.DCE.noisy(I)I", f.Method)
		fired = append(fired, f.Rule)
	}))
	changed, err := e.Method(m)
	require.NoError(t, err)
	assert.True(t, changed)
	for _, r := range Rules {
		assert.Contains(t, fired, r)
	}

	entry, join := m.Blocks().At(0), m.Blocks().At(1)
	assert.Equal(t, []ir.Opcode{ir.OpJump}, opcodes(entry))
	assert.Equal(t, []ir.Opcode{ir.OpReturn}, opcodes(join))
	assert.Equal(t, ir.Value(m.Argument(0)), join.Terminator().(*ir.ReturnInst).Value())
	testutil.RequireMethodConsistent(t, m)

	changed, err = e.Method(m)
	require.NoError(t, err)
	assert.False(t, changed, "a second run finds nothing")
}

func TestEliminator_WithRules(t *testing.T) {
	mod := testutil.NewModule(t)
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := buildNoisy(t, k)

	var fired []Rule
	e := quiet(WithRules(DeadCasts, UselessPhis), WithTrace(func(f Firing) {
		fired = append(fired, f.Rule)
	}))
	changed, err := e.Method(m)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.ElementsMatch(t, []Rule{DeadCasts, UselessPhis}, fired)
	assert.Equal(t, 5, m.EntryBlock().Instructions().Len(), "entry keeps all but the cast")
}

func TestEliminator_FiringDescribesOriginal(t *testing.T) {
	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Void(), tf.Int())
	require.NoError(t, m.Argument(0).SetName("x"))
	b := testutil.NewBlock(t, m, "entry")
	sum := testutil.Append(t, b, ir.Must(ir.NewBinary(m.Argument(0), ir.Add, cf.Int(1))))
	require.NoError(t, sum.SetName("sum"))
	testutil.Append(t, b, ir.NewReturnVoid(mod))

	var got []Firing
	e := quiet(WithTrace(func(f Firing) { got = append(got, f) }))
	_, err := e.Block(b)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, Firing{
		Rule:   UnusedInstructions,
		Method: "test.DCE.f(I)V",
		Block:  "%entry",
		Inst:   "%sum = add int %x, 1",
	}, got[0])
}

func TestModule_SkipsImmutableAndUnresolved(t *testing.T) {
	mod := testutil.NewModule(t)
	a := testutil.NewKlass(t, mod, "test.A")
	b := testutil.NewKlass(t, mod, "test.B")
	ma := buildNoisy(t, a)
	mb := buildNoisy(t, b)
	_, err := b.NewMethod("bodiless", mod.Types().MethodType(mod.Types().Void()), ir.Mods(ir.Public, ir.Static, ir.Native))
	require.NoError(t, err)

	changed, err := quiet().Module(mod)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, ma.EntryBlock().Instructions().Len())
	assert.Equal(t, 1, mb.EntryBlock().Instructions().Len())
	testutil.RequireConsistent(t, mod)

	changed, err = Module(mod)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestUnresolvedMethod_NoChange(t *testing.T) {
	mod := testutil.NewModule(t)
	intValue := mod.Klass("java.lang.Integer").MethodByDescriptor("intValue", "()I")

	changed, err := Method(intValue)
	require.NoError(t, err)
	assert.False(t, changed)
	changed, err = DeadStores.Method(intValue)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestParseRule(t *testing.T) {
	for _, r := range Rules {
		got, err := ParseRule(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	_, err := ParseRule("constant-folding")
	assert.Error(t, err)
	assert.Equal(t, "Rule(42)", Rule(42).String())
}

func TestDefaultPureMethods(t *testing.T) {
	assert.Len(t, DefaultPureMethods, 8)
	assert.Contains(t, DefaultPureMethods, "java.lang.Integer.valueOf(I)Ljava/lang/Integer;")
	assert.Contains(t, DefaultPureMethods, "java.lang.Character.valueOf(C)Ljava/lang/Character;")
}

func TestModule_LogsToCurrentDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	mod := testutil.NewModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := testutil.NewKlass(t, mod, "test.DCE")
	m := testutil.NewStatic(t, k, "f", tf.Void(), tf.Int())
	b := testutil.NewBlock(t, m, "entry")
	testutil.Append(t, b, ir.Must(ir.NewBinary(m.Argument(0), ir.Add, cf.Int(1))))
	testutil.Append(t, b, ir.NewReturnVoid(mod))

	changed, err := Method(m)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Contains(t, buf.String(), "dce rule fired")
	assert.Contains(t, buf.String(), "rule=unused-instructions")
}
