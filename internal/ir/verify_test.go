package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(ps []Problem) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Code)
	}
	return out
}

// buildAbs builds abs(x) with a diamond and a phi.
func buildAbs(t *testing.T, k *Klass) *Method {
	t.Helper()
	mod := k.Module()
	tf := mod.Types()
	cf := mod.Constants()
	m := newStatic(t, k, "abs", tf.Int(), tf.Int())
	x := m.Argument(0)

	entry := newBlock(t, m, "entry")
	neg := newBlock(t, m, "neg")
	join := newBlock(t, m, "join")

	appendInst(t, entry, Must(NewBranch(x, Lt, cf.Int(0), neg, join)), nil)
	negated := appendInst(t, neg, Must(NewBinary(cf.Int(0), Sub, x)), nil)
	require.NoError(t, negated.SetName("negated"))
	appendInst(t, neg, Must(NewJump(join)), nil)
	phi := appendInst(t, join, Must(NewPhi(tf.Int())), nil)
	_, err := phi.Put(entry, x)
	require.NoError(t, err)
	_, err = phi.Put(neg, negated)
	require.NoError(t, err)
	appendInst(t, join, Must(NewReturn(tf.Int(), phi)), nil)
	return m
}

func TestVerify_CleanMethod(t *testing.T) {
	mod := newTestModule(t)
	k := newTestKlass(t, mod, "test.Verify")
	m := buildAbs(t, k)

	assert.Empty(t, Verify(m))
	assert.Empty(t, VerifyModule(mod))
	assert.Nil(t, Verify(mod.Klass("java.lang.Integer").MethodsNamed("intValue")[0]), "unresolved methods are skipped")
}

func TestVerify_MissingAndMisplacedTerminator(t *testing.T) {
	mod := newTestModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := newTestKlass(t, mod, "test.Verify")
	m := newStatic(t, k, "f", tf.Void())

	open := newBlock(t, m, "open")
	appendInst(t, open, Must(NewBinary(cf.Int(1), Add, cf.Int(2))), nil)

	early := newBlock(t, m, "early")
	appendInst(t, early, NewReturnVoid(mod), nil)
	appendInst(t, early, Must(NewBinary(cf.Int(1), Add, cf.Int(2))), nil)

	ps := Verify(m)
	assert.Equal(t, []string{VerifyNoTerminator, VerifyNoTerminator, VerifyMisplacedTerm}, codes(ps))
	assert.Equal(t, "%open", ps[0].Block)
	assert.Equal(t, "return", ps[2].Inst)
}

func TestVerify_Phis(t *testing.T) {
	mod := newTestModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := newTestKlass(t, mod, "test.Verify")
	m := newStatic(t, k, "f", tf.Int())

	entry := newBlock(t, m, "entry")
	stray := newBlock(t, m, "stray")
	appendInst(t, entry, Must(NewBinary(cf.Int(1), Add, cf.Int(2))), nil)
	phi := appendInst(t, entry, Must(NewPhi(tf.Int())), nil)
	_, err := phi.Put(stray, cf.Int(3))
	require.NoError(t, err)
	appendInst(t, entry, Must(NewReturn(tf.Int(), phi)), nil)
	appendInst(t, stray, NewReturnVoid(mod), nil)

	got := codes(Verify(m))
	assert.Contains(t, got, VerifyMisplacedPhi)
	assert.Contains(t, got, VerifyPhiPredecessor)
}

func TestVerify_Operands(t *testing.T) {
	mod := newTestModule(t)
	tf := mod.Types()
	cf := mod.Constants()
	k := newTestKlass(t, mod, "test.Verify")
	m := newStatic(t, k, "f", tf.Int(), tf.Int())
	other := newStatic(t, k, "g", tf.Int(), tf.Int())
	b := newBlock(t, m, "entry")

	detached := Must(NewBinary(cf.Int(1), Add, cf.Int(2)))
	appendInst(t, b, Must(NewBinary(other.Argument(0), Add, detached)), nil)
	dropped := appendInst(t, b, Must(NewBinary(m.Argument(0), Add, cf.Int(1))), nil)
	dropped.DropAllOperands()
	appendInst(t, b, Must(NewReturn(tf.Int(), m.Argument(0))), nil)

	got := codes(Verify(m))
	assert.Equal(t, []string{VerifyForeignOperand, VerifyDetachedOperand, VerifyDroppedOperand, VerifyDroppedOperand}, got)
}

func TestProblem_Error(t *testing.T) {
	p := Problem{Code: VerifyNoTerminator, Method: "a.B.f()V", Block: "%entry", Message: "block does not end in a terminator"}
	assert.Equal(t, "[V002] a.B.f()V %entry: block does not end in a terminator", p.Error())

	p = Problem{Code: VerifyOperandType, Method: "a.B.f()V", Block: "%entry", Inst: "return", Message: "bad"}
	assert.Equal(t, "[V007] a.B.f()V %entry: return: bad", p.Error())
}
