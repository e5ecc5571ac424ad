package ir

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestModule(t *testing.T) *Module {
	t.Helper()
	return NewModule(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func newTestKlass(t *testing.T, mod *Module, name string) *Klass {
	t.Helper()
	k, err := mod.NewKlass(name, nil, nil, Mods(Public))
	require.NoError(t, err)
	return k
}

// newStatic creates a public static method returning ret.
func newStatic(t *testing.T, k *Klass, name string, ret ReturnType, params ...RegularType) *Method {
	t.Helper()
	m, err := k.NewMethod(name, k.Module().Types().MethodType(ret, params...), Mods(Public, Static))
	require.NoError(t, err)
	return m
}

func newBlock(t *testing.T, m *Method, name string) *BasicBlock {
	t.Helper()
	b, err := m.NewBlock(name)
	require.NoError(t, err)
	return b
}

func appendInst[T Instruction](t *testing.T, b *BasicBlock, inst T, err error) T {
	t.Helper()
	require.NoError(t, err)
	require.NoError(t, b.Append(inst))
	return inst
}

func stringType(t *testing.T, mod *Module) *ReferenceType {
	t.Helper()
	rt, err := mod.Types().Reference(mod.Klass(StringClass))
	require.NoError(t, err)
	return rt
}
