package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/bcir/internal/classpath"
	"github.com/roach88/bcir/internal/ir"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewModule returns a module resolving the embedded platform classes, with
// logging discarded. Extra options are applied after the defaults.
func NewModule(t testing.TB, opts ...ir.ModuleOption) *ir.Module {
	t.Helper()
	all := []ir.ModuleOption{
		ir.WithLogger(DiscardLogger()),
		ir.WithClassSource(classpath.Platform()),
	}
	return ir.NewModule(append(all, opts...)...)
}

// NewKlass creates a public mutable klass extending java.lang.Object.
func NewKlass(t testing.TB, mod *ir.Module, name string) *ir.Klass {
	t.Helper()
	k, err := mod.NewKlass(name, nil, nil, ir.Mods(ir.Public))
	if err != nil {
		t.Fatalf("NewKlass(%q): %v", name, err)
	}
	return k
}

// NewStatic creates a public static method on k.
func NewStatic(t testing.TB, k *ir.Klass, name string, ret ir.ReturnType, params ...ir.RegularType) *ir.Method {
	t.Helper()
	m, err := k.NewMethod(name, k.Module().Types().MethodType(ret, params...), ir.Mods(ir.Public, ir.Static))
	if err != nil {
		t.Fatalf("NewMethod(%q): %v", name, err)
	}
	return m
}

// NewBlock appends a named block to m.
func NewBlock(t testing.TB, m *ir.Method, name string) *ir.BasicBlock {
	t.Helper()
	b, err := m.NewBlock(name)
	if err != nil {
		t.Fatalf("NewBlock(%q): %v", name, err)
	}
	return b
}

// Append links inst at the end of b and returns it.
func Append[T ir.Instruction](t testing.TB, b *ir.BasicBlock, inst T) T {
	t.Helper()
	if err := b.Append(inst); err != nil {
		t.Fatalf("appending %s: %v", inst, err)
	}
	return inst
}
