package classpath

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bcir/internal/ir"
)

func requireCode(t *testing.T, err error, code string) *LoadError {
	t.Helper()
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le), "want *LoadError, got %T: %v", err, err)
	assert.Equal(t, code, le.Code, le.Error())
	return le
}

func TestPlatform_ResolvesThroughModule(t *testing.T) {
	mod := ir.NewModule(ir.WithClassSource(Platform()))

	m := mod.Klass("java.util.Map")
	require.NotNil(t, m)
	assert.True(t, m.IsInterface())
	assert.NotNil(t, m.MethodByDescriptor("remove", "(Ljava/lang/Object;)Ljava/lang/Object;"))

	mh := mod.Klass("java.lang.invoke.MethodHandle")
	require.NotNil(t, mh)
	invoke := mh.MethodByDescriptor("invokeExact", "([Ljava/lang/Object;)Ljava/lang/Object;")
	require.NotNil(t, invoke)
	assert.True(t, invoke.IsSignaturePolymorphic())

	hm := mod.Klass("java.util.HashMap")
	require.NotNil(t, hm)
	assert.True(t, hm.IsSubclassOf(m))
	assert.Same(t, mod.ObjectKlass(), hm.Superclass())

	assert.NotNil(t, mod.Klass("java.lang.Math").MethodByDescriptor("abs", "(I)I"))
	assert.Same(t, Platform(), Platform())
}

func TestParseYAML(t *testing.T) {
	src, err := LoadYAML(filepath.Join("testdata", "geometry.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"geo.Circle", "geo.Shape"}, src.Names())

	circle, ok := src.LookupClass("geo.Circle")
	require.True(t, ok)
	assert.Equal(t, ir.ObjectClass, circle.Superclass, "classes default to Object")
	assert.Equal(t, []string{"geo.Shape"}, circle.Interfaces)
	assert.Equal(t, ir.Mods(ir.Public, ir.Final, ir.Super), circle.Modifiers)
	require.Len(t, circle.Fields, 2)
	assert.Equal(t, ir.FieldDescriptor{Name: "radius", Type: "D", Modifiers: ir.Mods(ir.Private, ir.Final)}, circle.Fields[0])
	require.Len(t, circle.Methods, 2)
	assert.Equal(t, "<init>", circle.Methods[0].Name)

	shape, ok := src.LookupClass("geo.Shape")
	require.True(t, ok)
	assert.Empty(t, shape.Superclass, "interfaces keep no superclass")
	assert.Equal(t, filepath.Join("testdata", "geometry.yaml"), src.Origin("geo.Shape"))

	_, ok = src.LookupClass("geo.Square")
	assert.False(t, ok)
}

func TestParseCUE_MatchesYAML(t *testing.T) {
	fromYAML, err := LoadYAML(filepath.Join("testdata", "geometry.yaml"))
	require.NoError(t, err)
	fromCUE, err := LoadCUE(filepath.Join("testdata", "geometry.cue"))
	require.NoError(t, err)

	require.Equal(t, fromYAML.Names(), fromCUE.Names())
	for _, n := range fromYAML.Names() {
		want, _ := fromYAML.LookupClass(n)
		got, _ := fromCUE.LookupClass(n)
		assert.Equal(t, want, got, n)
	}
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code string
	}{
		{"syntax", "format: [", ErrCodeSyntax},
		{"unknown key", "format: \"1.0.0\"\nclasess: []\n", ErrCodeSyntax},
		{"no format", "classes: []\n", ErrCodeFormatMissing},
		{"bad format", "format: banana\n", ErrCodeFormatMissing},
		{"future format", "format: \"2.0.0\"\n", ErrCodeFormatUnsupported},
		{"bad name", "format: \"1.0.0\"\nclasses:\n  - name: 9lives\n", ErrCodeClassName},
		{"empty segment", "format: \"1.0.0\"\nclasses:\n  - name: a..B\n", ErrCodeClassName},
		{"unknown modifier", "format: \"1.0.0\"\nclasses:\n  - name: a.B\n    modifiers: [shiny]\n", ErrCodeModifier},
		{"misplaced modifier", "format: \"1.0.0\"\nclasses:\n  - name: a.B\n    modifiers: [native]\n", ErrCodeModifier},
		{"field modifier", "format: \"1.0.0\"\nclasses:\n  - name: a.B\n    fields:\n      - {name: x, type: I, modifiers: [abstract]}\n", ErrCodeModifier},
		{"duplicate class", "format: \"1.0.0\"\nclasses:\n  - name: a.B\n  - name: a.B\n", ErrCodeDuplicate},
		{"duplicate method", "format: \"1.0.0\"\nclasses:\n  - name: a.B\n    methods:\n      - {name: f, descriptor: ()V}\n      - {name: f, descriptor: ()V}\n", ErrCodeDuplicate},
		{"field without type", "format: \"1.0.0\"\nclasses:\n  - name: a.B\n    fields:\n      - {name: x}\n", ErrCodeGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			requireCode(t, err, tt.code)
		})
	}
}

func TestParseYAML_OverloadsAllowed(t *testing.T) {
	src, err := ParseYAML([]byte("format: \"1.0.0\"\nclasses:\n  - name: a.B\n    methods:\n      - {name: f, descriptor: ()V}\n      - {name: f, descriptor: (I)V}\n"))
	require.NoError(t, err)
	d, _ := src.LookupClass("a.B")
	assert.Len(t, d.Methods, 2)
}

func TestParseCUE_Errors(t *testing.T) {
	_, err := ParseCUE([]byte("format: \"1.0.0\"\nclass: \"a.B\": {"), "broken.cue")
	le := requireCode(t, err, ErrCodeSyntax)
	assert.Equal(t, "broken.cue", le.Path)

	_, err = ParseCUE([]byte("format: \"0.9.0\"\n"), "old.cue")
	le = requireCode(t, err, ErrCodeFormatUnsupported)
	assert.True(t, le.Pos.IsValid())
	assert.Equal(t, 1, le.Pos.Line())

	_, err = ParseCUE([]byte("format: \"1.0.0\"\nclass: \"a.B\": {\n\tmodifiers: [\"shiny\"]\n}\n"), "mods.cue")
	le = requireCode(t, err, ErrCodeModifier)
	assert.Equal(t, 2, le.Pos.Line())
	assert.Contains(t, le.Error(), "mods.cue:2:")

	_, err = ParseCUE([]byte("format: \"1.0.0\"\nclass: \"a.B\": {name: \"a.C\"}\n"), "")
	requireCode(t, err, ErrCodeClassName)
}

func TestLoadDir(t *testing.T) {
	src, err := LoadDir(context.Background(), filepath.Join("testdata", "dir"), WithConcurrency(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"geo.Shape", "geo.Square"}, src.Names())
	assert.Equal(t, filepath.Join("testdata", "dir", "nested", "square.cue"), src.Origin("geo.Square"))

	mod := ir.NewModule(ir.WithClassSource(ir.ChainSources(Platform(), src)))
	sq := mod.Klass("geo.Square")
	require.NotNil(t, sq)
	assert.True(t, sq.IsSubclassOf(mod.Klass("geo.Shape")))
}

func TestLoadDir_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := LoadDir(ctx, filepath.Join("testdata", "missing"))
	requireCode(t, err, ErrCodeNotFound)

	_, err = LoadDir(ctx, filepath.Join("testdata", "geometry.yaml"))
	requireCode(t, err, ErrCodeNotFound)

	empty := t.TempDir()
	_, err = LoadDir(ctx, empty)
	requireCode(t, err, ErrCodeNotFound)

	dup := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "geometry.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dup, "a.yaml"), data, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dup, "b.yaml"), data, 0o644))
	_, err = LoadDir(ctx, dup)
	le := requireCode(t, err, ErrCodeDuplicate)
	assert.Equal(t, filepath.Join(dup, "b.yaml"), le.Path)
	assert.Contains(t, le.Message, filepath.Join(dup, "a.yaml"))

	bad := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(bad, "x.yml"), []byte("format: \"3.0.0\"\n"), 0o644))
	_, err = LoadDir(ctx, bad)
	le = requireCode(t, err, ErrCodeFormatUnsupported)
	assert.Equal(t, filepath.Join(bad, "x.yml"), le.Path)
}

func TestLoadError_Error(t *testing.T) {
	assert.Equal(t, "E001: boom", (&LoadError{Code: ErrCodeGeneric, Message: "boom"}).Error())
	assert.Equal(t, "a.yaml: E003: bad", (&LoadError{Code: ErrCodeSyntax, Message: "bad", Path: "a.yaml"}).Error())
}
