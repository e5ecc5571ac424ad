package methods

import (
	"fmt"
	"sync"

	"github.com/roach88/bcir/internal/ir"
)

// MapClass is the interface trampoline fields are typed with.
const MapClass = "java.util.Map"

// Trampoline hands host values to generated code. Values are stored under
// generated keys and taken out again by Take, or by the Map.remove call
// that generated code performs through the bound field.
//
// All methods are safe for concurrent use.
type Trampoline struct {
	field *ir.Field
	keys  KeyGenerator

	mu     sync.Mutex
	values map[string]any
}

// NewTrampoline binds a trampoline to field, which must be a static field
// whose type is java.util.Map or a subtype. A nil keys uses
// UUIDKeyGenerator.
func NewTrampoline(field *ir.Field, keys KeyGenerator) (*Trampoline, error) {
	const op = "NewTrampoline"
	if field == nil {
		return nil, typeErrorf(op, "field is nil")
	}
	if !field.IsStatic() {
		return nil, typeErrorf(op, "%s is not static", field)
	}
	mapKlass := field.Klass().Module().Klass(MapClass)
	if mapKlass == nil {
		return nil, structuralErrorf(op, "%s is not on the classpath", MapClass)
	}
	ref, ok := field.Stored().(*ir.ReferenceType)
	if !ok || !ref.Klass().IsSubclassOf(mapKlass) {
		return nil, typeErrorf(op, "%s has type %s, want a %s", field, field.Stored(), MapClass)
	}
	if keys == nil {
		keys = UUIDKeyGenerator{}
	}
	return &Trampoline{field: field, keys: keys, values: map[string]any{}}, nil
}

// DeclareTrampoline adds a public static final java.util.Map field named
// name to k and binds a trampoline to it.
func DeclareTrampoline(k *ir.Klass, name string, keys KeyGenerator) (*Trampoline, error) {
	mapKlass := k.Module().Klass(MapClass)
	if mapKlass == nil {
		return nil, structuralErrorf("DeclareTrampoline", "%s is not on the classpath", MapClass)
	}
	t, err := k.Module().Types().Reference(mapKlass)
	if err != nil {
		return nil, err
	}
	f, err := k.NewField(t, name, ir.Mods(ir.Public, ir.Static, ir.Final))
	if err != nil {
		return nil, err
	}
	return NewTrampoline(f, keys)
}

// Field returns the bound static field.
func (t *Trampoline) Field() *ir.Field { return t.field }

// Put stores v under prefix followed by a generated key and returns the
// key. A generated key that is already in use is an error.
func (t *Trampoline) Put(prefix string, v any) (string, error) {
	key := prefix + t.keys.Generate()
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.values[key]; ok {
		return "", fmt.Errorf("trampoline key %q is already in use", key)
	}
	t.values[key] = v
	return key, nil
}

// Take removes and returns the value stored under key.
func (t *Trampoline) Take(key string) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.values[key]
	delete(t.values, key)
	return v, ok
}

// Remove is Take with java.util.Map.remove semantics: a missing key or a
// non-string key yields nil.
func (t *Trampoline) Remove(key any) any {
	s, ok := key.(string)
	if !ok {
		return nil
	}
	v, _ := t.Take(s)
	return v
}

// Drop discards the values stored under keys.
func (t *Trampoline) Drop(keys ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, k := range keys {
		delete(t.values, k)
	}
}

// Len returns the number of values not yet taken.
func (t *Trampoline) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.values)
}

func typeErrorf(op, format string, args ...any) error {
	return &ir.Error{Kind: ir.KindTypeContract, Op: op, Message: fmt.Sprintf(format, args...)}
}

func structuralErrorf(op, format string, args ...any) error {
	return &ir.Error{Kind: ir.KindStructural, Op: op, Message: fmt.Sprintf(format, args...)}
}
