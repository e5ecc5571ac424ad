package asm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/bcir/internal/ir"
)

// Method reference lookup failures.
var (
	ErrBadReference    = errors.New("malformed method reference")
	ErrNotFound        = errors.New("not found")
	ErrAmbiguousMethod = errors.New("overloaded method needs a descriptor")
)

// FindMethod resolves a reference of the form Owner.name(desc) or
// Owner.name. Without a descriptor the name must be unambiguous.
func FindMethod(mod *ir.Module, ref string) (*ir.Method, error) {
	owner, name, desc, ok := splitMember(ref)
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrBadReference, ref)
	}
	k, err := mod.LookupKlass(owner)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, fmt.Errorf("class %s %w", owner, ErrNotFound)
	}
	if desc != "" {
		if m := k.MethodByDescriptor(name, desc); m != nil {
			return m, nil
		}
		return nil, fmt.Errorf("method %s %w", ref, ErrNotFound)
	}
	ms := k.MethodsNamed(name)
	switch len(ms) {
	case 0:
		return nil, fmt.Errorf("method %s %w", ref, ErrNotFound)
	case 1:
		return ms[0], nil
	}
	sigs := make([]string, len(ms))
	for i, m := range ms {
		sigs[i] = m.Signature()
	}
	return nil, fmt.Errorf("%s: %w: %s", ref, ErrAmbiguousMethod, strings.Join(sigs, ", "))
}
