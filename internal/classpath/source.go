package classpath

import (
	"slices"

	"github.com/roach88/bcir/internal/ir"
)

// Source is an ir.ClassSource built from descriptor documents. A Source is
// not modified after loading and is safe for concurrent lookups.
type Source struct {
	classes map[string]*ir.ClassDescriptor
	origin  map[string]string
}

func newSource() *Source {
	return &Source{
		classes: map[string]*ir.ClassDescriptor{},
		origin:  map[string]string{},
	}
}

// LookupClass implements ir.ClassSource.
func (s *Source) LookupClass(name string) (*ir.ClassDescriptor, bool) {
	d, ok := s.classes[name]
	return d, ok
}

// Names returns the described class names in sorted order.
func (s *Source) Names() []string {
	names := make([]string, 0, len(s.classes))
	for n := range s.classes {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of described classes.
func (s *Source) Len() int { return len(s.classes) }

// Origin returns the path of the document that described name.
func (s *Source) Origin(name string) string { return s.origin[name] }

func (s *Source) add(d *ir.ClassDescriptor, path string) error {
	if prev, ok := s.origin[d.Name]; ok {
		msg := "class " + d.Name + " described twice"
		if prev != "" {
			msg += " (first in " + prev + ")"
		}
		return &LoadError{Code: ErrCodeDuplicate, Message: msg, Path: path}
	}
	s.classes[d.Name] = d
	s.origin[d.Name] = path
	return nil
}

// merge installs every class of o, failing on the first duplicate.
func (s *Source) merge(o *Source) error {
	for _, n := range o.Names() {
		if err := s.add(o.classes[n], o.origin[n]); err != nil {
			return err
		}
	}
	return nil
}
