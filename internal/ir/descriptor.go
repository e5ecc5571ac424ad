package ir

// ClassDescriptor describes an existing class or interface. Descriptors are
// the construction boundary: a bootstrap outside this package produces them
// (from class files, descriptor documents, or a live runtime) and the Module
// turns them into immutable klasses on demand.
type ClassDescriptor struct {
	// Name is the binary name, e.g. "java.lang.String".
	Name string

	// Superclass is the binary name of the superclass, empty only for
	// java.lang.Object and interfaces without an explicit superclass.
	Superclass string

	// Interfaces lists the binary names of the direct superinterfaces.
	Interfaces []string

	Modifiers Modifiers
	Fields    []FieldDescriptor
	Methods   []MethodDescriptor
}

// FieldDescriptor describes a field of a ClassDescriptor.
type FieldDescriptor struct {
	Name string

	// Type is a JVM field descriptor such as "I" or "Ljava/lang/Object;".
	Type string

	Modifiers Modifiers
}

// MethodDescriptor describes a method of a ClassDescriptor.
type MethodDescriptor struct {
	Name string

	// Descriptor is the JVM method descriptor, without the receiver.
	Descriptor string

	Modifiers Modifiers
}

// ClassSource resolves binary class names to descriptors.
type ClassSource interface {
	LookupClass(name string) (*ClassDescriptor, bool)
}

// MapSource is a ClassSource backed by a map keyed by binary name.
type MapSource map[string]*ClassDescriptor

// LookupClass implements ClassSource.
func (s MapSource) LookupClass(name string) (*ClassDescriptor, bool) {
	d, ok := s[name]
	return d, ok
}

type chainSource []ClassSource

func (c chainSource) LookupClass(name string) (*ClassDescriptor, bool) {
	for _, s := range c {
		if d, ok := s.LookupClass(name); ok {
			return d, true
		}
	}
	return nil, false
}

// ChainSources returns a source consulting each source in order.
func ChainSources(srcs ...ClassSource) ClassSource {
	var c chainSource
	for _, s := range srcs {
		if s != nil {
			c = append(c, s)
		}
	}
	return c
}
