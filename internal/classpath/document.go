package classpath

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/roach88/bcir/internal/ir"
)

// SupportedFormat is the semver constraint document formats must satisfy.
const SupportedFormat = "^1.0.0"

var supported = mustConstraint(SupportedFormat)

func mustConstraint(c string) *semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(fmt.Sprintf("classpath: bad constraint %q: %v", c, err))
	}
	return cs
}

type document struct {
	Format  string     `yaml:"format"`
	Classes []classDoc `yaml:"classes"`
}

type classDoc struct {
	Name       string      `yaml:"name" json:"name,omitempty"`
	Superclass string      `yaml:"superclass,omitempty" json:"superclass,omitempty"`
	Interfaces []string    `yaml:"interfaces,omitempty" json:"interfaces,omitempty"`
	Modifiers  []string    `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
	Fields     []fieldDoc  `yaml:"fields,omitempty" json:"fields,omitempty"`
	Methods    []methodDoc `yaml:"methods,omitempty" json:"methods,omitempty"`
}

type fieldDoc struct {
	Name      string   `yaml:"name" json:"name"`
	Type      string   `yaml:"type" json:"type"`
	Modifiers []string `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
}

type methodDoc struct {
	Name       string   `yaml:"name" json:"name"`
	Descriptor string   `yaml:"descriptor" json:"descriptor"`
	Modifiers  []string `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
}

func checkFormat(format string) error {
	if format == "" {
		return loadErrorf(ErrCodeFormatMissing, "document does not declare a format version")
	}
	v, err := semver.NewVersion(format)
	if err != nil {
		return loadErrorf(ErrCodeFormatMissing, "invalid format version %q: %v", format, err)
	}
	if !supported.Check(v) {
		return loadErrorf(ErrCodeFormatUnsupported, "format %s does not satisfy %s", v, SupportedFormat)
	}
	return nil
}

// descriptor converts a class document, checking names and modifiers.
func (c *classDoc) descriptor() (*ir.ClassDescriptor, error) {
	if !validBinaryName(c.Name) {
		return nil, loadErrorf(ErrCodeClassName, "invalid class name %q", c.Name)
	}
	mods, err := parseModifiers(c.Modifiers, ir.Modifier.CanModifyClass, "class "+c.Name)
	if err != nil {
		return nil, err
	}
	d := &ir.ClassDescriptor{
		Name:       c.Name,
		Superclass: c.Superclass,
		Interfaces: append([]string(nil), c.Interfaces...),
		Modifiers:  mods,
	}
	if d.Superclass == "" && !mods.Has(ir.Interface) && c.Name != ir.ObjectClass {
		d.Superclass = ir.ObjectClass
	}
	fields := map[string]bool{}
	for _, f := range c.Fields {
		if f.Name == "" || f.Type == "" {
			return nil, loadErrorf(ErrCodeGeneric, "class %s: field needs a name and a type", c.Name)
		}
		if fields[f.Name] {
			return nil, loadErrorf(ErrCodeDuplicate, "class %s: field %s described twice", c.Name, f.Name)
		}
		fields[f.Name] = true
		fm, err := parseModifiers(f.Modifiers, ir.Modifier.CanModifyField, "field "+c.Name+"."+f.Name)
		if err != nil {
			return nil, err
		}
		d.Fields = append(d.Fields, ir.FieldDescriptor{Name: f.Name, Type: f.Type, Modifiers: fm})
	}
	methods := map[string]bool{}
	for _, m := range c.Methods {
		if m.Name == "" || m.Descriptor == "" {
			return nil, loadErrorf(ErrCodeGeneric, "class %s: method needs a name and a descriptor", c.Name)
		}
		key := m.Name + m.Descriptor
		if methods[key] {
			return nil, loadErrorf(ErrCodeDuplicate, "class %s: method %s described twice", c.Name, key)
		}
		methods[key] = true
		mm, err := parseModifiers(m.Modifiers, ir.Modifier.CanModifyMethod, "method "+c.Name+"."+key)
		if err != nil {
			return nil, err
		}
		d.Methods = append(d.Methods, ir.MethodDescriptor{Name: m.Name, Descriptor: m.Descriptor, Modifiers: mm})
	}
	return d, nil
}

func parseModifiers(names []string, applies func(ir.Modifier) bool, what string) (ir.Modifiers, error) {
	var mods ir.Modifiers
	for _, n := range names {
		m, ok := ir.ParseModifier(strings.ToLower(n))
		if !ok {
			return 0, loadErrorf(ErrCodeModifier, "%s: unknown modifier %q", what, n)
		}
		if !applies(m) {
			return 0, loadErrorf(ErrCodeModifier, "%s: modifier %s does not apply", what, m)
		}
		mods = mods.With(m)
	}
	return mods, nil
}

// validBinaryName accepts dotted Java binary names such as
// "java.util.Map$Entry".
func validBinaryName(name string) bool {
	if name == "" {
		return false
	}
	for _, part := range strings.Split(name, ".") {
		if part == "" {
			return false
		}
		for i, r := range part {
			switch {
			case r == '_' || r == '$':
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			case r >= '0' && r <= '9' && i > 0:
			default:
				return false
			}
		}
	}
	return true
}
