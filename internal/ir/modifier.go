package ir

import "strings"

// Modifier is a single JVM access or property flag.
//
// Several JVM flags share a bit (SUPER and SYNCHRONIZED, VOLATILE and
// BRIDGE, TRANSIENT and VARARGS), so a Modifier is an ordinal and the JVM
// bit is looked up through Bits together with the target it applies to.
type Modifier int

const (
	Public Modifier = iota
	Private
	Protected
	Static
	Final
	Super
	Synchronized
	Volatile
	Bridge
	Varargs
	Transient
	Native
	Interface
	Abstract
	Strict
	Synthetic
	Annotation
	Enum
)

type modTarget uint8

const (
	onClass modTarget = 1 << iota
	onField
	onMethod
)

var modifierInfo = [...]struct {
	name    string
	bit     uint16
	targets modTarget
}{
	Public:       {"public", 0x0001, onClass | onField | onMethod},
	Private:      {"private", 0x0002, onClass | onField | onMethod},
	Protected:    {"protected", 0x0004, onClass | onField | onMethod},
	Static:       {"static", 0x0008, onClass | onField | onMethod},
	Final:        {"final", 0x0010, onClass | onField | onMethod},
	Super:        {"super", 0x0020, onClass},
	Synchronized: {"synchronized", 0x0020, onMethod},
	Volatile:     {"volatile", 0x0040, onField},
	Bridge:       {"bridge", 0x0040, onMethod},
	Varargs:      {"varargs", 0x0080, onMethod},
	Transient:    {"transient", 0x0080, onField},
	Native:       {"native", 0x0100, onMethod},
	Interface:    {"interface", 0x0200, onClass},
	Abstract:     {"abstract", 0x0400, onClass | onMethod},
	Strict:       {"strict", 0x0800, onMethod},
	Synthetic:    {"synthetic", 0x1000, onClass | onField | onMethod},
	Annotation:   {"annotation", 0x2000, onClass},
	Enum:         {"enum", 0x4000, onClass | onField},
}

// String returns the lower-case modifier keyword.
func (m Modifier) String() string { return modifierInfo[m].name }

// Bit returns the JVM access flag bit.
func (m Modifier) Bit() uint16 { return modifierInfo[m].bit }

// CanModifyClass reports whether the flag is valid on a class.
func (m Modifier) CanModifyClass() bool { return modifierInfo[m].targets&onClass != 0 }

// CanModifyField reports whether the flag is valid on a field.
func (m Modifier) CanModifyField() bool { return modifierInfo[m].targets&onField != 0 }

// CanModifyMethod reports whether the flag is valid on a method.
func (m Modifier) CanModifyMethod() bool { return modifierInfo[m].targets&onMethod != 0 }

// ParseModifier looks a modifier up by keyword.
func ParseModifier(name string) (Modifier, bool) {
	for m := range modifierInfo {
		if modifierInfo[m].name == name {
			return Modifier(m), true
		}
	}
	return 0, false
}

// Modifiers is a set of Modifier values.
type Modifiers uint32

// Mods builds a Modifiers set.
func Mods(ms ...Modifier) Modifiers {
	var s Modifiers
	for _, m := range ms {
		s |= 1 << m
	}
	return s
}

// Has reports whether m is in the set.
func (s Modifiers) Has(m Modifier) bool { return s&(1<<m) != 0 }

// With returns the set plus ms.
func (s Modifiers) With(ms ...Modifier) Modifiers { return s | Mods(ms...) }

// Without returns the set minus ms.
func (s Modifiers) Without(ms ...Modifier) Modifiers { return s &^ Mods(ms...) }

// List returns the members in declaration order.
func (s Modifiers) List() []Modifier {
	var out []Modifier
	for m := range modifierInfo {
		if s.Has(Modifier(m)) {
			out = append(out, Modifier(m))
		}
	}
	return out
}

// Bits returns the JVM access flags for the set.
func (s Modifiers) Bits() uint16 {
	var bits uint16
	for _, m := range s.List() {
		bits |= m.Bit()
	}
	return bits
}

// String renders the keywords separated by spaces.
func (s Modifiers) String() string {
	names := make([]string, 0, 4)
	for _, m := range s.List() {
		names = append(names, m.String())
	}
	return strings.Join(names, " ")
}

// validFor reports the first modifier not applicable to the target.
func (s Modifiers) validFor(target modTarget) (Modifier, bool) {
	for _, m := range s.List() {
		if modifierInfo[m].targets&target == 0 {
			return m, false
		}
	}
	return 0, true
}

func fromBits(bits uint16, target modTarget) Modifiers {
	var s Modifiers
	for m := range modifierInfo {
		info := modifierInfo[m]
		if info.targets&target != 0 && bits&info.bit != 0 {
			s |= 1 << m
		}
	}
	return s
}

// FromClassBits decodes class access flags.
func FromClassBits(bits uint16) Modifiers { return fromBits(bits, onClass) }

// FromFieldBits decodes field access flags.
func FromFieldBits(bits uint16) Modifiers { return fromBits(bits, onField) }

// FromMethodBits decodes method access flags.
func FromMethodBits(bits uint16) Modifiers { return fromBits(bits, onMethod) }

// Access is the visibility derived from the access modifiers.
type Access int

const (
	AccessPublic Access = iota
	AccessProtected
	AccessPackagePrivate
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	}
	return "package-private"
}

// AccessOf returns the visibility encoded in s.
func AccessOf(s Modifiers) Access {
	switch {
	case s.Has(Public):
		return AccessPublic
	case s.Has(Protected):
		return AccessProtected
	case s.Has(Private):
		return AccessPrivate
	}
	return AccessPackagePrivate
}

// IsPackagePrivate reports whether s carries no visibility modifier.
func (s Modifiers) IsPackagePrivate() bool { return AccessOf(s) == AccessPackagePrivate }

// WithAccess replaces the visibility modifiers of s with a.
func (s Modifiers) WithAccess(a Access) Modifiers {
	s = s.Without(Public, Protected, Private)
	switch a {
	case AccessPublic:
		s = s.With(Public)
	case AccessProtected:
		s = s.With(Protected)
	case AccessPrivate:
		s = s.With(Private)
	}
	return s
}
