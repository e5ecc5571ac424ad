package dump

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/roach88/bcir/internal/ir"
)

const indent = "  "

// Module writes every mutable klass of mod in creation order. Descriptor
// backed klasses are loaded on demand, so they are left out.
func Module(w io.Writer, mod *ir.Module) error {
	first := true
	for _, k := range mod.Klasses() {
		if !k.IsMutable() {
			continue
		}
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		first = false
		if err := Klass(w, k); err != nil {
			return err
		}
	}
	return nil
}

// Klass writes the declaration of k, its fields and its methods.
func Klass(w io.Writer, k *ir.Klass) error {
	var sb strings.Builder
	sb.WriteString(klassHeader(k))
	sb.WriteString(" {\n")
	fields := k.Fields().Slice()
	for _, f := range fields {
		sb.WriteString(indent + field(f) + "\n")
	}
	for i, m := range k.Methods().Slice() {
		if i > 0 || len(fields) > 0 {
			sb.WriteString("\n")
		}
		writeMethod(&sb, m, indent)
	}
	sb.WriteString("}\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// Method writes one method. Unresolved methods print as a declaration.
func Method(w io.Writer, m *ir.Method) error {
	var sb strings.Builder
	writeMethod(&sb, m, "")
	_, err := io.WriteString(w, sb.String())
	return err
}

// String returns the listing of m.
func String(m *ir.Method) string {
	var sb strings.Builder
	writeMethod(&sb, m, "")
	return sb.String()
}

func klassHeader(k *ir.Klass) string {
	mods := k.Modifiers()
	keyword := "class"
	if k.IsInterface() {
		mods = mods.Without(ir.Interface)
		keyword = "interface"
	}
	var sb strings.Builder
	if s := mods.String(); s != "" {
		sb.WriteString(s + " ")
	}
	sb.WriteString(keyword + " " + k.Name())
	if sup := k.Superclass(); sup != nil {
		sb.WriteString(" extends " + sup.Name())
	}
	if ifaces := k.Interfaces(); len(ifaces) > 0 {
		names := make([]string, len(ifaces))
		for i, iface := range ifaces {
			names[i] = iface.Name()
		}
		sb.WriteString(" implements " + strings.Join(names, ", "))
	}
	return sb.String()
}

func field(f *ir.Field) string {
	var sb strings.Builder
	if s := f.Modifiers().String(); s != "" {
		sb.WriteString(s + " ")
	}
	sb.WriteString(f.Stored().String() + " " + f.Name())
	return sb.String()
}

// namer numbers unnamed values in order of first use.
type namer struct {
	ids map[ir.Value]int
}

func (n *namer) name(v ir.Value) string {
	if v.Name() != "" {
		return "%" + v.Name()
	}
	id, ok := n.ids[v]
	if !ok {
		id = len(n.ids)
		n.ids[v] = id
	}
	return "%" + strconv.Itoa(id)
}

func writeMethod(sb *strings.Builder, m *ir.Method, pad string) {
	n := &namer{ids: map[ir.Value]int{}}
	sb.WriteString(pad)
	if s := m.Modifiers().String(); s != "" {
		sb.WriteString(s + " ")
	}
	sb.WriteString(m.ReturnType().String() + " " + m.Name() + "(")
	for i, a := range m.Arguments() {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.Type().String() + " " + n.name(a))
	}
	sb.WriteString(")")
	if !m.IsResolved() || m.Blocks().Empty() {
		sb.WriteString("\n")
		return
	}
	sb.WriteString(" {\n")
	for v := range m.LocalVariables().All() {
		fmt.Fprintf(sb, "%s%slocal %s %s\n", pad, indent, v.Stored(), n.name(v))
	}
	// Blocks are named before any instruction so forward branches agree
	// with the labels.
	for b := range m.Blocks().All() {
		n.name(b)
	}
	for b := range m.Blocks().All() {
		fmt.Fprintf(sb, "%s%s:\n", pad, n.name(b))
		for inst := range b.Instructions().All() {
			sb.WriteString(pad + indent + ir.FormatInstruction(inst, n.name) + "\n")
		}
	}
	sb.WriteString(pad + "}\n")
}
