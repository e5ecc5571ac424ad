package asm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/bcir/internal/ir"
)

// tokenize splits an instruction at spaces and commas outside double
// quotes. Quoted sections keep their quotes for strconv.Unquote.
func tokenize(line string) ([]string, error) {
	var (
		out    []string
		cur    strings.Builder
		quoted bool
		escape bool
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case escape:
			escape = false
		case quoted && r == '\\':
			escape = true
		case r == '"':
			quoted = !quoted
		case !quoted && (r == ' ' || r == '\t' || r == ','):
			flush()
			continue
		}
		cur.WriteRune(r)
	}
	if quoted {
		return nil, fmt.Errorf("unterminated string")
	}
	flush()
	return out, nil
}

// literal parses a constant token. ok is false when tok is not written as
// a literal at all.
func literal(mod *ir.Module, tok string) (c *ir.Constant, ok bool, err error) {
	cf := mod.Constants()
	if tok == "null" {
		return cf.Null(), true, nil
	}
	kind, text, found := strings.Cut(tok, ":")
	if !found {
		return nil, false, nil
	}
	switch kind {
	case "int":
		v, err := strconv.ParseInt(text, 0, 32)
		return cf.Int(int32(v)), true, err
	case "long":
		v, err := strconv.ParseInt(text, 0, 64)
		return cf.Long(v), true, err
	case "short":
		v, err := strconv.ParseInt(text, 0, 16)
		return cf.Short(int16(v)), true, err
	case "byte":
		v, err := strconv.ParseInt(text, 0, 8)
		return cf.Byte(int8(v)), true, err
	case "char":
		v, err := strconv.ParseUint(text, 0, 16)
		return cf.Char(uint16(v)), true, err
	case "bool":
		v, err := strconv.ParseBool(text)
		return cf.Bool(v), true, err
	case "float":
		v, err := strconv.ParseFloat(text, 32)
		return cf.Float(float32(v)), true, err
	case "double":
		v, err := strconv.ParseFloat(text, 64)
		return cf.Double(v), true, err
	case "str":
		if strings.HasPrefix(text, `"`) {
			s, err := strconv.Unquote(text)
			return cf.String(s), true, err
		}
		return cf.String(text), true, nil
	case "class":
		k, err := mod.LookupKlass(text)
		if err != nil {
			return nil, true, err
		}
		if k == nil {
			return nil, true, fmt.Errorf("unknown class %s", text)
		}
		return cf.Class(k), true, nil
	}
	return nil, false, nil
}

// splitMember splits "Owner.member" or "Owner.name(desc)" at the last dot
// before any descriptor.
func splitMember(ref string) (owner, member, desc string, ok bool) {
	head := ref
	if i := strings.IndexByte(ref, '('); i >= 0 {
		head, desc = ref[:i], ref[i:]
	}
	i := strings.LastIndexByte(head, '.')
	if i <= 0 || i == len(head)-1 {
		return "", "", "", false
	}
	return head[:i], head[i+1:], desc, true
}
