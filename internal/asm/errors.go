package asm

import (
	"fmt"
	"strings"
)

// Error reports where in a program building failed.
//
// Line is the 1-based line of the offending instruction, or 0 when the
// failure is not tied to one.
type Error struct {
	Path    string
	Line    int
	Klass   string
	Method  string
	Block   string
	Inst    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("asm: ")
	if e.Path != "" {
		sb.WriteString(e.Path)
		if e.Line > 0 {
			fmt.Fprintf(&sb, ":%d", e.Line)
		}
		sb.WriteString(": ")
	} else if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	where := e.Klass
	if e.Method != "" {
		where += "." + e.Method
	}
	if where != "" {
		sb.WriteString(where)
		if e.Block != "" {
			sb.WriteString(" %" + e.Block)
		}
		sb.WriteString(": ")
	}
	if e.Inst != "" {
		fmt.Fprintf(&sb, "%q: ", e.Inst)
	}
	sb.WriteString(e.Message)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying core error, if any.
func (e *Error) Unwrap() error { return e.Err }
