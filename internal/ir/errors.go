package ir

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes IR errors.
type ErrorKind string

const (
	// KindTypeContract indicates an operand or type violated an instruction's
	// typing rules.
	KindTypeContract ErrorKind = "TYPE_CONTRACT"

	// KindStructural indicates a violation of the ownership or mutability
	// rules: double parenting, removal from the wrong parent, mutation of an
	// immutable entity, an unmet precondition.
	KindStructural ErrorKind = "STRUCTURAL"

	// KindUnsupported indicates an operation the target does not implement,
	// such as replacing uses of a constant.
	KindUnsupported ErrorKind = "UNSUPPORTED"
)

// Sentinels for errors.Is matching against an *Error of the same kind.
var (
	ErrTypeContract = &Error{Kind: KindTypeContract}
	ErrStructural   = &Error{Kind: KindStructural}
	ErrUnsupported  = &Error{Kind: KindUnsupported}
)

// Error is returned by every failing IR operation.
//
// Errors are never recovered from inside the package. A caller that
// receives one should abort the surrounding pass and report it.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Op names the failing operation, e.g. "NewBinary" or "List.Append".
	Op string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

func typeErrorf(op, format string, args ...any) *Error {
	return &Error{Kind: KindTypeContract, Op: op, Message: fmt.Sprintf(format, args...)}
}

func structuralErrorf(op, format string, args ...any) *Error {
	return &Error{Kind: KindStructural, Op: op, Message: fmt.Sprintf(format, args...)}
}

func unsupportedErrorf(op, format string, args ...any) *Error {
	return &Error{Kind: KindUnsupported, Op: op, Message: fmt.Sprintf(format, args...)}
}

// IsTypeContract returns true if err is a type contract violation.
// Uses errors.As to handle wrapped errors.
func IsTypeContract(err error) bool {
	return hasKind(err, KindTypeContract)
}

// IsStructural returns true if err is a structural violation.
func IsStructural(err error) bool {
	return hasKind(err, KindStructural)
}

// IsUnsupported returns true if err reports an unsupported operation.
func IsUnsupported(err error) bool {
	return hasKind(err, KindUnsupported)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// Must panics if err is non-nil and returns v otherwise.
// Use only in tests or when the inputs are known to be well-typed.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
