package classpath

import (
	"fmt"

	"cuelang.org/go/cue/token"
)

// Error codes carried by LoadError.
const (
	ErrCodeGeneric           = "E001" // Generic/unknown error
	ErrCodeReadFailed        = "E002" // File could not be read
	ErrCodeSyntax            = "E003" // YAML or CUE syntax or decode error
	ErrCodeFormatMissing     = "E004" // No format version declared
	ErrCodeFormatUnsupported = "E005" // Format version outside SupportedFormat
	ErrCodeClassName         = "E006" // Missing or malformed class name
	ErrCodeModifier          = "E007" // Unknown or inapplicable modifier
	ErrCodeDuplicate         = "E008" // Class or member described twice
	ErrCodeNotFound          = "E009" // Path missing or holds no documents
	ErrCodeCycle             = "E010" // Class inherits from itself
)

// LoadError reports a problem with a descriptor document.
type LoadError struct {
	Code    string
	Message string
	Path    string    // File path if known
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func loadErrorf(code, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// withPath fills in the path of a LoadError that has none.
func withPath(err error, path string) error {
	if le, ok := err.(*LoadError); ok && le.Path == "" {
		le.Path = path
	}
	return err
}
