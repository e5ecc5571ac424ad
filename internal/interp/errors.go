package interp

import (
	"errors"
	"fmt"
)

// ErrStepLimit is returned when execution exceeds the configured number of
// instructions.
var ErrStepLimit = errors.New("interp: step limit exceeded")

// ErrDepthLimit is returned when calls nest deeper than MaxDepth.
var ErrDepthLimit = errors.New("interp: call depth exceeded")

// Thrown is an exception that propagated out of the called method.
type Thrown struct {
	Value any
}

func (t *Thrown) Error() string {
	return fmt.Sprintf("uncaught exception: %s", Display(t.Value))
}

// IsThrown reports whether err is an uncaught exception of the named class
// or one of its subclasses.
func IsThrown(err error, class string) bool {
	var t *Thrown
	if !errors.As(err, &t) {
		return false
	}
	obj, ok := t.Value.(*Object)
	if !ok {
		return false
	}
	for k := obj.Klass; k != nil; k = k.Superclass() {
		if k.Name() == class {
			return true
		}
	}
	return false
}
