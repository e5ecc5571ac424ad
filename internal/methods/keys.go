package methods

import "github.com/google/uuid"

// KeyGenerator produces the unique part of trampoline keys.
// Implemented by UUIDKeyGenerator (production) and the fixed and sequence
// generators in testutil.
type KeyGenerator interface {
	Generate() string
}

// UUIDKeyGenerator generates time-ordered UUIDv7 keys.
//
// Safe for concurrent use.
type UUIDKeyGenerator struct{}

// Generate returns a new UUIDv7 string. It panics only if the system
// random source fails.
func (UUIDKeyGenerator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
