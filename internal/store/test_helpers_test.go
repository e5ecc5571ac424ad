package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/bcir/internal/testutil"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, WithLogger(testutil.DiscardLogger()))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with a content-addressed ID.
func createTestRun(t *testing.T, seq int64, source string, firings ...Firing) Run {
	t.Helper()
	after := "after-hash"
	if len(firings) == 0 {
		after = "before-hash"
	}
	run, err := NewRun(seq, source, []string{"unused-instructions", "dead-casts"}, "before-hash", after, firings)
	if err != nil {
		t.Fatalf("NewRun() failed: %v", err)
	}
	return run
}

func firing(rule, inst string) Firing {
	return Firing{Rule: rule, Method: "demo.A.f(I)I", Block: "%entry", Inst: inst}
}
