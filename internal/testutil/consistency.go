package testutil

import (
	"strings"
	"testing"

	"github.com/roach88/bcir/internal/ir"
)

// RequireConsistent fails the test if any resolved method of mod has a
// structural or use/def problem.
func RequireConsistent(t testing.TB, mod *ir.Module) {
	t.Helper()
	if ps := ir.VerifyModule(mod); len(ps) > 0 {
		t.Fatalf("module is inconsistent:\n%s", formatProblems(ps))
	}
}

// RequireMethodConsistent is RequireConsistent for a single method.
func RequireMethodConsistent(t testing.TB, m *ir.Method) {
	t.Helper()
	if ps := ir.Verify(m); len(ps) > 0 {
		t.Fatalf("%s is inconsistent:\n%s", m.Signature(), formatProblems(ps))
	}
}

func formatProblems(ps []ir.Problem) string {
	var sb strings.Builder
	for _, p := range ps {
		sb.WriteString("  ")
		sb.WriteString(p.Error())
		sb.WriteByte('\n')
	}
	return sb.String()
}
