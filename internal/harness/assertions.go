package harness

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/bcir/internal/ir"
)

// AssertionContext provides what assertions check besides the trace.
type AssertionContext struct {
	Ctx      context.Context
	Module   *ir.Module // the module after optimization
	Scenario *Scenario
	Outcomes []Outcome // one per call, in order

	harness *Harness
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	// Header with assertion type
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)

	// Expected vs Actual (most important info)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	// Firings for context
	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFirings:\n")
	}
	for i, event := range e.Trace {
		if event.Type == EventFiring {
			fmt.Fprintf(&buf, "  [%d] %s %s %s: %s\n", i+1, event.Rule, event.Method, event.Block, event.Inst)
		}
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a, actx); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion, actx *AssertionContext) error {
	switch a.Type {
	case AssertFiringCount:
		return assertFiringCount(result.Trace, a)
	case AssertFiringOrder:
		return assertFiringOrder(result.Trace, a)
	case AssertVerifies:
		return assertVerifies(actx.Module)
	case AssertPreserves:
		return assertPreserves(actx)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

// assertFiringCount checks a rule fired exactly Count times, optionally
// within one method.
func assertFiringCount(trace []TraceEvent, a Assertion) error {
	n := 0
	for _, e := range trace {
		if e.Type != EventFiring {
			continue
		}
		if (a.Rule == "" || e.Rule == a.Rule) && (a.Method == "" || e.Method == a.Method) {
			n++
		}
	}
	if n == a.Count {
		return nil
	}
	what := a.Rule
	if what == "" {
		what = "any rule"
	}
	if a.Method != "" {
		what += " in " + a.Method
	}
	return &AssertionError{
		Type:     AssertFiringCount,
		Expected: fmt.Sprintf("%s fired %d times", what, a.Count),
		Actual:   fmt.Sprintf("fired %d times", n),
		Trace:    trace,
	}
}

// assertFiringOrder checks rules first fired in the specified order.
// Other firings may come between them.
func assertFiringOrder(trace []TraceEvent, a Assertion) error {
	first := make(map[string]int)
	for i, e := range trace {
		if e.Type != EventFiring {
			continue
		}
		if _, seen := first[e.Rule]; !seen {
			first[e.Rule] = i
		}
	}

	last := -1
	for _, rule := range a.Rules {
		pos, ok := first[rule]
		if !ok {
			return &AssertionError{
				Type:     AssertFiringOrder,
				Expected: fmt.Sprintf("rule %s to fire", rule),
				Actual:   "never fired",
				Trace:    trace,
			}
		}
		if pos < last {
			return &AssertionError{
				Type:     AssertFiringOrder,
				Expected: "first firings in order " + strings.Join(a.Rules, ", "),
				Actual:   fmt.Sprintf("%s fired first at event %d, before an earlier rule", rule, pos+1),
				Trace:    trace,
			}
		}
		last = pos
	}
	return nil
}

// assertVerifies checks the module has no verification problems.
func assertVerifies(mod *ir.Module) error {
	problems := ir.VerifyModule(mod)
	if len(problems) == 0 {
		return nil
	}
	msgs := make([]string, len(problems))
	for i, p := range problems {
		msgs[i] = p.Error()
	}
	return &AssertionError{
		Type:     AssertVerifies,
		Expected: "no verification problems",
		Actual:   strings.Join(msgs, "; "),
	}
}

// assertPreserves reloads the programs without optimization, repeats the
// calls and compares outcomes pairwise.
func assertPreserves(actx *AssertionContext) error {
	h := actx.harness
	mod, err := h.load(actx.Scenario.Programs)
	if err != nil {
		return err
	}
	want, err := h.executeCalls(actx.Ctx, mod, actx.Scenario.Calls, nil, false)
	if err != nil {
		return err
	}
	if len(want) != len(actx.Outcomes) {
		return fmt.Errorf("preserves: %d outcomes without optimization, %d with", len(want), len(actx.Outcomes))
	}
	for i := range want {
		if want[i] != actx.Outcomes[i] {
			return &AssertionError{
				Type:     AssertPreserves,
				Expected: fmt.Sprintf("calls[%d] %s", i, describe(want[i])),
				Actual:   describe(actx.Outcomes[i]),
			}
		}
	}
	return nil
}

func describe(o Outcome) string {
	if o.Thrown != "" {
		return "threw " + o.Thrown
	}
	return "returned " + o.Result
}
