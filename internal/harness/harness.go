package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/bcir/internal/asm"
	"github.com/roach88/bcir/internal/classpath"
	"github.com/roach88/bcir/internal/dce"
	"github.com/roach88/bcir/internal/interp"
	"github.com/roach88/bcir/internal/ir"
	"github.com/roach88/bcir/internal/testutil"
)

// Harness is the test execution engine.
// It numbers trace events with a deterministic clock.
type Harness struct {
	clock  *testutil.DeterministicClock
	logger *slog.Logger
}

// Outcome is what one call produced.
type Outcome struct {
	Result string // displayed return value, when the call returned
	Thrown string // displayed exception, when the call threw
}

// Run executes a test scenario and returns the result.
//
// Each scenario loads its programs into a fresh module for isolation.
//
// Execution flow:
// 1. Load program files into a module backed by the platform classpath
// 2. Run dead code elimination if the scenario has an optimize step
// 3. Execute calls with expect validation
// 4. Evaluate assertions
// 5. Return result with pass/fail, trace, and errors
//
// The error return is reserved for scenarios that cannot run at all, such
// as programs that fail to load. Failed expectations are reported in the
// result.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a context bounding every call.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	h := &Harness{
		clock:  testutil.NewDeterministicClock(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	mod, err := h.load(scenario.Programs)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	if scenario.Optimize != nil {
		if err := h.optimize(mod, scenario.Optimize, result); err != nil {
			return nil, fmt.Errorf("failed to optimize: %w", err)
		}
	}

	outcomes, err := h.executeCalls(ctx, mod, scenario.Calls, result, true)
	if err != nil {
		return nil, fmt.Errorf("failed to execute calls: %w", err)
	}

	// Evaluate assertions against the result
	actx := &AssertionContext{
		Ctx:      ctx,
		Module:   mod,
		Scenario: scenario,
		Outcomes: outcomes,
		harness:  h,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// load builds a module resolving the platform classes and loads every
// program into it.
func (h *Harness) load(programs []string) (*ir.Module, error) {
	mod := ir.NewModule(
		ir.WithLogger(h.logger),
		ir.WithClassSource(classpath.Platform()),
	)
	for _, p := range programs {
		if _, err := asm.Load(mod, p); err != nil {
			return nil, fmt.Errorf("failed to load program %s: %w", p, err)
		}
	}
	return mod, nil
}

// optimize runs the configured rules over mod, tracing every firing.
func (h *Harness) optimize(mod *ir.Module, step *OptimizeStep, result *Result) error {
	opts := []dce.Option{
		dce.WithLogger(h.logger),
		dce.WithTrace(func(f dce.Firing) {
			result.add(TraceEvent{
				Type:   EventFiring,
				Seq:    h.clock.Next(),
				Rule:   f.Rule.String(),
				Method: f.Method,
				Block:  f.Block,
				Inst:   f.Inst,
			})
		}),
	}
	if len(step.Rules) > 0 {
		rules := make([]dce.Rule, 0, len(step.Rules))
		for _, name := range step.Rules {
			r, err := dce.ParseRule(name)
			if err != nil {
				return err
			}
			rules = append(rules, r)
		}
		opts = append(opts, dce.WithRules(rules...))
	}
	if len(step.Pure) > 0 {
		opts = append(opts, dce.WithPureMethods(step.Pure...))
	}
	_, err := dce.New(opts...).Module(mod)
	return err
}

// executeCalls runs each call with one interpreter. When trace is false
// nothing is recorded and expectations are not checked; only outcomes are
// returned.
func (h *Harness) executeCalls(ctx context.Context, mod *ir.Module, calls []CallStep, result *Result, trace bool) ([]Outcome, error) {
	in := interp.New(mod, interp.WithLogger(h.logger))
	outcomes := make([]Outcome, 0, len(calls))

	for i, step := range calls {
		m, err := asm.FindMethod(mod, step.Method)
		if err != nil {
			return nil, fmt.Errorf("calls[%d]: %w", i, err)
		}
		args, err := parseArgs(m, step.Args)
		if err != nil {
			return nil, fmt.Errorf("calls[%d]: %w", i, err)
		}
		if trace {
			result.add(TraceEvent{Type: EventCall, Seq: h.clock.Next(), Method: m.Signature(), Args: step.Args})
		}

		v, err := in.Call(ctx, m, args...)
		var out Outcome
		var thrown *interp.Thrown
		switch {
		case errors.As(err, &thrown):
			out.Thrown = interp.Display(thrown.Value)
		case err != nil:
			if trace {
				result.AddError(fmt.Sprintf("calls[%d] %s: %v", i, m.Signature(), err))
			}
			outcomes = append(outcomes, Outcome{Thrown: err.Error()})
			continue
		case isVoid(m):
			out.Result = "void"
		default:
			out.Result = interp.Display(v)
		}
		outcomes = append(outcomes, out)
		if !trace {
			continue
		}

		if out.Thrown != "" {
			result.add(TraceEvent{Type: EventThrow, Seq: h.clock.Next(), Method: m.Signature(), Result: out.Thrown})
		} else {
			result.add(TraceEvent{Type: EventReturn, Seq: h.clock.Next(), Method: m.Signature(), Result: out.Result})
		}
		if msg := checkExpect(step.Expect, out, err); msg != "" {
			result.AddError(fmt.Sprintf("calls[%d] %s: %s", i, m.Signature(), msg))
		}
	}
	return outcomes, nil
}

func parseArgs(m *ir.Method, raw []string) ([]any, error) {
	if m.HasReceiver() {
		return nil, fmt.Errorf("%s is not static", m.Signature())
	}
	params := m.MethodType().Params()
	if len(raw) != len(params) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", m.Signature(), len(params), len(raw))
	}
	args := make([]any, len(params))
	for i, p := range params {
		v, err := interp.ParseArg(p, raw[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = v
	}
	return args, nil
}

func isVoid(m *ir.Method) bool {
	_, ok := m.MethodType().Return().(*ir.VoidType)
	return ok
}

// checkExpect returns a failure message, or "" when out matches e.
func checkExpect(e *ExpectClause, out Outcome, err error) string {
	switch {
	case e == nil:
		if out.Thrown != "" {
			return "unexpected exception " + out.Thrown
		}
	case e.Throws != "":
		if out.Thrown == "" {
			return fmt.Sprintf("expected %s, returned %s", e.Throws, out.Result)
		}
		if !interp.IsThrown(err, e.Throws) {
			return fmt.Sprintf("expected %s, threw %s", e.Throws, out.Thrown)
		}
	default:
		if out.Thrown != "" {
			return fmt.Sprintf("expected %s, threw %s", e.Result, out.Thrown)
		}
		if out.Result != e.Result {
			return fmt.Sprintf("expected %s, got %s", e.Result, out.Result)
		}
	}
	return ""
}
