package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/bcir/internal/interp"
	"github.com/roach88/bcir/internal/ir"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Method   string
	Args     []string
	MaxSteps int
}

// RunResult is the outcome of executing a method.
type RunResult struct {
	Method string `json:"method"`
	Result string `json:"result"`
	Steps  int    `json:"steps"`
}

func (r RunResult) Text() string { return r.Result + "\n" }

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <program>...",
		Short: "Execute a static method of a program",
		Long: `Load program files and interpret a static method with the given
arguments. Arguments are parsed by parameter type: integers accept 0x and 0
prefixes, booleans true/false, chars a single character, references "null"
or a string.

An uncaught exception exits 1.

Example:
  bcir run --method 'demo.Arith.add(II)I' --args 2,3 ./arith.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMethod(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Method, "method", "", "method to run (Owner.name or Owner.name(desc), required)")
	cmd.Flags().StringSliceVar(&opts.Args, "args", nil, "comma-separated arguments")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", interp.DefaultMaxSteps, "instruction budget")
	_ = cmd.MarkFlagRequired("method")

	return cmd
}

func runMethod(opts *RunOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	prog, err := LoadProgram(cmd.Context(), opts.RootOptions, files)
	if err != nil {
		return loadFailure(formatter, err)
	}
	m, err := FindMethod(prog.Module, opts.Method)
	if err != nil {
		return loadFailure(formatter, err)
	}
	if m.HasReceiver() {
		return formatter.Fail(ExitCommandError, ErrCodeBadReference, fmt.Sprintf("%s is not static", m.Signature()), nil)
	}

	params := m.MethodType().Params()
	if len(opts.Args) != len(params) {
		return formatter.Fail(ExitCommandError, ErrCodeExecution,
			fmt.Sprintf("%s takes %d arguments, got %d", m.Signature(), len(params), len(opts.Args)), nil)
	}
	args := make([]any, len(params))
	for i, p := range params {
		v, err := interp.ParseArg(p, opts.Args[i])
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeExecution, fmt.Sprintf("argument %d: %v", i, err), nil)
		}
		args[i] = v
	}

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	in := interp.New(prog.Module,
		interp.WithLogger(slog.Default()),
		interp.WithMaxSteps(opts.MaxSteps),
	)
	slog.Debug("running method", "method", m.Signature(), "args", len(args))
	v, err := in.Call(ctx, m, args...)
	if err != nil {
		var thrown *interp.Thrown
		if errors.As(err, &thrown) {
			return formatter.Fail(ExitFailure, ErrCodeThrown, err.Error(), nil)
		}
		return formatter.Fail(ExitFailure, ErrCodeExecution, err.Error(), nil)
	}

	result := RunResult{Method: m.Signature(), Result: interp.Display(v), Steps: in.Steps()}
	if _, ok := m.MethodType().Return().(*ir.VoidType); ok {
		result.Result = "void"
	}
	return formatter.Success(result)
}
