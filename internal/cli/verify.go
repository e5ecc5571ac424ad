package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bcir/internal/ir"
)

// VerificationResult holds verification results.
type VerificationResult struct {
	Valid    bool         `json:"valid"`
	Methods  int          `json:"methods"`
	Problems []ir.Problem `json:"problems,omitempty"`
}

func (r VerificationResult) Text() string {
	var b strings.Builder
	for _, p := range r.Problems {
		fmt.Fprintln(&b, p.Error())
	}
	if r.Valid {
		fmt.Fprintf(&b, "✓ %d methods verified\n", r.Methods)
	} else {
		fmt.Fprintf(&b, "✗ %d problems in %d methods\n", len(r.Problems), r.Methods)
	}
	return b.String()
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <program>...",
		Short: "Check structural invariants of a program",
		Long: `Load program files and check every resolved method: blocks end in exactly
one terminator, phis lead their block and name real predecessors, and operands
are attached, local to the method, and of the expected types.

Exits 1 when any problem is found.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runVerify(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	prog, err := LoadProgram(cmd.Context(), opts, files)
	if err != nil {
		return loadFailure(formatter, err)
	}

	result := VerificationResult{
		Methods:  countResolved(prog.Module),
		Problems: ir.VerifyModule(prog.Module),
	}
	result.Valid = len(result.Problems) == 0
	formatter.VerboseLog("verified %d methods in %d files", result.Methods, len(files))

	if err := formatter.Success(result); err != nil {
		return err
	}
	if !result.Valid {
		return &ExitError{Code: ExitFailure, Message: "verification failed", Reported: true}
	}
	return nil
}

func countResolved(mod *ir.Module) int {
	n := 0
	for _, k := range mod.Klasses() {
		if !k.IsMutable() {
			continue
		}
		for _, m := range k.Methods().Slice() {
			if m.IsResolved() {
				n++
			}
		}
	}
	return n
}
