package cli

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bcir/internal/dce"
	"github.com/roach88/bcir/internal/dump"
	"github.com/roach88/bcir/internal/emit"
	"github.com/roach88/bcir/internal/store"
)

// DCEOptions holds flags for the dce command.
type DCEOptions struct {
	*RootOptions
	Rules    []string
	Pure     []string
	Database string
	Output   string
}

// DCEResult describes one elimination pass.
type DCEResult struct {
	Changed bool           `json:"changed"`
	Before  string         `json:"before"`
	After   string         `json:"after"`
	RunID   string         `json:"run_id,omitempty"`
	Seq     int64          `json:"seq,omitempty"`
	Firings []store.Firing `json:"firings"`
	Listing string         `json:"listing,omitempty"`
}

func (r DCEResult) Text() string {
	var b strings.Builder
	for _, f := range r.Firings {
		fmt.Fprintf(&b, "%-20s %s %s: %s\n", f.Rule, f.Method, f.Block, f.Inst)
	}
	if r.Changed {
		fmt.Fprintf(&b, "✓ %d rewrites, %s -> %s\n", len(r.Firings), short(r.Before), short(r.After))
	} else {
		fmt.Fprintf(&b, "✓ no rewrites, %s\n", short(r.Before))
	}
	if r.RunID != "" {
		fmt.Fprintf(&b, "recorded run %d (%s)\n", r.Seq, short(r.RunID))
	}
	if r.Listing != "" {
		b.WriteString("\n")
		b.WriteString(r.Listing)
	}
	return b.String()
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// NewDCECommand creates the dce command.
func NewDCECommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DCEOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dce <program>...",
		Short: "Run dead code elimination over a program",
		Long: `Load program files and apply the dead code elimination rules to every
resolved method until none fires. Prints each rewrite and the module
fingerprint before and after.

With --db, the run is appended to a SQLite run log (see "bcir history").
With --output, the optimized listing is written to a file; otherwise it is
printed after the summary.

Rules: ` + ruleNames() + `

Example:
  bcir dce ./program.yaml
  bcir dce --rules unused-instructions,dead-casts --db ./runs.db ./program.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDCE(opts, args, cmd)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Rules, "rules", nil, "rules to enable (default all)")
	cmd.Flags().StringSliceVar(&opts.Pure, "pure", nil, "method signatures unused-pure-calls may erase (default boxing factories)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run log")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the optimized listing to a file")

	return cmd
}

func ruleNames() string {
	names := make([]string, len(dce.Rules))
	for i, r := range dce.Rules {
		names[i] = r.String()
	}
	return strings.Join(names, ", ")
}

func runDCE(opts *DCEOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	dceOpts := []dce.Option{dce.WithLogger(slog.Default())}
	rules := make([]string, 0, len(dce.Rules))
	if len(opts.Rules) > 0 {
		var enabled []dce.Rule
		for _, name := range opts.Rules {
			r, err := dce.ParseRule(strings.TrimSpace(name))
			if err != nil {
				return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
			}
			enabled = append(enabled, r)
		}
		dceOpts = append(dceOpts, dce.WithRules(enabled...))
		for _, r := range dce.Rules {
			for _, e := range enabled {
				if r == e {
					rules = append(rules, r.String())
					break
				}
			}
		}
	} else {
		for _, r := range dce.Rules {
			rules = append(rules, r.String())
		}
	}
	if len(opts.Pure) > 0 {
		dceOpts = append(dceOpts, dce.WithPureMethods(opts.Pure...))
	}

	firings := []store.Firing{}
	dceOpts = append(dceOpts, dce.WithTrace(func(f dce.Firing) {
		firings = append(firings, store.Firing{
			Rule:   f.Rule.String(),
			Method: f.Method,
			Block:  f.Block,
			Inst:   f.Inst,
		})
	}))

	prog, err := LoadProgram(ctx, opts.RootOptions, files)
	if err != nil {
		return loadFailure(formatter, err)
	}

	before, err := emit.ModuleFingerprint(prog.Module)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeEmit, err.Error(), nil)
	}
	if _, err := dce.New(dceOpts...).Module(prog.Module); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeOptimize, err.Error(), firings)
	}
	after, err := emit.ModuleFingerprint(prog.Module)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeEmit, err.Error(), nil)
	}

	result := DCEResult{Changed: before != after, Before: before, After: after, Firings: firings}

	if opts.Database != "" {
		run, err := recordRun(cmd, opts.Database, prog.Source(), rules, before, after, firings)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		result.RunID, result.Seq = run.ID, run.Seq
	}

	var listing bytes.Buffer
	if err := dump.Module(&listing, prog.Module); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, listing.Bytes(), 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
		}
		formatter.VerboseLog("wrote %s", opts.Output)
	} else {
		result.Listing = listing.String()
	}

	return formatter.Success(result)
}

// recordRun appends a run to the log at path with the next seq.
func recordRun(cmd *cobra.Command, path, source string, rules []string, before, after string, firings []store.Firing) (store.Run, error) {
	ctx := cmd.Context()
	st, err := store.Open(path, store.WithLogger(slog.Default()))
	if err != nil {
		return store.Run{}, err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	last, err := st.LastSeq(ctx)
	if err != nil {
		return store.Run{}, err
	}
	run, err := store.NewRun(last+1, source, rules, before, after, firings)
	if err != nil {
		return store.Run{}, err
	}
	if err := st.RecordRun(ctx, run); err != nil {
		return store.Run{}, err
	}
	slog.Info("run recorded", "id", run.ID, "seq", run.Seq, "firings", len(firings))
	return run, nil
}
