package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bcir/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Source   string
	Rule     string
	Limit    int
	Firings  bool
}

// HistoryResult lists recorded runs in seq order.
type HistoryResult struct {
	Runs    []store.Run `json:"runs"`
	firings bool
}

func (r HistoryResult) Text() string {
	if len(r.Runs) == 0 {
		return "no runs recorded\n"
	}
	var b strings.Builder
	for _, run := range r.Runs {
		status := "unchanged"
		if run.Changed {
			status = fmt.Sprintf("%d rewrites", len(run.Firings))
		}
		fmt.Fprintf(&b, "#%d %s %s [%s] %s\n", run.Seq, short(run.ID), run.Source, strings.Join(run.Rules, ","), status)
		if !r.firings {
			continue
		}
		for _, f := range run.Firings {
			fmt.Fprintf(&b, "    %-20s %s %s: %s\n", f.Rule, f.Method, f.Block, f.Inst)
		}
	}
	return b.String()
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded dead code elimination runs",
		Long: `List the runs recorded by "bcir dce --db" in seq order.

Example:
  bcir history --db ./runs.db
  bcir history --db ./runs.db --rule dead-stores --firings
  bcir history --db ./runs.db --limit 5 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite run log (required)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "only runs over this program source")
	cmd.Flags().StringVar(&opts.Rule, "rule", "", "only runs where this rule fired")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "only the most recent runs")
	cmd.Flags().BoolVar(&opts.Firings, "firings", false, "list each rewrite (text format)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if _, err := os.Stat(opts.Database); errors.Is(err, os.ErrNotExist) {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), nil)
	}
	st, err := store.Open(opts.Database, store.WithLogger(slog.Default()))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	runs, err := st.Runs(cmd.Context(), store.RunFilter{
		Source: opts.Source,
		Rule:   opts.Rule,
		Limit:  opts.Limit,
	})
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	formatter.VerboseLog("read %d runs from %s", len(runs), opts.Database)

	return formatter.Success(HistoryResult{Runs: runs, firings: opts.Firings})
}
