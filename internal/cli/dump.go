package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/roach88/bcir/internal/dump"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Method string
}

// DumpResult is the listing of a program or one method.
type DumpResult struct {
	Listing string `json:"listing"`
}

func (r DumpResult) Text() string { return r.Listing }

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump <program>...",
		Short: "Print the textual listing of a program",
		Long: `Load program files and print every mutable class with its fields and
method bodies. Unnamed values are numbered per method.

Example:
  bcir dump ./testdata/counter.yaml
  bcir dump --method 'demo.Counter.bump(I)I' ./testdata/counter.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Method, "method", "", "dump a single method (Owner.name or Owner.name(desc))")

	return cmd
}

func runDump(opts *DumpOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	prog, err := LoadProgram(cmd.Context(), opts.RootOptions, files)
	if err != nil {
		return loadFailure(formatter, err)
	}

	var buf bytes.Buffer
	if opts.Method != "" {
		m, err := FindMethod(prog.Module, opts.Method)
		if err != nil {
			return loadFailure(formatter, err)
		}
		err = dump.Method(&buf, m)
	} else {
		err = dump.Module(&buf, prog.Module)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	return formatter.Success(DumpResult{Listing: buf.String()})
}
