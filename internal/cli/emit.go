package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bcir/internal/emit"
	"github.com/roach88/bcir/internal/ir"
)

// EmitOptions holds flags for the emit command.
type EmitOptions struct {
	*RootOptions
	Klass  string
	Output string
}

// KlassPrint pairs a klass with its fingerprint.
type KlassPrint struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
}

// EmitResult holds emission results. Document is the canonical JSON
// emitted, omitted when written to a file.
type EmitResult struct {
	Fingerprint string          `json:"fingerprint"`
	Klasses     []KlassPrint    `json:"klasses"`
	Output      string          `json:"output,omitempty"`
	Document    json.RawMessage `json:"document,omitempty"`
}

func (r EmitResult) Text() string {
	if r.Output == "" {
		return string(r.Document) + "\n"
	}
	var b strings.Builder
	for _, k := range r.Klasses {
		fmt.Fprintf(&b, "%s %s\n", short(k.Fingerprint), k.Name)
	}
	fmt.Fprintf(&b, "✓ wrote %d klasses to %s\n", len(r.Klasses), r.Output)
	return b.String()
}

// NewEmitCommand creates the emit command.
func NewEmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EmitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "emit <program>...",
		Short: "Emit canonical JSON documents for a program",
		Long: `Load program files and emit every mutable class (or only --klass) as
canonical JSON: sorted keys, NFC strings, no floats. Operands are written as
references local to their method, so equal programs emit equal bytes.

Example:
  bcir emit ./program.yaml
  bcir emit --klass demo.Counter -o counter.json ./program.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmit(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Klass, "klass", "", "emit a single class by name")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file")

	return cmd
}

func runEmit(opts *EmitOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	prog, err := LoadProgram(cmd.Context(), opts.RootOptions, files)
	if err != nil {
		return loadFailure(formatter, err)
	}

	var klasses []*ir.Klass
	if opts.Klass != "" {
		k := prog.Module.Klass(opts.Klass)
		if k == nil || !k.IsMutable() {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("class %s not found in program", opts.Klass), nil)
		}
		klasses = []*ir.Klass{k}
	} else {
		for _, k := range prog.Module.Klasses() {
			if k.IsMutable() {
				klasses = append(klasses, k)
			}
		}
	}

	result := EmitResult{Klasses: []KlassPrint{}, Output: opts.Output}
	docs := []emit.Document{}
	for _, k := range klasses {
		doc, err := emit.KlassDocument(k)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeEmit, err.Error(), nil)
		}
		fp, err := emit.Fingerprint(k)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeEmit, err.Error(), nil)
		}
		docs = append(docs, doc)
		result.Klasses = append(result.Klasses, KlassPrint{Name: k.Name(), Fingerprint: fp})
	}
	result.Fingerprint, err = emit.ModuleFingerprint(prog.Module)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeEmit, err.Error(), nil)
	}

	canonical, err := emit.MarshalCanonical(emit.Document{
		"format":      emit.DomainModule,
		"fingerprint": result.Fingerprint,
		"klasses":     docs,
	})
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeEmit, err.Error(), nil)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, canonical, 0644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("failed to write output: %v", err), nil)
		}
		formatter.VerboseLog("wrote %d bytes to %s", len(canonical), opts.Output)
	} else {
		result.Document = canonical
	}
	return formatter.Success(result)
}
