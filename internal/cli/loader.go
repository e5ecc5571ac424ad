package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/bcir/internal/asm"
	"github.com/roach88/bcir/internal/classpath"
	"github.com/roach88/bcir/internal/ir"
)

// Program is a module with the klasses loaded from program files.
type Program struct {
	Module  *ir.Module
	Klasses []*ir.Klass
	Files   []string
}

// Source names the program for run records: its files, comma-joined.
func (p *Program) Source() string {
	return strings.Join(p.Files, ",")
}

// LoadError represents an error that occurred while loading a program.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadProgram builds a module resolving the platform classes and every
// classpath directory in order, then loads each program file into it.
func LoadProgram(ctx context.Context, opts *RootOptions, files []string) (*Program, error) {
	modOpts := []ir.ModuleOption{
		ir.WithLogger(slog.Default()),
		ir.WithClassSource(classpath.Platform()),
	}
	for _, dir := range opts.Classpath {
		src, err := classpath.LoadDir(ctx, dir, classpath.WithLogger(slog.Default()))
		if err != nil {
			return nil, &LoadError{Code: ErrCodeClasspath, Message: err.Error(), Err: err}
		}
		slog.Debug("classpath loaded", "dir", dir, "classes", src.Len())
		modOpts = append(modOpts, ir.WithClassSource(src))
	}

	prog := &Program{Module: ir.NewModule(modOpts...), Files: files}
	for _, path := range files {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program not found: %s", path), Err: err}
		}
		ks, err := asm.Load(prog.Module, path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Err: err}
		}
		slog.Debug("program loaded", "path", path, "klasses", len(ks))
		prog.Klasses = append(prog.Klasses, ks...)
	}
	return prog, nil
}

// FindMethod resolves a method reference with asm.FindMethod, mapping
// failures to CLI error codes.
func FindMethod(mod *ir.Module, ref string) (*ir.Method, error) {
	m, err := asm.FindMethod(mod, ref)
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, asm.ErrNotFound):
		return nil, &LoadError{Code: ErrCodeNotFound, Message: err.Error(), Err: err}
	case errors.Is(err, asm.ErrBadReference), errors.Is(err, asm.ErrAmbiguousMethod):
		return nil, &LoadError{Code: ErrCodeBadReference, Message: err.Error(), Err: err}
	}
	return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Err: err}
}

// loadFailure reports a LoadProgram or FindMethod error through f.
func loadFailure(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return f.Fail(ExitCommandError, loadErr.Code, loadErr.Message, nil)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeLoadFailed   = "E004" // Program parse or build failed
	ErrCodeNotFound     = "E005" // Path, class or method not found
	ErrCodeWriteFailed  = "E007" // File write error
	ErrCodeClasspath    = "E008" // Classpath directory failed to load
	ErrCodeBadReference = "E009" // Malformed or ambiguous method reference

	ErrCodeVerify    = "E201" // Verification problems
	ErrCodeOptimize  = "E202" // DCE rewrite failed
	ErrCodeEmit      = "E203" // Emission failed
	ErrCodeThrown    = "E301" // Uncaught exception
	ErrCodeExecution = "E302" // Interpreter error (step limit, bad argument)
	ErrCodeDatabase  = "E401" // Run store error
)

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
