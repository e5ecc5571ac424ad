package classpath

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel decoding in LoadDir.
const DefaultConcurrency = 8

// Option configures LoadDir.
type Option func(*loader)

type loader struct {
	logger      *slog.Logger
	concurrency int
}

// WithLogger sets the logger LoadDir reports progress to.
func WithLogger(l *slog.Logger) Option {
	return func(ld *loader) {
		ld.logger = l
	}
}

// WithConcurrency sets how many files LoadDir decodes at once.
func WithConcurrency(n int) Option {
	return func(ld *loader) {
		if n > 0 {
			ld.concurrency = n
		}
	}
}

// FindDocuments walks dir and returns every .yaml, .yml and .cue file in
// lexical order.
func FindDocuments(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml", ".cue":
			files = append(files, path)
		}
		return nil
	})
	slices.Sort(files)
	return files, err
}

// LoadFile decodes one document, choosing the syntax by file extension.
func LoadFile(path string) (*Source, error) {
	if filepath.Ext(path) == ".cue" {
		return LoadCUE(path)
	}
	return LoadYAML(path)
}

// LoadDir decodes every document under dir in parallel and merges them in
// path order. A class described by two documents is an error.
func LoadDir(ctx context.Context, dir string, opts ...Option) (*Source, error) {
	ld := &loader{logger: slog.Default(), concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(ld)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("classpath directory not found: %v", err), Path: dir}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "not a directory", Path: dir}
	}
	files, err := FindDocuments(dir)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("error scanning directory: %v", err), Path: dir}
	}
	if len(files) == 0 {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "no descriptor documents found", Path: dir}
	}

	parts := make([]*Source, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ld.concurrency)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := LoadFile(path)
			if err != nil {
				return err
			}
			ld.logger.Debug("loaded descriptor document", "path", path, "classes", src.Len())
			parts[i] = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := newSource()
	for _, p := range parts {
		if err := out.merge(p); err != nil {
			return nil, err
		}
	}
	if err := checkCycles(out, dir); err != nil {
		return nil, err
	}
	ld.logger.Info("loaded classpath", "dir", dir, "files", len(files), "classes", out.Len())
	return out, nil
}
