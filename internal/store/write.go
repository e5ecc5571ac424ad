package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/bcir/internal/emit"
)

// Run is one dead code elimination pass over a program.
type Run struct {
	ID      string   `json:"id"`
	Seq     int64    `json:"seq"`
	Source  string   `json:"source"` // path or name of the program
	Rules   []string `json:"rules"`  // rule names in application order
	Before  string   `json:"before"` // module fingerprint before the run
	After   string   `json:"after"`  // module fingerprint after the run
	Changed bool     `json:"changed"`
	Firings []Firing `json:"firings"`
}

// Firing is one rule application recorded during a run.
type Firing struct {
	Rule   string `json:"rule"`
	Method string `json:"method"`
	Block  string `json:"block"`
	Inst   string `json:"inst"`
}

// NewRun builds a run with its content-addressed ID.
func NewRun(seq int64, source string, rules []string, before, after string, firings []Firing) (Run, error) {
	id, err := emit.RunID(source, before, seq)
	if err != nil {
		return Run{}, err
	}
	return Run{
		ID:      id,
		Seq:     seq,
		Source:  source,
		Rules:   rules,
		Before:  before,
		After:   after,
		Changed: before != after,
		Firings: firings,
	}, nil
}

// RecordRun inserts run and its firings in one transaction.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - recording the same run
// twice leaves the first copy. A different run reusing a seq fails.
func (s *Store) RecordRun(ctx context.Context, run Run) error {
	if run.ID == "" {
		return fmt.Errorf("record run: run has no ID")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, source, rules, before_hash, after_hash, changed)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		run.Seq,
		run.Source,
		strings.Join(run.Rules, ","),
		run.Before,
		run.After,
		run.Changed,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("record run: %w", err)
	} else if n == 0 {
		s.logger.Debug("run already recorded", "id", run.ID, "seq", run.Seq)
		return nil
	}

	for i, f := range run.Firings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO firings (run_id, idx, rule, method, block, inst)
			VALUES (?, ?, ?, ?, ?, ?)
		`, run.ID, i, f.Rule, f.Method, f.Block, f.Inst)
		if err != nil {
			return fmt.Errorf("record firing %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}
