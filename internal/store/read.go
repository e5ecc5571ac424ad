package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// RunFilter narrows Runs. Zero fields match everything.
type RunFilter struct {
	Source string
	Rule   string // runs with at least one firing of this rule
	Limit  int    // most recent runs only, still returned in seq order
}

// Runs returns recorded runs with their firings.
// Results are ordered deterministically: ORDER BY seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) Runs(ctx context.Context, filter RunFilter) ([]Run, error) {
	var where []string
	var args []any
	if filter.Source != "" {
		where = append(where, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Rule != "" {
		where = append(where, "id IN (SELECT run_id FROM firings WHERE rule = ?)")
		args = append(args, filter.Rule)
	}
	query := `SELECT id, seq, source, rules, before_hash, after_hash, changed FROM runs`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if filter.Limit > 0 {
		query = `SELECT * FROM (` + query + ` ORDER BY seq DESC LIMIT ?)`
		args = append(args, filter.Limit)
	}
	query += " ORDER BY seq ASC, id COLLATE BINARY ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	for i := range runs {
		firings, err := s.firings(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Firings = firings
	}
	return runs, nil
}

// Run returns the run with the given ID.
// Returns sql.ErrNoRows if it does not exist.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, seq, source, rules, before_hash, after_hash, changed
		FROM runs
		WHERE id = ?
	`, id)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, err
	}
	run.Firings, err = s.firings(ctx, id)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

// LastSeq returns the highest recorded seq, 0 for an empty log.
func (s *Store) LastSeq(ctx context.Context) (int64, error) {
	var seq sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(seq) FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("query last seq: %w", err)
	}
	return seq.Int64, nil
}

func (s *Store) firings(ctx context.Context, runID string) ([]Firing, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT rule, method, block, inst
		FROM firings
		WHERE run_id = ?
		ORDER BY idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query firings: %w", err)
	}
	defer rows.Close()

	firings := []Firing{}
	for rows.Next() {
		var f Firing
		if err := rows.Scan(&f.Rule, &f.Method, &f.Block, &f.Inst); err != nil {
			return nil, fmt.Errorf("scan firing: %w", err)
		}
		firings = append(firings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firings: %w", err)
	}
	return firings, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var rules string
	if err := row.Scan(&run.ID, &run.Seq, &run.Source, &rules, &run.Before, &run.After, &run.Changed); err != nil {
		if err == sql.ErrNoRows {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Rules = []string{}
	if rules != "" {
		run.Rules = strings.Split(rules, ",")
	}
	return run, nil
}
