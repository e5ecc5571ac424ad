package store

import (
	"context"
	"testing"
)

func TestRecordRun_Basic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun(t, 1, "demo.yaml",
		firing("unused-instructions", "%x = add int %a, 1"),
		firing("dead-casts", "%o = cast %s to java.lang.String"),
	)
	if err := s.RecordRun(ctx, run); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM firings WHERE run_id = ?", run.ID).Scan(&count); err != nil {
		t.Fatalf("count firings: %v", err)
	}
	if count != 2 {
		t.Errorf("firings = %d, expected 2", count)
	}

	var rules string
	var changed bool
	err := s.db.QueryRow("SELECT rules, changed FROM runs WHERE id = ?", run.ID).Scan(&rules, &changed)
	if err != nil {
		t.Fatalf("query run: %v", err)
	}
	if rules != "unused-instructions,dead-casts" {
		t.Errorf("rules = %q", rules)
	}
	if !changed {
		t.Error("changed = false, expected true")
	}
}

func TestRecordRun_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	run := createTestRun(t, 1, "demo.yaml", firing("useless-phis", "%p = phi int [%a: 1]"))
	for i := 0; i < 3; i++ {
		if err := s.RecordRun(ctx, run); err != nil {
			t.Fatalf("RecordRun() iteration %d failed: %v", i, err)
		}
	}

	var runs, firings int
	s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs)
	s.db.QueryRow("SELECT COUNT(*) FROM firings").Scan(&firings)
	if runs != 1 || firings != 1 {
		t.Errorf("runs = %d, firings = %d, expected 1 and 1", runs, firings)
	}
}

func TestRecordRun_SeqConflict(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.RecordRun(ctx, createTestRun(t, 1, "a.yaml")); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	// Different source gives a different ID for the same seq.
	if err := s.RecordRun(ctx, createTestRun(t, 1, "b.yaml")); err == nil {
		t.Error("expected error for duplicate seq")
	}
}

func TestRecordRun_RollsBackOnFailure(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.RecordRun(ctx, createTestRun(t, 1, "a.yaml")); err != nil {
		t.Fatalf("RecordRun() failed: %v", err)
	}
	bad := createTestRun(t, 1, "b.yaml", firing("dead-stores", "store %v, 1"))
	if err := s.RecordRun(ctx, bad); err == nil {
		t.Fatal("expected error for duplicate seq")
	}

	var count int
	s.db.QueryRow("SELECT COUNT(*) FROM firings").Scan(&count)
	if count != 0 {
		t.Errorf("firings = %d after failed run, expected 0", count)
	}
}

func TestRecordRun_RequiresID(t *testing.T) {
	s := createTestStore(t)

	if err := s.RecordRun(context.Background(), Run{Seq: 1}); err == nil {
		t.Error("expected error for run without ID")
	}
}
