package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file missing: %v", err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() #%d: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() after reopening: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"runs", "firings"} {
		var n int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Errorf("table %s unusable after reopening: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	if _, err := Open("/nonexistent/dir/test.db"); err == nil {
		t.Error("Open() in a missing directory succeeded")
	}
}

func TestClose_NilDB(t *testing.T) {
	if err := (&Store{}).Close(); err != nil {
		t.Errorf("Close() on zero Store: %v", err)
	}
}

func TestClose_Twice(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() failed: %v", err)
	}
	_ = s.Close()
}

func TestDB_Usable(t *testing.T) {
	s := createTestStore(t)

	if err := s.DB().Ping(); err != nil {
		t.Errorf("DB().Ping() failed: %v", err)
	}
}

// Pragmas read back in their numeric or lowercase form.
func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	want := map[string]string{
		"journal_mode": "wal",
		"synchronous":  "1",
		"busy_timeout": "5000",
		"foreign_keys": "1",
	}
	for _, p := range pragmas {
		if err := s.verifyPragma(p.name, want[p.name]); err != nil {
			t.Error(err)
		}
	}
	if len(want) != len(pragmas) {
		t.Errorf("%d pragmas applied, %d checked", len(pragmas), len(want))
	}
}

// Schema table tests

func TestSchema_RunsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "runs")
	expected := []string{
		"id", "seq", "source", "rules", "before_hash", "after_hash", "changed",
	}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("runs table missing column %q", col)
		}
	}
}

func TestSchema_FiringsTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "firings")
	expected := []string{"run_id", "idx", "rule", "method", "block", "inst"}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("firings table missing column %q", col)
		}
	}
}

func TestSchema_Indexes(t *testing.T) {
	s := createTestStore(t)

	if !contains(getTableIndexes(t, s.db, "runs"), "idx_runs_source") {
		t.Error("runs table missing index idx_runs_source")
	}
	if !contains(getTableIndexes(t, s.db, "firings"), "idx_firings_rule") {
		t.Error("firings table missing index idx_firings_rule")
	}
}

// Constraint tests

func TestConstraint_RunSeqUnique(t *testing.T) {
	s := createTestStore(t)

	insert := `INSERT INTO runs (id, seq, source, rules, before_hash, after_hash, changed)
		VALUES (?, 1, 'a.yaml', '', 'h', 'h', 0)`
	if _, err := s.db.Exec(insert, "run1"); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := s.db.Exec(insert, "run2"); err == nil {
		t.Error("expected UNIQUE constraint violation on seq")
	}
}

func TestConstraint_ChangedIsBoolean(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO runs (id, seq, source, rules, before_hash, after_hash, changed)
		VALUES ('run1', 1, 'a.yaml', '', 'h', 'h', 2)`)
	if err == nil {
		t.Error("expected CHECK constraint violation on changed")
	}
}

func TestConstraint_ForeignKeyFiringToRun(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`INSERT INTO firings (run_id, idx, rule, method, block, inst)
		VALUES ('missing', 0, 'dead-casts', 'm', '%b', 'i')`)
	if err == nil {
		t.Error("expected foreign key violation for firing without run")
	}
}

// Migration tests

func TestMigration_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("query user_version: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, expected %d", version, currentSchemaVersion)
	}
}

func TestMigration_UpgradeFromV0(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Simulate a v0 database: base schema without the rule index.
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("apply base schema: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 0"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if !contains(getTableIndexes(t, s.db, "firings"), "idx_firings_rule") {
		t.Error("migration did not create idx_firings_rule")
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
