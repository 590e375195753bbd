package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/qopt/internal/engine"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with two pass results.
func createTestRun(id string, seq int64, inputFP string) Run {
	return NewRun("scenario.yaml", engine.Report{
		RunID:             id,
		Seq:               seq,
		Pipeline:          []string{"zz_interaction", "optimize_1q"},
		InputFingerprint:  inputFP,
		OutputFingerprint: "out-" + id,
		OpsBefore:         8,
		OpsAfter:          4,
		Iterations:        1,
		Converged:         false,
		Passes: []engine.PassReport{
			{Iteration: 1, Pass: "zz_interaction", OpsBefore: 8, OpsAfter: 4, Rewrites: 2, Duration: 1500 * time.Nanosecond},
			{Iteration: 1, Pass: "optimize_1q", OpsBefore: 4, OpsAfter: 4, Rewrites: 0, Duration: 700 * time.Nanosecond},
		},
	})
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		t.Fatalf("table info %s: %v", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("index list %s: %v", table, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan index: %v", err)
		}
		names = append(names, name)
	}
	return names
}

func contains(items []string, want string) bool {
	for _, item := range items {
		if item == want {
			return true
		}
	}
	return false
}
