package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenReadOnly_MissingLedger(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"), ReadOnly())
	require.Error(t, err)
}

func TestOpenReadOnly_ReadsButRejectsWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	w, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteRun(ctx, createTestRun("run-1", 1, "fp-a")))
	require.NoError(t, w.Close())

	r, err := Open(path, ReadOnly())
	require.NoError(t, err)
	defer r.Close()

	runs, err := r.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].RunID)

	assert.Error(t, r.WriteRun(ctx, createTestRun("run-2", 2, "fp-a")))
}

func TestOpenReadOnly_LeavesOldSchemaAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(schemaSQL)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	s, err := Open(path, ReadOnly())
	require.NoError(t, err)
	defer s.Close()

	version, err := s.schemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 0, version)
	assert.NotContains(t, getTableIndexes(t, s.db, "runs"), "idx_runs_input_fingerprint")
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	for _, opts := range [][]Option{nil, {ReadOnly()}} {
		_, err := Open(path, opts...)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSchemaTooNew)
	}
}

func TestMigrations_Ordered(t *testing.T) {
	for i, m := range migrations {
		assert.Equal(t, i+1, m.version, m.name)
	}
	assert.Equal(t, migrations[len(migrations)-1].version, currentSchemaVersion)
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"file:/tmp/runs.db?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
		dsn("/tmp/runs.db", false))
	assert.Equal(t,
		"file:/tmp/runs.db?_busy_timeout=5000&_foreign_keys=on&mode=ro",
		dsn("/tmp/runs.db", true))
	assert.Equal(t,
		"file:/tmp/a%3fb%23c%25.db?_busy_timeout=5000&_foreign_keys=on&mode=ro",
		dsn("/tmp/a?b#c%.db", true))
}
