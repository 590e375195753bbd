package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// migration upgrades a ledger from version-1 to version.
type migration struct {
	version int
	name    string
	stmt    string
}

// migrations run in order on ledgers whose user_version is below theirs.
// schema.sql always creates the version 0 tables.
var migrations = []migration{
	{
		version: 1,
		name:    "index runs by input fingerprint",
		stmt:    `CREATE INDEX IF NOT EXISTS idx_runs_input_fingerprint ON runs(input_fingerprint)`,
	},
}

// currentSchemaVersion is the version of the last migration.
var currentSchemaVersion = migrations[len(migrations)-1].version

// ErrSchemaTooNew is returned when a ledger was written by a newer qopt.
var ErrSchemaTooNew = errors.New("ledger schema is newer than this build")

// Store is the run ledger: one row per pipeline run plus one row per pass
// execution.
type Store struct {
	db       *sql.DB
	readOnly bool
}

// Option configures Open.
type Option func(*config)

type config struct {
	readOnly bool
}

// ReadOnly opens an existing ledger without creating, migrating or
// writing it.
func ReadOnly() Option {
	return func(c *config) { c.readOnly = true }
}

// dsn builds the go-sqlite3 connection string. Writable ledgers run in WAL
// mode with NORMAL sync; every connection enforces foreign keys and waits
// up to 5s on a locked database.
func dsn(path string, readOnly bool) string {
	params := url.Values{}
	params.Set("_busy_timeout", "5000")
	params.Set("_foreign_keys", "on")
	if readOnly {
		params.Set("mode", "ro")
	} else {
		params.Set("_journal_mode", "WAL")
		params.Set("_synchronous", "NORMAL")
	}
	escaped := strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23").Replace(path)
	return "file:" + escaped + "?" + params.Encode()
}

// Open opens the ledger at path, creating and migrating it unless
// ReadOnly is given.
func Open(path string, opts ...Option) (*Store, error) {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	db, err := sql.Open("sqlite3", dsn(path, cfg.readOnly))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: a single writer, and per-connection pragmas stay set.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{db: db, readOnly: cfg.readOnly}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// prepare brings the schema up to date, or only checks it when read-only.
func (s *Store) prepare() error {
	version, err := s.schemaVersion()
	if err != nil {
		return err
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("%w: v%d, supported v%d", ErrSchemaTooNew, version, currentSchemaVersion)
	}
	if s.readOnly {
		return nil
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if err := s.migrate(m); err != nil {
			return err
		}
	}
	return nil
}

// migrate applies one migration and records its version atomically.
func (s *Store) migrate(m migration) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: %w", m.version, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.stmt); err != nil {
		return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
		return fmt.Errorf("migration %d: set user_version: %w", m.version, err)
	}
	return tx.Commit()
}

func (s *Store) schemaVersion() (int, error) {
	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// pragma reads the current value of a pragma.
func (s *Store) pragma(name string) (string, error) {
	var value string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("failed to query %s: %w", name, err)
	}
	return value, nil
}
