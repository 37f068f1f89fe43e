// Package storage provides durable snapshot stores for the record
// collections: one JSON document per collection, keyed by collection name,
// with a schema-version marker that gates migrations on load.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the snapshot schema version the running code expects.
// Snapshots stored at an older version are migrated on open, before any
// collection is served.
const SchemaVersion = 1

// migrations[i] migrates a database from version i to i+1
var migrations = []func(*sql.DB) error{
	// 0 -> 1: initial layout, nothing to rewrite
	func(*sql.DB) error { return nil },
}

// SQLite persists collection snapshots in a local SQLite database. The
// driver is pure Go, so the store works anywhere without cgo.
type SQLite struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path and runs
// any pending migrations.
func Open(path string) (*SQLite, error) {
	if path == "" {
		return nil, errors.New("storage path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db}
	if err := s.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func sqliteDSN(path string) string {
	v := url.Values{}
	v.Add("_pragma", "busy_timeout(5000)")
	v.Add("_pragma", "journal_mode(WAL)")
	return "file:" + filepath.ToSlash(path) + "?" + v.Encode()
}

// Ping checks that the database is reachable, for health checks
func (s *SQLite) Ping() error {
	return s.db.Ping()
}

// Close closes the underlying database
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS snapshots (
	collection TEXT PRIMARY KEY,
	doc TEXT NOT NULL,
	saved_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS schema_info (
	version INTEGER NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return nil
}

// Version returns the schema version currently recorded in the database,
// or 0 when none is recorded yet.
func (s *SQLite) Version() (int, error) {
	var version int
	err := s.db.QueryRow(`SELECT version FROM schema_info LIMIT 1;`).Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

func (s *SQLite) migrate() error {
	version, err := s.Version()
	if err != nil {
		return err
	}
	if version > SchemaVersion {
		return fmt.Errorf("snapshot schema version %d is newer than supported version %d", version, SchemaVersion)
	}
	for v := version; v < SchemaVersion; v++ {
		if err := migrations[v](s.db); err != nil {
			return fmt.Errorf("migration %d->%d failed: %w", v, v+1, err)
		}
	}
	if _, err := s.db.Exec(`DELETE FROM schema_info;`); err != nil {
		return fmt.Errorf("failed to reset schema version: %w", err)
	}
	if _, err := s.db.Exec(`INSERT INTO schema_info (version) VALUES (?);`, SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// Save writes the JSON document for a collection, replacing any previous
// snapshot
func (s *SQLite) Save(collection string, doc []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO snapshots (collection, doc, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(collection) DO UPDATE SET doc = excluded.doc, saved_at = excluded.saved_at;`,
		collection, string(doc), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Load reads the JSON document for a collection. A collection that has
// never been saved yields nil with no error.
func (s *SQLite) Load(collection string) ([]byte, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc FROM snapshots WHERE collection = ?;`, collection).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return []byte(doc), nil
}
