// Package docstore provides keyed access to per-user JSON documents.
// It is the daemon's view of the persistent document service: get a
// document by key, create one idempotently, or rewrite a single named
// field. Document structure is the caller's business; this package
// only guarantees that a field update touches nothing else.
package docstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by Get when no document exists for a key.
var ErrNotFound = errors.New("document not found")

// Store is a keyed JSON document store backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewStore opens (or creates) a document store at the given database
// path. The schema is created automatically on first use.
func NewStore(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		key         TEXT PRIMARY KEY,
		doc         TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		last_active TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Get returns the raw document stored for key, or ErrNotFound.
func (s *Store) Get(key string) ([]byte, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc FROM documents WHERE key = ?`, key).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("get %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(doc), nil
}

// Create stores doc under key if no document exists yet, and returns
// the document now stored there. A second create for the same key is a
// no-op that returns the existing document unchanged.
func (s *Store) Create(key string, doc []byte) ([]byte, bool, error) {
	if !json.Valid(doc) {
		return nil, false, fmt.Errorf("create %s: document is not valid JSON", key)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO documents (key, doc, created_at, last_active) VALUES (?, ?, ?, ?)`,
		key, string(doc), now, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("create %s: %w", key, err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("create %s: %w", key, err)
	}
	if inserted == 0 {
		existing, err := s.Get(key)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}

	s.logger.Info("document created", "key", key)
	return doc, true, nil
}

// SetField rewrites one top-level field of the document stored under
// key, leaving every other field untouched, and refreshes last_active.
// The value is marshaled to JSON.
func (s *Store) SetField(key, field string, value any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("set %s.%s: decode document: %w", key, field, err)
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("set %s.%s: encode value: %w", key, field, err)
	}
	doc[field] = encoded

	updated, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("set %s.%s: encode document: %w", key, field, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`UPDATE documents SET doc = ?, last_active = ? WHERE key = ?`,
		string(updated), now, key,
	)
	if err != nil {
		return fmt.Errorf("set %s.%s: %w", key, field, err)
	}
	return nil
}
