package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Current schema version
const SchemaVersion = "1"

// SQLite is a SQLite-backed journal.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// NewSQLite opens (or creates) a journal at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			digest TEXT NOT NULL,
			status TEXT NOT NULL,
			steps INTEGER NOT NULL,
			output_bytes INTEGER NOT NULL,
			faults BLOB NOT NULL,
			started_at TEXT NOT NULL,
			duration_ns INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLite{db: db}

	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}
	switch version {
	case "":
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// Put appends a record.
func (s *SQLite) Put(r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	faults, err := MarshalFaults(r.Faults)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO runs (id, name, digest, status, steps, output_bytes, faults, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.Name, r.Digest, string(r.Status), r.Steps, r.OutputBytes, faults,
		r.StartedAt.UTC().Format(time.RFC3339Nano), int64(r.Duration))
	return err
}

// Recent returns the newest records first.
func (s *SQLite) Recent(limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.Query(`
		SELECT id, name, digest, status, steps, output_bytes, faults, started_at, duration_ns
		FROM runs ORDER BY rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r         Record
			status    string
			faults    []byte
			startedAt string
			duration  int64
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Digest, &status, &r.Steps, &r.OutputBytes, &faults, &startedAt, &duration); err != nil {
			return nil, err
		}
		r.Status = Status(status)
		r.Duration = time.Duration(duration)
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at: %w", r.ID, err)
		}
		if r.Faults, err = UnmarshalFaults(faults); err != nil {
			return nil, fmt.Errorf("run %s: %w", r.ID, err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
