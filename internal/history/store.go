// Package history records the outcome of every credential test run.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

type Entry struct {
	ID             string        `json:"id"`
	CredentialID   string        `json:"credential_id"`
	CredentialType string        `json:"credential_type"`
	TestedAt       time.Time     `json:"tested_at"`
	Status         string        `json:"status"`
	StatusCode     int           `json:"status_code,omitempty"`
	Message        string        `json:"message,omitempty"`
	Duration       time.Duration `json:"duration"`
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func OpenStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("history: opening DB: %w", err)
	}
	if err := configureSQLiteConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: %w", err)
	}

	store := NewStore(db)
	if err := store.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS credential_tests (
			test_id TEXT PRIMARY KEY,
			credential_id TEXT NOT NULL,
			credential_type TEXT NOT NULL,
			tested_at TEXT NOT NULL,
			status TEXT NOT NULL,
			status_code INTEGER,
			message TEXT,
			duration_ms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_credential_tests_credential ON credential_tests(credential_id, tested_at);`,
		`CREATE INDEX IF NOT EXISTS idx_credential_tests_tested_at ON credential_tests(tested_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("history: init schema: %w", err)
		}
	}
	return nil
}

// Record stores e, assigning an ID and timestamp when they are unset.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.CredentialID == "" {
		return Entry{}, fmt.Errorf("history: record: empty credential id")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.TestedAt.IsZero() {
		e.TestedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credential_tests (
			test_id, credential_id, credential_type, tested_at, status, status_code, message, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CredentialID, e.CredentialType, e.TestedAt.UTC().Format(timeLayout),
		e.Status, e.StatusCode, e.Message, e.Duration.Milliseconds(),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("history: record %s: %w", e.CredentialID, err)
	}
	return e, nil
}

// Recent returns up to limit entries, newest first. An empty credentialID
// matches every credential.
func (s *Store) Recent(ctx context.Context, credentialID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT test_id, credential_id, credential_type, tested_at, status, status_code, message, duration_ms
		FROM credential_tests`
	args := []any{}
	if credentialID != "" {
		query += ` WHERE credential_id = ?`
		args = append(args, credentialID)
	}
	query += ` ORDER BY tested_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			testedAt   string
			statusCode sql.NullInt64
			message    sql.NullString
			durationMS int64
		)
		if err := rows.Scan(&e.ID, &e.CredentialID, &e.CredentialType, &testedAt, &e.Status, &statusCode, &message, &durationMS); err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		e.TestedAt, err = time.Parse(timeLayout, testedAt)
		if err != nil {
			return nil, fmt.Errorf("history: parse tested_at %q: %w", testedAt, err)
		}
		e.StatusCode = int(statusCode.Int64)
		e.Message = message.String
		e.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate: %w", err)
	}
	return out, nil
}
