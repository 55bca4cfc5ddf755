// Package history keeps a local log of event responses submitted
// through this server.
//
// It is an optional subsystem: if the database cannot be opened the
// server logs a warning and runs without it — responding to events works
// either way, only the audit trail is lost. Backed by SQLite so the log
// survives restarts, unlike the in-memory caches.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Response is one submitted event response.
type Response struct {
	ID             int64  `json:"id"`
	EventID        string `json:"event_id"`
	MemberID       string `json:"member_id"`
	KidName        string `json:"kid_name"`
	Accepted       bool   `json:"accepted"`
	DeclineMessage string `json:"decline_message,omitempty"`
	CreatedAt      string `json:"created_at"`
}

// Config holds history store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig stores the database under ~/.spond-mcp.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".spond-mcp")}
}

// Store is the SQLite-backed response log.
type Store struct {
	db *sql.DB
}

// New opens (creating if needed) the history database.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS responses (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id        TEXT    NOT NULL,
			member_id       TEXT    NOT NULL,
			kid_name        TEXT    NOT NULL,
			accepted        INTEGER NOT NULL,
			decline_message TEXT    NOT NULL DEFAULT '',
			created_at      TEXT    NOT NULL DEFAULT (datetime('now'))
		);

		CREATE INDEX IF NOT EXISTS idx_responses_event   ON responses(event_id);
		CREATE INDEX IF NOT EXISTS idx_responses_created ON responses(created_at DESC);
	`)
	return err
}

// Record appends one submitted response to the log.
func (s *Store) Record(ctx context.Context, r Response) error {
	accepted := 0
	if r.Accepted {
		accepted = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO responses (event_id, member_id, kid_name, accepted, decline_message)
		VALUES (?, ?, ?, ?, ?)`,
		r.EventID, r.MemberID, r.KidName, accepted, r.DeclineMessage,
	)
	if err != nil {
		return fmt.Errorf("history: record response: %w", err)
	}
	return nil
}

// Recent returns the most recently submitted responses, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Response, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, member_id, kid_name, accepted, decline_message, created_at
		FROM responses
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var out []Response
	for rows.Next() {
		var r Response
		var accepted int
		if err := rows.Scan(&r.ID, &r.EventID, &r.MemberID, &r.KidName, &accepted, &r.DeclineMessage, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan response: %w", err)
		}
		r.Accepted = accepted != 0
		out = append(out, r)
	}
	return out, rows.Err()
}
