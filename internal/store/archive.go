// Package store mirrors committed conversation turns into SQLite so
// history survives across sessions and can be queried outside the engine.
// The archive sits strictly behind the append-only log: it is written
// after each commit and never consulted by the engine itself.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"hivemind/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_history (
	session_id  TEXT NOT NULL,
	turn_number INTEGER NOT NULL,
	speaker     TEXT NOT NULL,
	content     TEXT NOT NULL,
	created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (session_id, turn_number)
);
CREATE INDEX IF NOT EXISTS idx_session_history_session
	ON session_history(session_id);
`

// ArchivedTurn is one mirrored turn.
type ArchivedTurn struct {
	TurnNumber int
	Speaker    string
	Content    string
}

// Archive is a SQLite-backed turn mirror. Safe for concurrent use.
type Archive struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// Open initializes the archive database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}

	logging.Store("Session archive ready at %s", path)
	return &Archive{db: db, path: path}, nil
}

// RecordTurn mirrors one committed turn. Uses INSERT OR IGNORE so
// re-archiving a restored session is idempotent.
func (a *Archive) RecordTurn(sessionID string, turnNumber int, speaker, content string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.db.Exec(
		`INSERT OR IGNORE INTO session_history (session_id, turn_number, speaker, content)
		 VALUES (?, ?, ?, ?)`,
		sessionID, turnNumber, speaker, content,
	)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to record turn %d for session %s: %v", turnNumber, sessionID, err)
		return fmt.Errorf("failed to record turn: %w", err)
	}

	logging.StoreDebug("Recorded turn: session=%s turn=%d speaker=%s", sessionID, turnNumber, speaker)
	return nil
}

// SessionTurns returns the mirrored turns of one session in order.
func (a *Archive) SessionTurns(sessionID string) ([]ArchivedTurn, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.Query(
		`SELECT turn_number, speaker, content FROM session_history
		 WHERE session_id = ? ORDER BY turn_number`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query session turns: %w", err)
	}
	defer rows.Close()

	var turns []ArchivedTurn
	for rows.Next() {
		var t ArchivedTurn
		if err := rows.Scan(&t.TurnNumber, &t.Speaker, &t.Content); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Sessions returns the distinct session ids present in the archive,
// most recently written first.
func (a *Archive) Sessions() ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.Query(
		`SELECT session_id FROM session_history
		 GROUP BY session_id ORDER BY MAX(created_at) DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}
