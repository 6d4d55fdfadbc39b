// Package store persists pending scrobbles and reads the linked-account
// session map.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "discrobble"
	dbFileName = "discrobble.db"
)

// Pending is a scrobble that could not be submitted, kept for an external
// backfill process. Records are append-only.
type Pending struct {
	ID        int64
	UserID    string
	Query     string
	CreatedAt time.Time
}

// Store is the on-disk record store.
type Store struct {
	db *sql.DB
}

// Open opens the store in the XDG data directory.
func Open() (*Store, error) {
	return OpenPath(filepath.Join(xdg.DataHome, appName, dbFileName))
}

// OpenPath opens the store at an explicit path.
func OpenPath(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pending_scrobbles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			query TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_pending_user ON pending_scrobbles(user_id);
	`)
	return err
}

// AddPending appends a pending scrobble for the given user.
func (s *Store) AddPending(userID, query string) error {
	_, err := s.db.Exec(`
		INSERT INTO pending_scrobbles (user_id, query, created_at)
		VALUES (?, ?, ?)
	`, userID, query, time.Now().Unix())
	return err
}

// PendingForUser returns the user's pending scrobbles in insertion order.
func (s *Store) PendingForUser(userID string) ([]Pending, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, query, created_at
		FROM pending_scrobbles
		WHERE user_id = ?
		ORDER BY id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Pending
	for rows.Next() {
		var p Pending
		var createdAt int64
		if err := rows.Scan(&p.ID, &p.UserID, &p.Query, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
