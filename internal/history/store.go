// Package history abstracts the persistent visit-history storage used
// by preview delivery sessions.
package history

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/mattn/go-sqlite3" // enable the "sqlite3" SQL driver
)

// Store is the visit-history backend for one learner's preview
// sessions. It records when each sequence entry was visited so history
// survives a page reload.
type Store struct {
	db *sql.DB
}

var initTable = map[string]string{
	"visit": `CREATE TABLE IF NOT EXISTS visit (
		sequence_id TEXT NOT NULL,
		visited_at  INTEGER NOT NULL
	)`,
	"visit_idx": `CREATE INDEX IF NOT EXISTS visit_seq ON visit (sequence_id, visited_at)`,
}

// DefaultDB returns the default database for storage.
func DefaultDB(dataDir string) (*sql.DB, error) {
	uri := "file:" + url.QueryEscape(dataDir+"/history.db") + "?mode=rwc&cache=shared"
	return sql.Open("sqlite3", uri)
}

// NewStore creates a new Store with the default database under dataDir.
func NewStore(dataDir string) (*Store, error) {
	db, err := DefaultDB(dataDir)
	if err != nil {
		return nil, err
	}
	return NewStoreDB(db)
}

// NewStoreDB creates a new Store with a custom database. The database
// must be a SQLite database.
func NewStoreDB(db *sql.DB) (*Store, error) {
	st := &Store{db}
	for t, q := range initTable {
		if _, err := db.Exec(q); err != nil {
			return nil, fmt.Errorf("failed to initialize table %s: %v", t, err)
		}
	}
	return st, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddVisit records a visit to the given sequence entry.
func (s *Store) AddVisit(sequenceID string, at time.Time) error {
	_, err := s.db.Exec(
		"INSERT INTO visit (sequence_id, visited_at) VALUES (?, ?)",
		sequenceID, at.UnixMilli())
	return err
}

// LastVisit returns the most recent visit to the given sequence entry.
// The second result is false when the entry was never visited.
func (s *Store) LastVisit(sequenceID string) (time.Time, bool, error) {
	row := s.db.QueryRow(
		"SELECT visited_at FROM visit WHERE sequence_id = ? ORDER BY visited_at DESC LIMIT 1",
		sequenceID)
	var ms int64
	switch err := row.Scan(&ms); err {
	case nil:
		return time.UnixMilli(ms), true, nil
	case sql.ErrNoRows:
		return time.Time{}, false, nil
	default:
		return time.Time{}, false, err
	}
}

// Visits returns every recorded visit to the given sequence entry, in
// chronological order.
func (s *Store) Visits(sequenceID string) ([]time.Time, error) {
	rows, err := s.db.Query(
		"SELECT visited_at FROM visit WHERE sequence_id = ? ORDER BY visited_at ASC",
		sequenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visits []time.Time
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, err
		}
		visits = append(visits, time.UnixMilli(ms))
	}
	return visits, rows.Err()
}
