// Package journal records item additions and removals in SQLite.
//
// The journal is an audit trail only. Which items exist is decided by the
// storage root alone; a journal that disagrees with the directory is stale,
// never authoritative.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/starford/itembox/internal/models"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS events (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	op   TEXT NOT NULL,
	item TEXT NOT NULL,
	at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_item ON events(item);
`

// DefaultHistoryLimit caps History when no positive limit is given.
const DefaultHistoryLimit = 50

// Recorder is what the item service needs from a journal.
type Recorder interface {
	Record(ctx context.Context, op, item string) error
	History(ctx context.Context, limit int) ([]models.Event, error)
}

// DB wraps a sql.DB with journal operations.
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

var _ Recorder = (*DB)(nil)

// Open opens (or creates) the SQLite journal and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("journal: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}
	return &DB{conn: conn, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Record appends one event.
func (db *DB) Record(ctx context.Context, op, item string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO events (op, item, at) VALUES (?, ?, ?)`,
		op, item, db.now().UTC())
	if err != nil {
		return fmt.Errorf("journal: record %s %s: %w", op, item, err)
	}
	return nil
}

// History returns up to limit events, newest first.
func (db *DB) History(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, op, item, at FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("journal: history: %w", err)
	}
	defer rows.Close()

	out := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Op, &e.Item, &e.At); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
