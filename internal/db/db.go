package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrEventNotFound       = errors.New("event not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrEmailTaken          = errors.New("email already registered for this event")
)

// timeLayout is fixed width so that text order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DB represents our database layer
type DB struct {
	*sql.DB
	now func() time.Time
}

// foreignKeysPragma is applied by the driver to every new connection.
const foreignKeysPragma = "_pragma=foreign_keys(1)"

// withPragmas adds the connection pragmas to dsn unless already there.
func withPragmas(dsn string) string {
	if strings.Contains(dsn, foreignKeysPragma) {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + foreignKeysPragma
}

// NewDB initializes and connects to the SQLite database
func NewDB(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, now: time.Now}, nil
}

// SetClock replaces the clock used for created_at and updated_at.
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}

// InitSchema sets up the required tables
func (db *DB) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		date TEXT NOT NULL,
		location TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS index_events_on_date ON events(date);

	CREATE TABLE IF NOT EXISTS participants (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		event_id INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE,
		UNIQUE(event_id, email COLLATE NOCASE)
	);

	CREATE INDEX IF NOT EXISTS index_participants_on_event_id_and_created_at
		ON participants(event_id, created_at);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Truncate removes every participant and event.
func (db *DB) Truncate(ctx context.Context) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := truncate(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

func truncate(ctx context.Context, tx *sql.Tx) error {
	for _, q := range []string{
		`DELETE FROM participants`,
		`DELETE FROM events`,
		`DELETE FROM sqlite_sequence WHERE name IN ('events', 'participants')`,
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to truncate: %w", err)
		}
	}
	return nil
}

func (db *DB) timestamp() time.Time {
	return db.now().UTC()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if errors.As(err, &serr) {
		return serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

type scanner interface {
	Scan(dest ...any) error
}
