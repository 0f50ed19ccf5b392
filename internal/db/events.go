package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"mingas-api/internal/models"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const eventColumns = `e.id, e.title, e.description, e.date, e.location, e.created_at, e.updated_at`

const participantsCount = `(SELECT COUNT(*) FROM participants p WHERE p.event_id = e.id)`

// eventListQuery builds the listing query for the whole filter at once.
// Bounds are inclusive; upcoming keeps events at or after now.
func eventListQuery(f models.EventFilter, now time.Time) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.From != nil {
		conds = append(conds, "e.date >= ?")
		args = append(args, formatTime(*f.From))
	}
	if f.To != nil {
		conds = append(conds, "e.date <= ?")
		args = append(args, formatTime(*f.To))
	}
	if f.Upcoming {
		conds = append(conds, "e.date >= ?")
		args = append(args, formatTime(now))
	}

	var b strings.Builder
	b.WriteString("SELECT " + eventColumns + ", " + participantsCount + " FROM events e")
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY e.date, e.id")
	return b.String(), args
}

// ListEvents lists events matching the filter, ordered by date, each
// with its current participant count.
func (db *DB) ListEvents(ctx context.Context, f models.EventFilter, now time.Time) ([]models.EventSummary, error) {
	query, args := eventListQuery(f, now)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []models.EventSummary{}
	for rows.Next() {
		var count int
		e, err := scanEvent(rows, &count)
		if err != nil {
			return nil, err
		}
		events = append(events, models.NewEventSummary(e, count))
	}
	return events, rows.Err()
}

// GetEvent fetches one event.
func (db *DB) GetEvent(ctx context.Context, id int64) (models.Event, error) {
	return getEvent(ctx, db, id)
}

// GetEventSummary fetches one event with its participant count.
func (db *DB) GetEventSummary(ctx context.Context, id int64) (models.EventSummary, error) {
	return getEventSummary(ctx, db, id)
}

// GetEventDetail fetches one event and its participants.
func (db *DB) GetEventDetail(ctx context.Context, id int64) (models.EventDetail, error) {
	e, err := getEvent(ctx, db, id)
	if err != nil {
		return models.EventDetail{}, err
	}
	participants, err := listParticipants(ctx, db, id)
	if err != nil {
		return models.EventDetail{}, err
	}
	return models.NewEventDetail(e, participants), nil
}

// CreateEvent inserts a new event. Every field must be set.
func (db *DB) CreateEvent(ctx context.Context, c models.EventChanges) (models.Event, error) {
	if !c.Complete() {
		return models.Event{}, errors.New("create event: all fields are required")
	}
	now := db.timestamp()
	return insertEvent(ctx, db, c.Apply(models.Event{CreatedAt: now, UpdatedAt: now}))
}

func insertEvent(ctx context.Context, q querier, e models.Event) (models.Event, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO events (title, description, date, location, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.Title, e.Description, formatTime(e.Date), e.Location, formatTime(e.CreatedAt), formatTime(e.UpdatedAt))
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to insert event: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to get event id: %w", err)
	}
	return e, nil
}

// UpdateEvent applies the set fields of c to an existing event.
func (db *DB) UpdateEvent(ctx context.Context, id int64, c models.EventChanges) (models.EventSummary, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.EventSummary{}, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := getEvent(ctx, tx, id)
	if err != nil {
		return models.EventSummary{}, err
	}
	e := c.Apply(current)
	e.UpdatedAt = db.timestamp()

	_, err = tx.ExecContext(ctx, `
		UPDATE events
		SET title = ?, description = ?, date = ?, location = ?, updated_at = ?
		WHERE id = ?
	`, e.Title, e.Description, formatTime(e.Date), e.Location, formatTime(e.UpdatedAt), id)
	if err != nil {
		return models.EventSummary{}, fmt.Errorf("failed to update event %d: %w", id, err)
	}

	summary, err := getEventSummary(ctx, tx, id)
	if err != nil {
		return models.EventSummary{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.EventSummary{}, fmt.Errorf("failed to commit tx: %w", err)
	}
	return summary, nil
}

// DeleteEvent removes an event and its participants in one transaction.
func (db *DB) DeleteEvent(ctx context.Context, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback() // Safe to call even if committed

	if _, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE event_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete participants of event %d: %w", id, err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrEventNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

func getEvent(ctx context.Context, q querier, id int64) (models.Event, error) {
	row := q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = ?`, id)
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, ErrEventNotFound
	}
	return e, err
}

func getEventSummary(ctx context.Context, q querier, id int64) (models.EventSummary, error) {
	var count int
	row := q.QueryRowContext(ctx, `SELECT `+eventColumns+`, `+participantsCount+` FROM events e WHERE e.id = ?`, id)
	e, err := scanEvent(row, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return models.EventSummary{}, ErrEventNotFound
	}
	if err != nil {
		return models.EventSummary{}, err
	}
	return models.NewEventSummary(e, count), nil
}

func eventExists(ctx context.Context, q querier, id int64) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up event %d: %w", id, err)
	}
	return nil
}

// scanEvent reads eventColumns followed by any extra destinations.
func scanEvent(s scanner, extra ...any) (models.Event, error) {
	var (
		e                      models.Event
		date, created, updated string
	)
	dest := append([]any{&e.ID, &e.Title, &e.Description, &date, &e.Location, &created, &updated}, extra...)
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return e, err
		}
		return e, fmt.Errorf("failed to scan event: %w", err)
	}

	var err error
	if e.Date, err = parseTime(date); err != nil {
		return e, err
	}
	if e.CreatedAt, err = parseTime(created); err != nil {
		return e, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return e, err
	}
	return e, nil
}
