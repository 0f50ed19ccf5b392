package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mingas-api/internal/models"
)

// SeedEvent is an event to load together with its registrations.
type SeedEvent struct {
	Title        string
	Description  string
	Date         time.Time
	Location     string
	Participants []models.ParticipantInput
}

// ReloadStats counts what Reload wrote.
type ReloadStats struct {
	Events       int
	Participants int
}

// Reload wipes both tables and inserts events in a single transaction.
// Registrations within the batch get strictly increasing created_at
// values so their listing order follows the input.
func (db *DB) Reload(ctx context.Context, events []SeedEvent) (ReloadStats, error) {
	var stats ReloadStats

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := truncate(ctx, tx); err != nil {
		return stats, err
	}

	now := db.timestamp()
	tick := 0
	for _, se := range events {
		e, err := insertEvent(ctx, tx, models.Event{
			Title:       se.Title,
			Description: se.Description,
			Date:        se.Date.UTC(),
			Location:    se.Location,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return ReloadStats{}, err
		}
		stats.Events++

		for _, p := range se.Participants {
			at := formatTime(now.Add(time.Duration(tick) * time.Microsecond))
			tick++
			_, err := tx.ExecContext(ctx, `
				INSERT INTO participants (name, email, event_id, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?)
			`, p.Name, strings.TrimSpace(p.Email), e.ID, at, at)
			if err != nil {
				if isUniqueViolation(err) {
					return ReloadStats{}, fmt.Errorf("seed %q: %w", p.Email, ErrEmailTaken)
				}
				return ReloadStats{}, fmt.Errorf("failed to insert participant: %w", err)
			}
			stats.Participants++
		}
	}

	if err := tx.Commit(); err != nil {
		return ReloadStats{}, fmt.Errorf("failed to commit tx: %w", err)
	}
	return stats, nil
}
