package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mingas-api/internal/models"
)

const participantColumns = `p.id, p.name, p.email, p.event_id, p.created_at, p.updated_at`

// ListParticipants lists the participants of an event in registration order.
func (db *DB) ListParticipants(ctx context.Context, eventID int64) ([]models.Participant, error) {
	if err := eventExists(ctx, db, eventID); err != nil {
		return nil, err
	}
	return listParticipants(ctx, db, eventID)
}

// EmailRegistered reports whether email, compared case-insensitively, is
// already registered for the event.
func (db *DB) EmailRegistered(ctx context.Context, eventID int64, email string) (bool, error) {
	return emailRegistered(ctx, db, eventID, email)
}

// CreateParticipant registers a participant for an event. The existence
// check, the uniqueness check and the insert share one transaction.
func (db *DB) CreateParticipant(ctx context.Context, eventID int64, in models.ParticipantInput) (models.Participant, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.Participant{}, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := eventExists(ctx, tx, eventID); err != nil {
		return models.Participant{}, err
	}

	email := strings.TrimSpace(in.Email)
	taken, err := emailRegistered(ctx, tx, eventID, email)
	if err != nil {
		return models.Participant{}, err
	}
	if taken {
		return models.Participant{}, ErrEmailTaken
	}

	now := db.timestamp()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO participants (name, email, event_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, in.Name, email, eventID, formatTime(now), formatTime(now))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Participant{}, ErrEmailTaken
		}
		return models.Participant{}, fmt.Errorf("failed to insert participant: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return models.Participant{}, fmt.Errorf("failed getting participant id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return models.Participant{}, ErrEmailTaken
		}
		return models.Participant{}, fmt.Errorf("failed to commit tx: %w", err)
	}

	return models.Participant{
		ID:        id,
		Name:      in.Name,
		Email:     email,
		EventID:   eventID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetParticipant fetches one participant.
func (db *DB) GetParticipant(ctx context.Context, id int64) (models.Participant, error) {
	row := db.QueryRowContext(ctx, `SELECT `+participantColumns+` FROM participants p WHERE p.id = ?`, id)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Participant{}, ErrParticipantNotFound
	}
	return p, err
}

// GetParticipantDetail fetches one participant and its event.
func (db *DB) GetParticipantDetail(ctx context.Context, id int64) (models.ParticipantDetail, error) {
	p, err := db.GetParticipant(ctx, id)
	if err != nil {
		return models.ParticipantDetail{}, err
	}
	e, err := db.GetEvent(ctx, p.EventID)
	if err != nil {
		return models.ParticipantDetail{}, fmt.Errorf("event of participant %d: %w", id, err)
	}
	return models.NewParticipantDetail(p, e), nil
}

// DeleteParticipant cancels one registration.
func (db *DB) DeleteParticipant(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete participant %d: %w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func listParticipants(ctx context.Context, q querier, eventID int64) ([]models.Participant, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+participantColumns+`
		FROM participants p
		WHERE p.event_id = ?
		ORDER BY p.created_at, p.id
	`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of event %d: %w", eventID, err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func emailRegistered(ctx context.Context, q querier, eventID int64, email string) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM participants
		WHERE event_id = ? AND email = ? COLLATE NOCASE
	`, eventID, strings.TrimSpace(email)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check email registration: %w", err)
	}
	return n > 0, nil
}

func scanParticipant(s scanner) (models.Participant, error) {
	var (
		p                models.Participant
		created, updated string
	)
	if err := s.Scan(&p.ID, &p.Name, &p.Email, &p.EventID, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan participant: %w", err)
	}

	var err error
	if p.CreatedAt, err = parseTime(created); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return p, err
	}
	return p, nil
}
