// Package community derives views that span events: the community member
// roster and client-side event list helpers.
package community

import (
	"context"
	"sort"
	"strings"
	"time"

	"mingas-api/internal/client"
	"mingas-api/internal/models"
)

// Registration is one participation of a member.
type Registration struct {
	ParticipantID int64     `json:"participant_id"`
	EventID       int64     `json:"event_id"`
	EventTitle    string    `json:"event_title"`
	EventDate     time.Time `json:"event_date"`
	Location      string    `json:"location"`
	RegisteredAt  time.Time `json:"registered_at"`
}

// Member is one unique person across all events, keyed by email.
type Member struct {
	Email         string         `json:"email"`
	Name          string         `json:"name"`
	Registrations []Registration `json:"registrations"`
}

// Source is the read side of the API the roster needs.
type Source interface {
	ListEvents(ctx context.Context, f client.Filters) ([]models.EventSummary, error)
	ListParticipants(ctx context.Context, eventID int64) ([]models.Participant, error)
}

// Members groups participants by case-insensitive email. A member's name
// is taken from their latest registration. Registrations are ordered by
// event date; members by registration count, then email.
func Members(events []models.EventSummary, participants map[int64][]models.Participant) []Member {
	byEmail := make(map[string]*Member)
	latest := make(map[string]time.Time)

	for _, e := range events {
		for _, p := range participants[e.ID] {
			key := strings.ToLower(strings.TrimSpace(p.Email))
			m, ok := byEmail[key]
			if !ok {
				m = &Member{Email: key}
				byEmail[key] = m
			}
			if !ok || p.CreatedAt.After(latest[key]) {
				m.Name = p.Name
				latest[key] = p.CreatedAt
			}
			m.Registrations = append(m.Registrations, Registration{
				ParticipantID: p.ID,
				EventID:       e.ID,
				EventTitle:    e.Title,
				EventDate:     e.Date,
				Location:      e.Location,
				RegisteredAt:  p.CreatedAt,
			})
		}
	}

	members := make([]Member, 0, len(byEmail))
	for _, m := range byEmail {
		sort.SliceStable(m.Registrations, func(i, j int) bool {
			return m.Registrations[i].EventDate.Before(m.Registrations[j].EventDate)
		})
		members = append(members, *m)
	}
	sort.Slice(members, func(i, j int) bool {
		if len(members[i].Registrations) != len(members[j].Registrations) {
			return len(members[i].Registrations) > len(members[j].Registrations)
		}
		return members[i].Email < members[j].Email
	})
	return members
}

// CollectMembers fetches every event and then each event's participants
// before grouping. It issues one request per event.
func CollectMembers(ctx context.Context, src Source) ([]Member, error) {
	events, err := src.ListEvents(ctx, client.Filters{})
	if err != nil {
		return nil, err
	}
	participants := make(map[int64][]models.Participant, len(events))
	for _, e := range events {
		ps, err := src.ListParticipants(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		participants[e.ID] = ps
	}
	return Members(events, participants), nil
}
