package models

import "time"

// Event represents a scheduled community sustainability activity.
type Event struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Participant represents a person's registration to one event.
type Participant struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	EventID   int64     `json:"event_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EventSummary is the event shape returned by list, create and update.
type EventSummary struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	Date              time.Time `json:"date"`
	Location          string    `json:"location"`
	ParticipantsCount int       `json:"participants_count"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewEventSummary pairs an event with its participant count.
func NewEventSummary(e Event, participants int) EventSummary {
	return EventSummary{
		ID:                e.ID,
		Title:             e.Title,
		Description:       e.Description,
		Date:              e.Date,
		Location:          e.Location,
		ParticipantsCount: participants,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

// ParticipantBrief is a participant as nested inside an event detail.
type ParticipantBrief struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// EventDetail is the single-event shape, with its participants.
type EventDetail struct {
	EventSummary
	Participants []ParticipantBrief `json:"participants"`
}

// NewEventDetail builds the detail view. The participant count always
// matches the nested list.
func NewEventDetail(e Event, participants []Participant) EventDetail {
	briefs := make([]ParticipantBrief, 0, len(participants))
	for _, p := range participants {
		briefs = append(briefs, ParticipantBrief{
			ID:        p.ID,
			Name:      p.Name,
			Email:     p.Email,
			CreatedAt: p.CreatedAt,
		})
	}
	return EventDetail{
		EventSummary: NewEventSummary(e, len(briefs)),
		Participants: briefs,
	}
}

// EventBrief is an event as nested inside a participant detail.
type EventBrief struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Date     time.Time `json:"date"`
	Location string    `json:"location"`
}

// ParticipantDetail is the single-participant shape, with its event.
type ParticipantDetail struct {
	Participant
	Event EventBrief `json:"event"`
}

// NewParticipantDetail builds the detail view.
func NewParticipantDetail(p Participant, e Event) ParticipantDetail {
	return ParticipantDetail{
		Participant: p,
		Event: EventBrief{
			ID:       e.ID,
			Title:    e.Title,
			Date:     e.Date,
			Location: e.Location,
		},
	}
}

// EventFilter narrows an event listing. Nil bounds are not applied.
type EventFilter struct {
	From     *time.Time
	To       *time.Time
	Upcoming bool
}
