package models

import (
	"encoding/json"
	"time"
)

// OptionalString records whether a JSON key was present at all. A key
// sent as null counts as present with an empty value.
type OptionalString struct {
	Value string
	Set   bool
}

// Set returns a present OptionalString holding v.
func Set(v string) OptionalString {
	return OptionalString{Value: v, Set: true}
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}

func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// EventPatch carries event fields as submitted. Create requires every
// field; update applies only the fields that are set.
type EventPatch struct {
	Title       OptionalString `json:"title,omitzero"`
	Description OptionalString `json:"description,omitzero"`
	Date        OptionalString `json:"date,omitzero"`
	Location    OptionalString `json:"location,omitzero"`
}

// NewEventPatch returns a patch with all four fields set.
func NewEventPatch(title, description string, date time.Time, location string) EventPatch {
	return EventPatch{
		Title:       Set(title),
		Description: Set(description),
		Date:        Set(date.UTC().Format(time.RFC3339Nano)),
		Location:    Set(location),
	}
}

// EventRequest is the body of POST and PUT /api/v1/events.
type EventRequest struct {
	Event *EventPatch `json:"event"`
}

// ParticipantInput carries a registration as submitted.
type ParticipantInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ParticipantRequest is the body of POST /api/v1/events/{event_id}/participants.
type ParticipantRequest struct {
	Participant *ParticipantInput `json:"participant"`
}

// ValidationErrorResponse is the 422 body.
type ValidationErrorResponse struct {
	Errors []string `json:"errors"`
}

// ErrorResponse is the body of every other error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EventChanges is a parsed event write. Nil fields are left unchanged.
type EventChanges struct {
	Title       *string
	Description *string
	Date        *time.Time
	Location    *string
}

// Complete reports whether every field is set, as a create requires.
func (c EventChanges) Complete() bool {
	return c.Title != nil && c.Description != nil && c.Date != nil && c.Location != nil
}

// Apply returns e with the set fields replaced.
func (c EventChanges) Apply(e Event) Event {
	if c.Title != nil {
		e.Title = *c.Title
	}
	if c.Description != nil {
		e.Description = *c.Description
	}
	if c.Date != nil {
		e.Date = *c.Date
	}
	if c.Location != nil {
		e.Location = *c.Location
	}
	return e
}
