package models

import "time"

// EventStatus classifies an event relative to a point in time.
type EventStatus string

const (
	StatusUpcoming EventStatus = "upcoming"
	StatusOngoing  EventStatus = "ongoing"
	StatusPast     EventStatus = "past"
)

// EventDuration is the assumed length of an event when deciding whether
// it is still ongoing.
const EventDuration = 2 * time.Hour

// StatusAt reports whether the event starting at date is upcoming,
// ongoing or past at now.
func StatusAt(date, now time.Time) EventStatus {
	switch {
	case date.After(now):
		return StatusUpcoming
	case now.Before(date.Add(EventDuration)):
		return StatusOngoing
	default:
		return StatusPast
	}
}

// IsUpcoming reports whether the event is at or after now, the same
// rule the upcoming listing filter applies.
func (e Event) IsUpcoming(now time.Time) bool {
	return !e.Date.Before(now)
}
