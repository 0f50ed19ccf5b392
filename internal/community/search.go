package community

import (
	"sort"
	"strings"

	"mingas-api/internal/models"
)

// FilterByText keeps events whose title, description or location
// contains text, ignoring case. Blank text keeps everything.
func FilterByText(events []models.EventSummary, text string) []models.EventSummary {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return events
	}
	var out []models.EventSummary
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Title), text) ||
			strings.Contains(strings.ToLower(e.Description), text) ||
			strings.Contains(strings.ToLower(e.Location), text) {
			out = append(out, e)
		}
	}
	return out
}

// SortByDate returns a copy of events ordered by date.
func SortByDate(events []models.EventSummary, ascending bool) []models.EventSummary {
	out := append([]models.EventSummary(nil), events...)
	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return out[i].Date.Before(out[j].Date)
		}
		return out[j].Date.Before(out[i].Date)
	})
	return out
}
