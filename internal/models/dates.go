package models

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var ErrEmptyDate = errors.New("empty date")

const dateOnlyLayout = "2006-01-02"

// ParseDate parses a user supplied timestamp. Values without a zone are
// read as UTC. The result is always in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmptyDate
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// ParseRangeBound parses a from_date or to_date query value. A date-only
// upper bound covers the whole day.
func ParseRangeBound(s string, upper bool) (time.Time, error) {
	t, err := ParseDate(s)
	if err != nil {
		return time.Time{}, err
	}
	if upper {
		if _, err := time.Parse(dateOnlyLayout, strings.TrimSpace(s)); err == nil {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
	}
	return t, nil
}
