// Package validation holds the field rules for events and participants.
// Every rule is evaluated; callers get the full list of violations.
package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"mingas-api/internal/models"
)

const (
	MaxTitleLength    = 255
	MaxLocationLength = 255
	MaxNameLength     = 100
)

// MsgEmailTaken is reported when the email already registered for the event.
const MsgEmailTaken = "Email ya está registrado para este evento"

var validate = validator.New()

// Errors is a list of human readable rule violations.
type Errors []string

func (e Errors) Error() string {
	return strings.Join(e, ", ")
}

// Add appends a violation.
func (e *Errors) Add(msg string) {
	*e = append(*e, msg)
}

// Err returns nil when there are no violations.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// Event checks an event write and returns the parsed changes. With
// partial set only the fields present in the patch are checked and
// returned, as for an update.
func Event(p models.EventPatch, partial bool) (models.EventChanges, Errors) {
	var (
		errs Errors
		out  models.EventChanges
	)

	if !partial || p.Title.Set {
		checkText(&errs, "Title", p.Title.Value, MaxTitleLength)
		out.Title = &p.Title.Value
	}
	if !partial || p.Description.Set {
		checkText(&errs, "Description", p.Description.Value, 0)
		out.Description = &p.Description.Value
	}
	if !partial || p.Date.Set {
		if d, err := models.ParseDate(p.Date.Value); err != nil {
			errs.Add(blank("Date"))
		} else {
			out.Date = &d
		}
	}
	if !partial || p.Location.Set {
		checkText(&errs, "Location", p.Location.Value, MaxLocationLength)
		out.Location = &p.Location.Value
	}
	return out, errs
}

// Participant checks a registration. Uniqueness per event needs the
// store and is reported separately with MsgEmailTaken.
func Participant(in models.ParticipantInput) Errors {
	var errs Errors
	checkText(&errs, "Name", in.Name, MaxNameLength)

	email := strings.TrimSpace(in.Email)
	if email == "" {
		errs.Add(blank("Email"))
	}
	if !ValidEmail(email) {
		errs.Add("Email is invalid")
	}
	return errs
}

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	return s != "" && validate.Var(s, "email") == nil
}

func checkText(errs *Errors, field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		errs.Add(blank(field))
	}
	if max > 0 && utf8.RuneCountInString(value) > max {
		errs.Add(fmt.Sprintf("%s is too long (maximum is %d characters)", field, max))
	}
}

func blank(field string) string {
	return field + " can't be blank"
}
