// Package client is the single outbound gateway to the mingas API. Every
// failure it returns is an *APIError.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mingas-api/internal/models"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// Client talks JSON to a fixed base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New returns a Client for baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends in as JSON and decodes a 2xx body into out. A nil out
// discards the body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fromError(fmt.Errorf("encode request: %w", err))
		}
		body = bytes.NewReader(data)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return &APIError{Message: err.Error(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fromError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fromError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fromResponse(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{
			Message: fmt.Sprintf("decode response: %v", err),
			Status:  resp.StatusCode,
			Data:    json.RawMessage(data),
			Err:     err,
		}
	}
	return nil
}

// Filters mirrors the listing query parameters.
type Filters struct {
	Upcoming bool
	FromDate string
	ToDate   string
}

func (f Filters) values() url.Values {
	v := url.Values{}
	if f.Upcoming {
		v.Set("upcoming", "true")
	}
	if f.FromDate != "" {
		v.Set("from_date", f.FromDate)
	}
	if f.ToDate != "" {
		v.Set("to_date", f.ToDate)
	}
	return v
}

// ListEvents lists events, ordered by date.
func (c *Client) ListEvents(ctx context.Context, f Filters) ([]models.EventSummary, error) {
	var events []models.EventSummary
	if err := c.do(ctx, http.MethodGet, "/api/v1/events", f.values(), nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// UpcomingEvents lists events at or after the server's current time.
func (c *Client) UpcomingEvents(ctx context.Context) ([]models.EventSummary, error) {
	return c.ListEvents(ctx, Filters{Upcoming: true})
}

// EventsByDateRange lists events between two inclusive bounds.
func (c *Client) EventsByDateRange(ctx context.Context, from, to string) ([]models.EventSummary, error) {
	return c.ListEvents(ctx, Filters{FromDate: from, ToDate: to})
}

// GetEvent fetches an event with its participants.
func (c *Client) GetEvent(ctx context.Context, id int64) (models.EventDetail, error) {
	var e models.EventDetail
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/events/%d", id), nil, nil, &e)
	return e, err
}

// CreateEvent creates an event from a complete patch.
func (c *Client) CreateEvent(ctx context.Context, p models.EventPatch) (models.EventSummary, error) {
	var e models.EventSummary
	err := c.do(ctx, http.MethodPost, "/api/v1/events", nil, models.EventRequest{Event: &p}, &e)
	return e, err
}

// UpdateEvent changes only the fields set in p.
func (c *Client) UpdateEvent(ctx context.Context, id int64, p models.EventPatch) (models.EventSummary, error) {
	var e models.EventSummary
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/v1/events/%d", id), nil, models.EventRequest{Event: &p}, &e)
	return e, err
}

// DeleteEvent deletes an event and its registrations.
func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/events/%d", id), nil, nil, nil)
}

// ListParticipants lists an event's participants in registration order.
func (c *Client) ListParticipants(ctx context.Context, eventID int64) ([]models.Participant, error) {
	var ps []models.Participant
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/events/%d/participants", eventID), nil, nil, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// RegisterParticipant registers a person for an event.
func (c *Client) RegisterParticipant(ctx context.Context, eventID int64, in models.ParticipantInput) (models.Participant, error) {
	var p models.Participant
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/events/%d/participants", eventID), nil,
		models.ParticipantRequest{Participant: &in}, &p)
	return p, err
}

// GetParticipant fetches a participant with its event.
func (c *Client) GetParticipant(ctx context.Context, id int64) (models.ParticipantDetail, error) {
	var p models.ParticipantDetail
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/participants/%d", id), nil, nil, &p)
	return p, err
}

// CancelParticipation deletes a registration.
func (c *Client) CancelParticipation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/participants/%d", id), nil, nil, nil)
}

// IsEmailRegistered reports whether email is already registered for the
// event, compared case-insensitively as the server does.
func (c *Client) IsEmailRegistered(ctx context.Context, eventID int64, email string) (bool, error) {
	ps, err := c.ListParticipants(ctx, eventID)
	if err != nil {
		return false, err
	}
	email = strings.TrimSpace(email)
	for _, p := range ps {
		if strings.EqualFold(p.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// ParticipantStats is the participant total of one event.
type ParticipantStats struct {
	Total        int
	Participants []models.Participant
}

// ParticipantStats fetches an event's participants with their count.
func (c *Client) ParticipantStats(ctx context.Context, eventID int64) (ParticipantStats, error) {
	ps, err := c.ListParticipants(ctx, eventID)
	if err != nil {
		return ParticipantStats{}, err
	}
	return ParticipantStats{Total: len(ps), Participants: ps}, nil
}
