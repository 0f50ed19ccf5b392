package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mingas-api/internal/db"
	"mingas-api/internal/metrics"
	"mingas-api/internal/models"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// setupTestServer wires the router to a store in a temp directory.
func setupTestServer(t *testing.T) (*httptest.Server, *db.DB) {
	t.Helper()
	store, err := db.NewDB("file:" + filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.InitSchema(context.Background()))

	h := &Handlers{DB: store, Metrics: metrics.New(), Now: func() time.Time { return now }}
	srv := httptest.NewServer(NewRouter(h, RouterOptions{MetricsPath: "/metrics"}))
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case string:
		rdr = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func eventBody(title, date string) map[string]any {
	return map[string]any{"event": map[string]any{
		"title": title, "description": "desc", "date": date, "location": "Park",
	}}
}

func createEvent(t *testing.T, srv *httptest.Server, title, date string) models.EventSummary {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/api/v1/events", eventBody(title, date))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[models.EventSummary](t, resp)
}

func register(t *testing.T, srv *httptest.Server, eventID int64, name, email string) *http.Response {
	t.Helper()
	return do(t, http.MethodPost, fmt.Sprintf("%s/api/v1/events/%d/participants", srv.URL, eventID),
		map[string]any{"participant": map[string]any{"name": name, "email": email}})
}

func TestCreateEvent_Scenario(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/events", eventBody("Cleanup", "2025-01-01T09:00:00Z"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body := decode[map[string]any](t, resp)
	assert.Equal(t, "Cleanup", body["title"])
	assert.Equal(t, "desc", body["description"])
	assert.Equal(t, "Park", body["location"])
	assert.Equal(t, "2025-01-01T09:00:00Z", body["date"])
	assert.Equal(t, float64(0), body["participants_count"])
	for _, key := range []string{"id", "created_at", "updated_at"} {
		assert.Contains(t, body, key)
	}
}

func TestCreateEvent_RoundTrip(t *testing.T) {
	srv, _ := setupTestServer(t)
	created := createEvent(t, srv, "Cleanup", "2025-01-01T09:00:00Z")

	resp := do(t, http.MethodGet, fmt.Sprintf("%s/api/v1/events/%d", srv.URL, created.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.EventDetail](t, resp)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, created.Title, got.Title)
	assert.Equal(t, created.Description, got.Description)
	assert.Equal(t, created.Location, got.Location)
	assert.True(t, created.Date.Equal(got.Date))
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, created.UpdatedAt.Equal(got.UpdatedAt))
	assert.Equal(t, 0, got.ParticipantsCount)
	assert.NotNil(t, got.Participants)
	assert.Empty(t, got.Participants)
}

func TestCreateEvent_MissingTitle(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/events", map[string]any{"event": map[string]any{
		"description": "desc", "date": "2025-01-01T09:00:00Z", "location": "Park",
	}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decode[models.ValidationErrorResponse](t, resp)
	require.Len(t, body.Errors, 1)
	assert.Contains(t, body.Errors[0], "Title")
}

func TestCreateEvent_ReportsAllViolations(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/events", map[string]any{"event": map[string]any{
		"title": "", "description": " ", "date": "", "location": "",
	}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[models.ValidationErrorResponse](t, resp)
	assert.Len(t, body.Errors, 4)
}

func TestCreateEvent_BadRequests(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/v1/events", "{not json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/v1/events", map[string]any{"title": "x"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[models.ErrorResponse](t, resp)
	assert.Contains(t, body.Error, "event")
}

func TestEmptyRootObject(t *testing.T) {
	srv, _ := setupTestServer(t)
	created := createEvent(t, srv, "Cleanup", "2025-07-01T09:00:00Z")
	eventURL := fmt.Sprintf("%s/api/v1/events/%d", srv.URL, created.ID)

	tests := []struct {
		name   string
		method string
		url    string
		body   any
		param  string
	}{
		{"create empty", http.MethodPost, srv.URL + "/api/v1/events", map[string]any{"event": map[string]any{}}, "event"},
		{"create null", http.MethodPost, srv.URL + "/api/v1/events", map[string]any{"event": nil}, "event"},
		{"create string", http.MethodPost, srv.URL + "/api/v1/events", map[string]any{"event": "x"}, "event"},
		{"put empty", http.MethodPut, eventURL, map[string]any{"event": map[string]any{}}, "event"},
		{"patch empty", http.MethodPatch, eventURL, map[string]any{"event": map[string]any{}}, "event"},
		{"register empty", http.MethodPost, eventURL + "/participants", map[string]any{"participant": map[string]any{}}, "participant"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, tt.method, tt.url, tt.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "param is missing or the value is empty: "+tt.param, decode[models.ErrorResponse](t, resp).Error)
		})
	}

	resp := do(t, http.MethodGet, eventURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[models.EventDetail](t, resp)
	assert.True(t, got.UpdatedAt.Equal(created.UpdatedAt), "rejected update leaves the event untouched")
}

func TestGetEvent_NotFound(t *testing.T) {
	srv, _ := setupTestServer(t)

	for _, id := range []string{"999999", "abc", "0", "-3"} {
		resp := do(t, http.MethodGet, srv.URL+"/api/v1/events/"+id, nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, id)
		assert.Equal(t, models.ErrorResponse{Error: "Evento no encontrado"}, decode[models.ErrorResponse](t, resp))
	}
}

func TestListEvents_Filters(t *testing.T) {
	srv, _ := setupTestServer(t)
	createEvent(t, srv, "future", "2025-07-01T09:00:00Z")
	createEvent(t, srv, "past", "2025-01-15T09:00:00Z")
	createEvent(t, srv, "exact", now.Format(time.RFC3339))
	createEvent(t, srv, "jan-end", "2025-01-31T18:30:00Z")

	titles := func(query string) []string {
		resp := do(t, http.MethodGet, srv.URL+"/api/v1/events"+query, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var out []string
		for _, e := range decode[[]models.EventSummary](t, resp) {
			out = append(out, e.Title)
		}
		return out
	}

	assert.Equal(t, []string{"past", "jan-end", "exact", "future"}, titles(""))
	assert.Equal(t, []string{"exact", "future"}, titles("?upcoming=true"))
	assert.Equal(t, []string{"past", "jan-end", "exact", "future"}, titles("?upcoming=1"), "only the literal true filters")
	assert.Equal(t, []string{"past", "jan-end"}, titles("?from_date=2025-01-15T09:00:00Z&to_date=2025-01-31"))
	assert.Equal(t, []string{"exact", "future"}, titles("?from_date=2025-02-01&upcoming=true"))
}

func TestListEvents_EmptyIsArray(t *testing.T) {
	srv, _ := setupTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var raw json.RawMessage = decode[json.RawMessage](t, resp)
	assert.Equal(t, "[]", strings.TrimSpace(string(raw)))
}

func TestListEvents_InvalidDate(t *testing.T) {
	srv, _ := setupTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/api/v1/events?from_date=yesterday-ish", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUpdateEvent(t *testing.T) {
	srv, _ := setupTestServer(t)
	created := createEvent(t, srv, "Cleanup", "2025-07-01T09:00:00Z")
	url := fmt.Sprintf("%s/api/v1/events/%d", srv.URL, created.ID)

	resp := do(t, http.MethodPut, url, map[string]any{"event": map[string]any{"location": "Plaza"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[models.EventSummary](t, resp)
	assert.Equal(t, "Plaza", updated.Location)
	assert.Equal(t, "Cleanup", updated.Title)
	assert.True(t, updated.Date.Equal(created.Date))

	resp = do(t, http.MethodPatch, url, map[string]any{"event": map[string]any{"title": "Minga"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Minga", decode[models.EventSummary](t, resp).Title)

	resp = do(t, http.MethodPut, url, map[string]any{"event": map[string]any{"title": nil}})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, []string{"Title can't be blank"}, decode[models.ValidationErrorResponse](t, resp).Errors)

	resp = do(t, http.MethodPut, srv.URL+"/api/v1/events/999999", "{not json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "missing event wins over a bad body")
}

func TestDeleteEvent_Cascade(t *testing.T) {
	srv, _ := setupTestServer(t)
	created := createEvent(t, srv, "Cleanup", "2025-07-01T09:00:00Z")
	resp := register(t, srv, created.ID, "Ana", "ana@x.com")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	p := decode[models.Participant](t, resp)

	resp = do(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/events/%d", srv.URL, created.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodGet, fmt.Sprintf("%s/api/v1/events/%d/participants", srv.URL, p.EventID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Evento no encontrado", decode[models.ErrorResponse](t, resp).Error)

	resp = do(t, http.MethodGet, fmt.Sprintf("%s/api/v1/participants/%d", srv.URL, p.ID), nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Participante no encontrado", decode[models.ErrorResponse](t, resp).Error)

	resp = do(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/events/%d", srv.URL, created.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRegisterParticipant_DuplicateEmail(t *testing.T) {
	srv, _ := setupTestServer(t)
	a := createEvent(t, srv, "a", "2025-07-01T09:00:00Z")
	b := createEvent(t, srv, "b", "2025-07-02T09:00:00Z")

	resp := register(t, srv, a.ID, "Ana", "ana@x.com")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	p := decode[models.Participant](t, resp)
	assert.Equal(t, "Ana", p.Name)
	assert.Equal(t, a.ID, p.EventID)

	resp = register(t, srv, a.ID, "Ana", "ana@x.com")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, []string{"Email ya está registrado para este evento"}, decode[models.ValidationErrorResponse](t, resp).Errors)

	resp = register(t, srv, b.ID, "Ana", "ana@x.com")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestRegisterParticipant_Validation(t *testing.T) {
	srv, _ := setupTestServer(t)
	e := createEvent(t, srv, "a", "2025-07-01T09:00:00Z")

	resp := register(t, srv, e.ID, "", "not-an-email")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, []string{"Name can't be blank", "Email is invalid"}, decode[models.ValidationErrorResponse](t, resp).Errors)

	resp = register(t, srv, 999999, "Ana", "ana@x.com")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodPost, fmt.Sprintf("%s/api/v1/events/%d/participants", srv.URL, e.ID), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListParticipants(t *testing.T) {
	srv, _ := setupTestServer(t)
	e := createEvent(t, srv, "a", "2025-07-01T09:00:00Z")
	for _, email := range []string{"c@x.com", "a@x.com", "b@x.com"} {
		require.Equal(t, http.StatusCreated, register(t, srv, e.ID, "P", email).StatusCode)
	}

	resp := do(t, http.MethodGet, fmt.Sprintf("%s/api/v1/events/%d/participants", srv.URL, e.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]models.Participant](t, resp)
	require.Len(t, list, 3)
	assert.Equal(t, "c@x.com", list[0].Email)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.Before(list[i-1].CreatedAt))
	}

	resp = do(t, http.MethodGet, srv.URL+"/api/v1/events", nil)
	events := decode[[]models.EventSummary](t, resp)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].ParticipantsCount)
}

func TestGetAndCancelParticipant(t *testing.T) {
	srv, _ := setupTestServer(t)
	e := createEvent(t, srv, "Cleanup", "2025-07-01T09:00:00Z")
	p := decode[models.Participant](t, register(t, srv, e.ID, "Ana", "ana@x.com"))

	resp := do(t, http.MethodGet, fmt.Sprintf("%s/api/v1/participants/%d", srv.URL, p.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	detail := decode[models.ParticipantDetail](t, resp)
	assert.Equal(t, "ana@x.com", detail.Email)
	assert.Equal(t, e.ID, detail.Event.ID)
	assert.Equal(t, "Cleanup", detail.Event.Title)
	assert.Equal(t, "Park", detail.Event.Location)

	resp = do(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/participants/%d", srv.URL, p.ID), nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/participants/%d", srv.URL, p.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := setupTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/up", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	createEvent(t, srv, "a", "2025-07-01T09:00:00Z")
	resp = do(t, http.MethodGet, srv.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `mingas_store_writes_total{entity="event",op="create"} 1`)
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := setupTestServer(t)
	resp := do(t, http.MethodGet, srv.URL+"/api/v2/events", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

// failingStore fails every call that reaches the store.
type failingStore struct {
	Store
}

func (failingStore) ListEvents(context.Context, models.EventFilter, time.Time) ([]models.EventSummary, error) {
	return nil, errors.New("disk on fire")
}

func TestUnexpectedStoreError(t *testing.T) {
	h := &Handlers{DB: failingStore{}}
	srv := httptest.NewServer(NewRouter(h, RouterOptions{}))
	defer srv.Close()

	resp := do(t, http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, models.ErrorResponse{Error: "Error interno del servidor"}, decode[models.ErrorResponse](t, resp))
}
