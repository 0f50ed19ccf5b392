package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"mingas-api/internal/db"
	"mingas-api/internal/metrics"
	"mingas-api/internal/middleware"
	"mingas-api/internal/models"
	"mingas-api/internal/validation"
)

// maxRequestBodySize limits request bodies.
const maxRequestBodySize = 1 << 20 // 1 MB

const (
	msgEventNotFound       = "Evento no encontrado"
	msgParticipantNotFound = "Participante no encontrado"
	msgInternal            = "Error interno del servidor"
	msgRouteNotFound       = "Ruta no encontrada"
	msgMethodNotAllowed    = "Método no permitido"
)

// Store is the persistence the handlers need.
type Store interface {
	PingContext(ctx context.Context) error
	ListEvents(ctx context.Context, f models.EventFilter, now time.Time) ([]models.EventSummary, error)
	GetEvent(ctx context.Context, id int64) (models.Event, error)
	GetEventDetail(ctx context.Context, id int64) (models.EventDetail, error)
	CreateEvent(ctx context.Context, c models.EventChanges) (models.Event, error)
	UpdateEvent(ctx context.Context, id int64, c models.EventChanges) (models.EventSummary, error)
	DeleteEvent(ctx context.Context, id int64) error
	ListParticipants(ctx context.Context, eventID int64) ([]models.Participant, error)
	EmailRegistered(ctx context.Context, eventID int64, email string) (bool, error)
	CreateParticipant(ctx context.Context, eventID int64, in models.ParticipantInput) (models.Participant, error)
	GetParticipantDetail(ctx context.Context, id int64) (models.ParticipantDetail, error)
	DeleteParticipant(ctx context.Context, id int64) error
}

type Handlers struct {
	DB      Store
	Metrics *metrics.Metrics
	// Now is the request clock for the upcoming filter. Defaults to time.Now.
	Now func() time.Time
}

// badRequest is a malformed request, reported as 400.
type badRequest struct {
	msg string
}

func (e badRequest) Error() string { return e.msg }

// SendJSON is a helper for sending JSON responses
func SendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// sendError maps err onto the documented error shapes.
func (h *Handlers) sendError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verrs validation.Errors
		bad   badRequest
	)
	switch {
	case errors.As(err, &verrs):
		SendJSON(w, http.StatusUnprocessableEntity, models.ValidationErrorResponse{Errors: verrs})
	case errors.Is(err, db.ErrEmailTaken):
		SendJSON(w, http.StatusUnprocessableEntity, models.ValidationErrorResponse{Errors: []string{validation.MsgEmailTaken}})
	case errors.Is(err, db.ErrEventNotFound):
		SendJSON(w, http.StatusNotFound, models.ErrorResponse{Error: msgEventNotFound})
	case errors.Is(err, db.ErrParticipantNotFound):
		SendJSON(w, http.StatusNotFound, models.ErrorResponse{Error: msgParticipantNotFound})
	case errors.As(err, &bad):
		SendJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: bad.msg})
	default:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestID(r.Context()),
			"error", err,
		)
		SendJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: msgInternal})
	}
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// pathID parses a positive integer path parameter. Anything else names
// a record that cannot exist, so callers answer with notFound.
func pathID(r *http.Request, param string, notFound error) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, notFound
	}
	return id, nil
}

// findEvent resolves the event named by the path. The event is handed
// to the caller as a value.
func (h *Handlers) findEvent(r *http.Request, param string) (models.Event, error) {
	id, err := pathID(r, param, db.ErrEventNotFound)
	if err != nil {
		return models.Event{}, err
	}
	return h.DB.GetEvent(r.Context(), id)
}

// decodeBody decodes a JSON body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return badRequest{msg: "Cuerpo JSON inválido"}
	}
	return nil
}

// decodeParam decodes the body's root key into dst. A missing key, a
// null or a non-object value, or an empty object is a missing param.
func decodeParam(w http.ResponseWriter, r *http.Request, key string, dst any) error {
	var root map[string]json.RawMessage
	if err := decodeBody(w, r, &root); err != nil {
		return err
	}
	raw, ok := root[key]
	if !ok {
		return missingParam(key)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return missingParam(key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return badRequest{msg: "Cuerpo JSON inválido"}
	}
	return nil
}

func missingParam(name string) error {
	return badRequest{msg: fmt.Sprintf("param is missing or the value is empty: %s", name)}
}

// parseEventFilter reads from_date, to_date and upcoming. Empty values
// are ignored; upcoming applies only to the literal "true".
func parseEventFilter(r *http.Request) (models.EventFilter, error) {
	q := r.URL.Query()
	var f models.EventFilter

	if v := strings.TrimSpace(q.Get("from_date")); v != "" {
		t, err := models.ParseRangeBound(v, false)
		if err != nil {
			return f, badRequest{msg: "Fecha inválida en from_date"}
		}
		f.From = &t
	}
	if v := strings.TrimSpace(q.Get("to_date")); v != "" {
		t, err := models.ParseRangeBound(v, true)
		if err != nil {
			return f, badRequest{msg: "Fecha inválida en to_date"}
		}
		f.To = &t
	}
	f.Upcoming = q.Get("upcoming") == "true"
	return f, nil
}

// HandleHealth handles GET /up
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.PingContext(r.Context()); err != nil {
		slog.Error("health check failed", "error", err)
		SendJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	SendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusNotFound, models.ErrorResponse{Error: msgRouteNotFound})
}

func (h *Handlers) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: msgMethodNotAllowed})
}
