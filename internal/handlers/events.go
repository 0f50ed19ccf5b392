package handlers

import (
	"net/http"

	"mingas-api/internal/db"
	"mingas-api/internal/models"
	"mingas-api/internal/validation"
)

// HandleListEvents handles GET /api/v1/events
func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	events, err := h.DB.ListEvents(r.Context(), filter, h.now())
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	// Returning an empty array instead of null if no events
	if events == nil {
		events = []models.EventSummary{}
	}
	SendJSON(w, http.StatusOK, events)
}

// HandleGetEvent handles GET /api/v1/events/{id}
func (h *Handlers) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", db.ErrEventNotFound)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	detail, err := h.DB.GetEventDetail(r.Context(), id)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, detail)
}

// HandleCreateEvent handles POST /api/v1/events
func (h *Handlers) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var patch models.EventPatch
	if err := decodeParam(w, r, "event", &patch); err != nil {
		h.sendError(w, r, err)
		return
	}

	changes, errs := validation.Event(patch, false)
	if err := errs.Err(); err != nil {
		h.sendError(w, r, err)
		return
	}

	evt, err := h.DB.CreateEvent(r.Context(), changes)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.Metrics.RecordWrite("event", "create")

	SendJSON(w, http.StatusCreated, models.NewEventSummary(evt, 0))
}

// HandleUpdateEvent handles PUT and PATCH /api/v1/events/{id}
func (h *Handlers) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	evt, err := h.findEvent(r, "id")
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	var patch models.EventPatch
	if err := decodeParam(w, r, "event", &patch); err != nil {
		h.sendError(w, r, err)
		return
	}

	changes, errs := validation.Event(patch, true)
	if err := errs.Err(); err != nil {
		h.sendError(w, r, err)
		return
	}

	updated, err := h.DB.UpdateEvent(r.Context(), evt.ID, changes)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.Metrics.RecordWrite("event", "update")

	SendJSON(w, http.StatusOK, updated)
}

// HandleDeleteEvent handles DELETE /api/v1/events/{id}
func (h *Handlers) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", db.ErrEventNotFound)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	if err := h.DB.DeleteEvent(r.Context(), id); err != nil {
		h.sendError(w, r, err)
		return
	}
	h.Metrics.RecordWrite("event", "delete")

	w.WriteHeader(http.StatusNoContent)
}
