package handlers

import (
	"net/http"
	"strings"

	"mingas-api/internal/db"
	"mingas-api/internal/models"
	"mingas-api/internal/validation"
)

// HandleListParticipants handles GET /api/v1/events/{event_id}/participants
func (h *Handlers) HandleListParticipants(w http.ResponseWriter, r *http.Request) {
	evt, err := h.findEvent(r, "id")
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	participants, err := h.DB.ListParticipants(r.Context(), evt.ID)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, participants)
}

// HandleRegister handles POST /api/v1/events/{event_id}/participants
func (h *Handlers) HandleRegister(w http.ResponseWriter, r *http.Request) {
	evt, err := h.findEvent(r, "id")
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	var in models.ParticipantInput
	if err := decodeParam(w, r, "participant", &in); err != nil {
		h.sendError(w, r, err)
		return
	}

	errs := validation.Participant(in)
	if strings.TrimSpace(in.Email) != "" {
		taken, err := h.DB.EmailRegistered(r.Context(), evt.ID, in.Email)
		if err != nil {
			h.sendError(w, r, err)
			return
		}
		if taken {
			errs.Add(validation.MsgEmailTaken)
		}
	}
	if err := errs.Err(); err != nil {
		h.sendError(w, r, err)
		return
	}

	participant, err := h.DB.CreateParticipant(r.Context(), evt.ID, in)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	h.Metrics.RecordWrite("participant", "create")

	SendJSON(w, http.StatusCreated, participant)
}

// HandleGetParticipant handles GET /api/v1/participants/{id}
func (h *Handlers) HandleGetParticipant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", db.ErrParticipantNotFound)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	detail, err := h.DB.GetParticipantDetail(r.Context(), id)
	if err != nil {
		h.sendError(w, r, err)
		return
	}
	SendJSON(w, http.StatusOK, detail)
}

// HandleCancel handles DELETE /api/v1/participants/{id}
func (h *Handlers) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", db.ErrParticipantNotFound)
	if err != nil {
		h.sendError(w, r, err)
		return
	}

	if err := h.DB.DeleteParticipant(r.Context(), id); err != nil {
		h.sendError(w, r, err)
		return
	}
	h.Metrics.RecordWrite("participant", "delete")

	w.WriteHeader(http.StatusNoContent)
}
