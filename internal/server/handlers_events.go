package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/WEAV04/willy/internal/model"
)

// HandleCreateEvent handles POST /v1/events: appends one consented critical
// event. Writes without the consent attestation are refused.
func (h *Handlers) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CriticalEventRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}
	if !req.Consented {
		writeError(w, r, http.StatusForbidden, model.ErrCodeForbidden,
			"critical events require subject consent")
		return
	}
	if h.db == nil {
		writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeInternal, "storage not available")
		return
	}

	now := time.Now().UTC()
	event := model.CriticalEvent{
		ID:         uuid.New(),
		SubjectID:  req.SubjectID,
		EventType:  req.EventType,
		Detail:     req.Detail,
		ModeAtTime: req.ModeAtTime,
		Timestamp:  now,
		CreatedAt:  now,
	}
	if req.Timestamp != nil {
		event.Timestamp = req.Timestamp.UTC()
	}
	if err := model.ValidateCriticalEvent(event); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeBadRequest, err.Error())
		return
	}

	if err := h.db.InsertCriticalEvent(r.Context(), event); err != nil {
		h.writeInternalError(w, r, "failed to record critical event", err)
		return
	}

	h.logger.Info("critical event recorded",
		"subject_id", event.SubjectID,
		"event_type", event.EventType,
		"request_id", RequestIDFromContext(r.Context()))

	writeJSON(w, r, http.StatusCreated, event)
}

// HandleListEvents handles GET /v1/subjects/{subject_id}/events.
func (h *Handlers) HandleListEvents(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("subject_id")
	if subjectID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeBadRequest, "subject_id is required")
		return
	}
	if h.db == nil {
		writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeInternal, "storage not available")
		return
	}

	events, err := h.db.ListCriticalEvents(r.Context(), subjectID, queryLimit(r, 100))
	if err != nil {
		h.writeInternalError(w, r, "failed to list critical events", err)
		return
	}
	if events == nil {
		events = []model.CriticalEvent{}
	}
	writeJSON(w, r, http.StatusOK, events)
}
