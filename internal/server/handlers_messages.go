package server

import (
	"net/http"
	"time"

	"github.com/WEAV04/willy/internal/model"
)

// HandleMessage handles POST /v1/messages: one conversation turn.
func (h *Handlers) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req model.MessageRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}
	if req.SubjectID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeBadRequest, "subject_id is required")
		return
	}
	if req.Text == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeBadRequest, "text is required")
		return
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleSupervised {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeBadRequest, "unknown role")
		return
	}

	msg := model.InboundMessage{
		SubjectID: req.SubjectID,
		Role:      role,
		Text:      req.Text,
	}
	if req.Timestamp != nil {
		msg.Timestamp = *req.Timestamp
	}

	directive, classification, err := h.orch.HandleMessage(r.Context(), msg, req.History)
	if err != nil {
		h.writeInternalError(w, r, "failed to handle message", err)
		return
	}

	writeJSON(w, r, http.StatusOK, model.MessageResponse{
		Directive:      directive,
		Classification: classification,
	})
}

// HandleModeStatus handles GET /v1/subjects/{subject_id}/mode.
func (h *Handlers) HandleModeStatus(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("subject_id")
	if subjectID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeBadRequest, "subject_id is required")
		return
	}
	writeJSON(w, r, http.StatusOK, h.orch.Status(subjectID))
}

// HandleSupervisionStart handles POST /v1/supervision/{subject_id}/start.
func (h *Handlers) HandleSupervisionStart(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("subject_id")
	if subjectID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeBadRequest, "subject_id is required")
		return
	}

	var req model.SupervisionStartRequest
	if err := decodeJSON(w, r, &req, h.maxRequestBodyBytes); err != nil {
		handleDecodeError(w, r, err)
		return
	}
	if req.Profile == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeBadRequest, "profile is required")
		return
	}

	subject := model.Subject{
		ID:          subjectID,
		DisplayName: req.DisplayName,
		Caregiver:   req.Caregiver,
	}
	directive := h.orch.StartSupervision(subjectID, subject, model.SupervisionData{
		Profile:   req.Profile,
		Context:   req.Context,
		StartedAt: time.Now().UTC(),
	})

	// Persist the profile so an alert fired after a restart still knows the
	// caregiver. Best-effort: supervision runs even if the write fails.
	if h.db != nil {
		if err := h.db.UpsertSubject(r.Context(), subject); err != nil {
			h.logger.Error("failed to persist subject profile",
				"subject_id", subjectID, "error", err)
		}
	}

	writeJSON(w, r, http.StatusOK, directive)
}

// HandleSupervisionStop handles POST /v1/supervision/{subject_id}/stop.
func (h *Handlers) HandleSupervisionStop(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("subject_id")
	if subjectID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeBadRequest, "subject_id is required")
		return
	}
	writeJSON(w, r, http.StatusOK, h.orch.StopSupervision(subjectID))
}

// HandleListAlerts handles GET /v1/subjects/{subject_id}/alerts.
func (h *Handlers) HandleListAlerts(w http.ResponseWriter, r *http.Request) {
	subjectID := r.PathValue("subject_id")
	if subjectID == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeBadRequest, "subject_id is required")
		return
	}
	if h.db == nil {
		writeError(w, r, http.StatusServiceUnavailable, model.ErrCodeInternal, "storage not available")
		return
	}

	alerts, err := h.db.ListAlerts(r.Context(), subjectID, queryLimit(r, 100))
	if err != nil {
		h.writeInternalError(w, r, "failed to list alerts", err)
		return
	}
	if alerts == nil {
		alerts = []model.AlertEvent{}
	}
	writeJSON(w, r, http.StatusOK, alerts)
}
