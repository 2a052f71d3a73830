package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ashureev/careercompass/internal/assessment"
	"github.com/ashureev/careercompass/internal/identity"
)

// SubmitRequest is the body of POST /api/assessment/messages.
type SubmitRequest struct {
	Message string `json:"message"`
}

// SubmitResponse reports whether a submission was accepted. Ignored input
// (empty, while thinking, after completion) is not an error.
type SubmitResponse struct {
	Accepted   bool                `json:"accepted"`
	Reason     string              `json:"reason,omitempty"`
	Assessment assessment.Snapshot `json:"assessment"`
}

// ConfigResponse exposes the timing the client should expect.
type ConfigResponse struct {
	ThinkDelayMS    int64  `json:"think_delay_ms"`
	RedirectDelayMS int64  `json:"redirect_delay_ms"`
	Questions       int    `json:"questions"`
	Opening         string `json:"opening"`
	ResultsPath     string `json:"results_path"`
}

// HandleConfig returns client-facing assessment settings.
func (h *Handler) HandleConfig(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, ConfigResponse{
		ThinkDelayMS:    h.cfg.Assessment.ThinkDelay.Milliseconds(),
		RedirectDelayMS: h.cfg.Assessment.RedirectDelay.Milliseconds(),
		Questions:       len(assessment.QuestionBank()),
		Opening:         assessment.OpeningMessage,
		ResultsPath:     assessment.ResultsPath,
	})
}

// HandleStartAssessment starts a new run, replacing any existing one.
func (h *Handler) HandleStartAssessment(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID := identity.SessionIDFromContext(r.Context())

	JSON(w, http.StatusCreated, h.mgr.Start(userID, sessionID))
}

// HandleGetAssessment returns the current run, starting one if needed.
func (h *Handler) HandleGetAssessment(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID := identity.SessionIDFromContext(r.Context())

	JSON(w, http.StatusOK, h.mgr.Current(userID, sessionID))
}

// HandleEndAssessment ends the current run and cancels its timers.
func (h *Handler) HandleEndAssessment(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID := identity.SessionIDFromContext(r.Context())

	JSON(w, http.StatusOK, map[string]bool{"ended": h.mgr.End(userID, sessionID)})
}

// HandleSubmit forwards one answer to the state machine.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	sessionID := identity.SessionIDFromContext(r.Context())

	// Rate-limit by userID only so rotating session IDs does not help.
	if !h.rateLimiter.Allow(userID) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, defaultMaxRequestBodySize)

	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	snap, err := h.mgr.Submit(userID, sessionID, req.Message)
	if err != nil {
		slog.Debug("Assessment submission ignored",
			"user_id", userID,
			"username", identity.UsernameFromContext(r.Context()),
			"session_id", sessionID,
			"reason", err.Error(),
			"request_id", chiMiddleware.GetReqID(r.Context()),
		)
		JSON(w, http.StatusOK, SubmitResponse{Accepted: false, Reason: assessment.RejectReason(err), Assessment: snap})
		return
	}

	slog.Info("Assessment answer accepted",
		"user_id", userID,
		"username", identity.UsernameFromContext(r.Context()),
		"session_id", sessionID,
		"run_id", snap.RunID,
		"turn", snap.Turn,
		"message_length", len(req.Message),
	)
	JSON(w, http.StatusAccepted, SubmitResponse{Accepted: true, Assessment: snap})
}
