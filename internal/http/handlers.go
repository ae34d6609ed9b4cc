package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ledgerbot/internal/bot"
	"ledgerbot/internal/command"
	applog "ledgerbot/internal/log"
)

// MessageRequest is the body of POST /v1/messages.
type MessageRequest struct {
	MessageID string `json:"message_id,omitempty"`
	UserID    string `json:"user_id"`
	Text      string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())

	var req MessageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		logger.Warn("Invalid message payload", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeValidation)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	// Retries of an already answered message are served from the reply
	// cache and do not spend the user's budget.
	if s.userLimiter != nil && !s.bot.Replayed(req.UserID, req.MessageID) && !s.userLimiter.Allow(req.UserID) {
		logger.Warn("User rate limit exceeded", applog.FieldUserID, req.UserID)
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "too many messages, slow down")
		return
	}

	reply, err := s.bot.Handle(r.Context(), bot.Message{
		ID:     req.MessageID,
		UserID: req.UserID,
		Text:   req.Text,
	})
	if err != nil {
		if errors.Is(err, bot.ErrMissingUser) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		logger.Error("Message handling failed", applog.FieldUserID, req.UserID, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func handleKeyboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, command.MainKeyboard())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(); err != nil {
			applog.FromContext(r.Context()).Warn("Readiness check failed", applog.FieldError, err)
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
