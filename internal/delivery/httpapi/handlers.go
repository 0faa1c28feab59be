package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aliskhannn/quran-assistant-bot/internal/domain/entities"
	"github.com/aliskhannn/quran-assistant-bot/internal/service"
)

type AssistantService interface {
	Ask(ctx context.Context, sessionID, text string) (service.Reply, error)
	Feedback(ctx context.Context, sessionID, answer string, positive bool) error
	History(ctx context.Context, sessionID string) ([]entities.ChatTurn, error)
	Pending(ctx context.Context, sessionID string) ([]entities.PendingQuestion, error)
}

type Handler struct {
	assistant AssistantService
	logger    *zap.Logger
}

func NewHandler(assistant AssistantService, logger *zap.Logger) *Handler {
	return &Handler{assistant: assistant, logger: logger}
}

type MessageRequest struct {
	Content string `json:"content"`
}

type MessageResponse struct {
	Kind     service.Kind        `json:"kind"`
	Answered bool                `json:"answered"` // the answer accepts feedback
	Turns    []entities.ChatTurn `json:"turns"`
}

type FeedbackRequest struct {
	Answer   string                `json:"answer"`
	Feedback entities.FeedbackKind `json:"feedback"`
}

func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "content is required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	reply, err := h.assistant.Ask(r.Context(), sessionID, req.Content)
	if err != nil {
		h.logger.Error("failed to answer", zap.String("session_id", sessionID), zap.Error(err))
		httpError(w, http.StatusInternalServerError, "internal_error", "failed to answer")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Kind: reply.Kind, Answered: reply.Answered, Turns: reply.Turns})
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	turns, err := h.assistant.History(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to load history", zap.String("session_id", sessionID), zap.Error(err))
		httpError(w, http.StatusInternalServerError, "internal_error", "failed to load history")
		return
	}
	if turns == nil {
		turns = []entities.ChatTurn{}
	}
	writeJSON(w, http.StatusOK, turns)
}

func (h *Handler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var positive bool
	switch req.Feedback {
	case entities.FeedbackPositive:
		positive = true
	case entities.FeedbackNegative:
	default:
		httpError(w, http.StatusBadRequest, "invalid_request_error", "feedback must be %q or %q",
			entities.FeedbackPositive, entities.FeedbackNegative)
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	err := h.assistant.Feedback(r.Context(), sessionID, req.Answer, positive)
	if errors.Is(err, service.ErrFeedbackTargetNotFound) {
		httpError(w, http.StatusNotFound, "not_found", "answer not found in question history")
		return
	}
	if err != nil {
		h.logger.Error("failed to record feedback", zap.String("session_id", sessionID), zap.Error(err))
		httpError(w, http.StatusInternalServerError, "internal_error", "failed to record feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *Handler) GetPending(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	pending, err := h.assistant.Pending(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to load pending questions", zap.String("session_id", sessionID), zap.Error(err))
		httpError(w, http.StatusInternalServerError, "internal_error", "failed to load pending questions")
		return
	}
	if pending == nil {
		pending = []entities.PendingQuestion{}
	}
	writeJSON(w, http.StatusOK, pending)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}
