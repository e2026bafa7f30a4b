package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aurami/origin/internal/agent"
	"github.com/aurami/origin/internal/session"
)

// MaxMessageLength bounds one chat message.
const MaxMessageLength = 8000

// TurnRunner executes one conversation turn. *agent.Orchestrator satisfies it.
type TurnRunner interface {
	Run(ctx context.Context, in agent.RunInput) (*agent.RunOutput, error)
}

// ChatHandler serves the chat endpoint.
type ChatHandler struct {
	runner TurnRunner
	logger *slog.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(runner TurnRunner, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{runner: runner, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.chat)
}

// ChatRequest is one user turn. SessionID is optional; omitting it starts
// a new session.
type ChatRequest struct {
	Message     string `json:"message"`
	SessionID   string `json:"sessionId,omitempty"`
	HouseholdID string `json:"householdId"`
	UserID      string `json:"userId"`
}

// ChatResponse is the assistant's reply.
type ChatResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

func (h *ChatHandler) chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
		return
	}

	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "message is required")
		return
	}
	if len(req.Message) > MaxMessageLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "message too long")
		return
	}

	householdID, err := uuid.Parse(req.HouseholdID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "householdId must be a valid UUID")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "userId must be a valid UUID")
		return
	}

	in := agent.RunInput{
		HouseholdID: householdID,
		UserID:      userID,
		Message:     req.Message,
	}
	if req.SessionID != "" {
		sessionID, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "sessionId must be a valid UUID")
			return
		}
		in.SessionID = &sessionID
	}

	out, err := h.runner.Run(r.Context(), in)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		h.logger.Error("chat turn failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "chat turn failed")
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Message:   out.Message,
		SessionID: out.SessionID.String(),
	})
}
