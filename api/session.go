package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/aurami/origin/internal/session"
)

// Session endpoint bounds.
const (
	MaxTitleLength   = 100
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// SessionHandler serves session endpoints.
type SessionHandler struct {
	store  *session.Store
	logger *slog.Logger
}

// NewSessionHandler creates a session handler.
func NewSessionHandler(store *session.Store, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{store: store, logger: logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.create)
	mux.HandleFunc("GET /api/sessions/{id}/messages", h.messages)
}

// CreateSessionRequest is the request body for creating a session.
type CreateSessionRequest struct {
	HouseholdID string `json:"householdId"`
	UserID      string `json:"userId"`
	Title       string `json:"title,omitempty"`
}

func (h *SessionHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body")
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
	if len(req.Title) > MaxTitleLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "title too long (max 100 characters)")
		return
	}

	sess, err := h.store.Create(r.Context(), householdID, userID)
	if err != nil {
		h.logger.Error("failed to create session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to create session")
		return
	}
	if req.Title != "" {
		if err := h.store.SetTitle(r.Context(), sess.ID, req.Title); err != nil {
			h.logger.Warn("failed to set session title", "error", err)
		} else {
			sess.Title = req.Title
		}
	}

	writeJSON(w, http.StatusCreated, sess)
}

// messages replays a session's history, oldest first.
// Query parameters: householdId (required), limit (default 50, max 500).
func (h *SessionHandler) messages(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "session id must be a valid UUID")
		return
	}
	householdID, err := uuid.Parse(r.URL.Query().Get("householdId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "householdId must be a valid UUID")
		return
	}
	limit := parseIntParam(r, "limit", DefaultListLimit, 1, MaxListLimit)

	// Session lookup is household-scoped; a foreign session reads as absent.
	if _, err := h.store.Get(r.Context(), householdID, sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		h.logger.Error("failed to load session", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load session")
		return
	}

	msgs, err := h.store.Recent(r.Context(), sessionID, limit)
	if err != nil {
		h.logger.Error("failed to load messages", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to load messages")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"messages":  msgs,
		"total":     len(msgs),
	})
}

// parseIntParam parses an integer query parameter with bounds clamping.
func parseIntParam(r *http.Request, name string, defaultVal, min, max int) int {
	str := r.URL.Query().Get(name)
	if str == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(str)
	if err != nil {
		return defaultVal
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
