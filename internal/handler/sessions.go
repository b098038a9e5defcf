// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/glimmerlabs/chat-gateway/internal/middleware"
	"github.com/glimmerlabs/chat-gateway/internal/model"
	"github.com/glimmerlabs/chat-gateway/internal/session"
	"github.com/glimmerlabs/chat-gateway/internal/store"
	"github.com/glimmerlabs/chat-gateway/pkg/logger"
)

// SessionHandler handles session lifecycle and state endpoints.
type SessionHandler struct {
	registry  *session.Registry
	jwtSecret string
	tokenTTL  time.Duration
	logger    *logger.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(registry *session.Registry, jwtSecret string, tokenTTL time.Duration, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		registry:  registry,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		logger:    log,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess := h.registry.Create()

	token, expiresAt, err := middleware.NewSessionToken(h.jwtSecret, sess.ID, h.tokenTTL)
	if err != nil {
		h.logger.Error("failed to sign session token", zap.Error(err))
		h.registry.Delete(sess.ID)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	writeJSON(w, http.StatusCreated, &model.CreateSessionResponse{
		SessionID: sess.ID,
		Token:     token,
		ExpiresAt: expiresAt,
		Settings:  sess.Settings(),
	})
}

// Get handles GET /api/v1/session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, sess.State())
}

// Delete handles DELETE /api/v1/session
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.GetSessionID(r.Context())
	h.registry.Delete(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// Clear handles POST /api/v1/session/clear. The wipe only happens with
// an explicit confirmation flag in the body.
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req model.ClearRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := sess.Store.Clear(req.Confirm); err != nil {
		if err == store.ErrNotConfirmed {
			writeError(w, http.StatusBadRequest, "clearing history requires confirmation")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to clear history")
		return
	}

	h.logger.Info("conversation cleared", zap.String("session_id", sess.ID))
	writeJSON(w, http.StatusOK, sess.State())
}

// session resolves the authenticated session or writes a 404.
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID := middleware.GetSessionID(r.Context())
	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	sess, err := h.registry.Get(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return nil, false
	}
	return sess, true
}
