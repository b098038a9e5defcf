package handler

import (
	"encoding/json"
	"net/http"

	"github.com/glimmerlabs/chat-gateway/internal/middleware"
	"github.com/glimmerlabs/chat-gateway/internal/model"
	"github.com/glimmerlabs/chat-gateway/internal/session"
	"github.com/glimmerlabs/chat-gateway/pkg/logger"
)

// SettingsHandler handles generation settings endpoints.
type SettingsHandler struct {
	registry *session.Registry
	logger   *logger.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(registry *session.Registry, log *logger.Logger) *SettingsHandler {
	return &SettingsHandler{registry: registry, logger: log}
}

// Get handles GET /api/v1/session/settings
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, sess.Settings())
}

// Update handles PUT /api/v1/session/settings. Absent fields keep their
// current values. An in-flight turn keeps the snapshot it already took.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req model.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg := sess.Settings()
	if req.Temperature != nil {
		if err := middleware.ValidateTemperature(*req.Temperature); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.Temperature = *req.Temperature
	}
	if req.ThinkingBudget != nil {
		if err := middleware.ValidateThinkingBudget(*req.ThinkingBudget); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		cfg.ThinkingBudget = *req.ThinkingBudget
	}
	if req.EnableThinking != nil {
		cfg.EnableThinking = *req.EnableThinking
	}

	sess.SetSettings(cfg)
	writeJSON(w, http.StatusOK, cfg)
}

func (h *SettingsHandler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sessionID := middleware.GetSessionID(r.Context())
	sess, err := h.registry.Get(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return nil, false
	}
	return sess, true
}
