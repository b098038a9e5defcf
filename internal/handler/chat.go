package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/glimmerlabs/chat-gateway/internal/chat"
	"github.com/glimmerlabs/chat-gateway/internal/middleware"
	"github.com/glimmerlabs/chat-gateway/internal/model"
	"github.com/glimmerlabs/chat-gateway/internal/session"
	"github.com/glimmerlabs/chat-gateway/pkg/logger"
	"github.com/glimmerlabs/chat-gateway/pkg/metrics"
)

// ChatHandler handles the SSE chat endpoint.
type ChatHandler struct {
	orchestrator *chat.Orchestrator
	registry     *session.Registry
	logger       *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(orchestrator *chat.Orchestrator, registry *session.Registry, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		orchestrator: orchestrator,
		registry:     registry,
		logger:       log,
	}
}

// Stream handles POST /api/v1/session/chat
//
// The submission is accepted as JSON and the response is streamed back
// as Server-Sent Events: one "fragment" event per response increment,
// then "user_message" and either "message_complete" or "error", and
// finally "done".
func (h *ChatHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := middleware.GetSessionID(ctx)

	sess, err := h.registry.Get(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found or expired")
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Pre-flight check so the client gets a plain 409 instead of an SSE
	// error event. The orchestrator still enforces the gate atomically.
	if sess.IsLoading() {
		writeError(w, http.StatusConflict, "a turn is already in flight")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	result, err := h.orchestrator.Submit(ctx, sess, req.Text, func(fragment string, index int) error {
		// A write error here means the client is gone; returning it
		// aborts the turn through the orchestrator's failure path.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		return sendSSEEvent(w, flusher, "fragment", &model.FragmentEvent{
			Text:  fragment,
			Index: index,
		})
	})

	switch {
	case errors.Is(err, chat.ErrTurnInFlight):
		sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
			Code:    "turn_in_flight",
			Message: "a turn is already in flight",
		})
		return
	case errors.Is(err, chat.ErrEmptyMessage):
		sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
			Code:    "empty_message",
			Message: "message text is empty",
		})
		return
	case err != nil:
		// Stream failure: the placeholder already carries the fixed
		// failure text; mirror it to the client.
		sendSSEEvent(w, flusher, "user_message", result.UserMessage)
		sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
			Code:    "stream_failure",
			Message: chat.StreamFailureText,
		})
		sendSSEEvent(w, flusher, "done", map[string]bool{"success": false})
		h.logger.Warn("chat turn failed",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}

	sendSSEEvent(w, flusher, "user_message", result.UserMessage)
	sendSSEEvent(w, flusher, "message_complete", &model.MessageCompleteEvent{
		Message: result.ModelMessage,
	})
	sendSSEEvent(w, flusher, "done", map[string]bool{"success": true})
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	flusher.Flush()

	return nil
}
