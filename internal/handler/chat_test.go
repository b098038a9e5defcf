package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimmerlabs/chat-gateway/internal/chat"
	"github.com/glimmerlabs/chat-gateway/internal/llm"
	"github.com/glimmerlabs/chat-gateway/internal/middleware"
	"github.com/glimmerlabs/chat-gateway/internal/session"
	"github.com/glimmerlabs/chat-gateway/pkg/logger"
)

type scriptedStream struct {
	fragments []string
	failErr   error
	pos       int
}

func (s *scriptedStream) Next() (string, error) {
	if s.pos < len(s.fragments) {
		frag := s.fragments[s.pos]
		s.pos++
		return frag, nil
	}
	if s.failErr != nil {
		return "", s.failErr
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error { return nil }

type scriptedClient struct {
	stream *scriptedStream
}

func (c *scriptedClient) StreamChat(context.Context, *llm.ChatRequest) (llm.Stream, error) {
	return c.stream, nil
}

func (c *scriptedClient) Name() string     { return "scripted" }
func (c *scriptedClient) Models() []string { return []string{"scripted-1"} }

type sseEvent struct {
	name string
	data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()

	var events []sseEvent
	var current sseEvent
	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "event: "):
			current.name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		case line == "" && current.name != "":
			events = append(events, current)
			current = sseEvent{}
		}
	}
	return events
}

func newChatFixture(t *testing.T, stream *scriptedStream) (*ChatHandler, *session.Session) {
	t.Helper()

	registry := session.NewRegistry(time.Hour, logger.NewNop())
	sess := registry.Create()
	orchestrator := chat.NewOrchestrator(&scriptedClient{stream: stream}, "scripted-1", nil, logger.NewNop())
	return NewChatHandler(orchestrator, registry, logger.NewNop()), sess
}

func postChat(h *ChatHandler, sess *session.Session, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/chat", strings.NewReader(body))
	req = req.WithContext(middleware.WithSessionID(req.Context(), sess.ID))
	rec := httptest.NewRecorder()
	h.Stream(rec, req)
	return rec
}

func TestChatStream_Success(t *testing.T) {
	h, sess := newChatFixture(t, &scriptedStream{fragments: []string{"Hel", "lo"}})

	rec := postChat(h, sess, `{"text":"say hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	events := parseSSE(t, rec.Body.String())
	require.Len(t, events, 5)
	assert.Equal(t, "fragment", events[0].name)
	assert.Contains(t, events[0].data, `"Hel"`)
	assert.Equal(t, "fragment", events[1].name)
	assert.Contains(t, events[1].data, `"lo"`)
	assert.Equal(t, "user_message", events[2].name)
	assert.Equal(t, "message_complete", events[3].name)
	assert.Contains(t, events[3].data, `"Hello"`)
	assert.Equal(t, "done", events[4].name)
	assert.Contains(t, events[4].data, `"success":true`)
}

func TestChatStream_FailureSendsFixedError(t *testing.T) {
	h, sess := newChatFixture(t, &scriptedStream{
		fragments: []string{"par"},
		failErr:   errors.New("upstream hiccup"),
	})

	rec := postChat(h, sess, `{"text":"fail case"}`)
	events := parseSSE(t, rec.Body.String())

	var errorEvent *sseEvent
	for i := range events {
		if events[i].name == "error" {
			errorEvent = &events[i]
		}
	}
	require.NotNil(t, errorEvent, "expected an error event, got %v", events)
	assert.Contains(t, errorEvent.data, chat.StreamFailureText)
	assert.NotContains(t, errorEvent.data, "upstream hiccup", "provider error detail must not leak")

	msgs := sess.Store.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, chat.StreamFailureText, msgs[1].Text)
	assert.True(t, msgs[1].IsError)
}

func TestChatStream_ConflictWhileTurnInFlight(t *testing.T) {
	h, sess := newChatFixture(t, &scriptedStream{fragments: []string{"ok"}})

	require.True(t, sess.BeginTurn())
	lengthBefore := sess.Store.Len()

	rec := postChat(h, sess, `{"text":"busy"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, lengthBefore, sess.Store.Len())
}

func TestChatStream_EmptyTextRejected(t *testing.T) {
	h, sess := newChatFixture(t, &scriptedStream{fragments: []string{"ok"}})

	rec := postChat(h, sess, `{"text":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, sess.Store.Len())
}

func TestChatStream_UnknownSession(t *testing.T) {
	h, _ := newChatFixture(t, &scriptedStream{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/chat", strings.NewReader(`{"text":"hi"}`))
	req = req.WithContext(middleware.WithSessionID(req.Context(), "00000000-0000-0000-0000-000000000000"))
	rec := httptest.NewRecorder()
	h.Stream(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
