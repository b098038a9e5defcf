// Package chat drives one conversation turn: append the user message,
// stream the model response into a placeholder, and settle the
// placeholder on completion or failure.
package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glimmerlabs/chat-gateway/internal/events"
	"github.com/glimmerlabs/chat-gateway/internal/llm"
	"github.com/glimmerlabs/chat-gateway/internal/model"
	"github.com/glimmerlabs/chat-gateway/internal/session"
	"github.com/glimmerlabs/chat-gateway/pkg/logger"
	"github.com/glimmerlabs/chat-gateway/pkg/metrics"
)

// StreamFailureText replaces the placeholder's accumulated text when a
// stream fails. Partial output is discarded, not annotated.
const StreamFailureText = "Something went wrong while generating a response. Please try again."

var (
	// ErrEmptyMessage is returned for input that trims to nothing.
	ErrEmptyMessage = errors.New("chat: message text is empty")

	// ErrTurnInFlight is returned when a submission races an active
	// turn. The losing submission appends nothing.
	ErrTurnInFlight = errors.New("chat: a turn is already in flight")

	// ErrStreamFailed wraps any transport or provider failure. The
	// cause is logged but never classified further.
	ErrStreamFailed = errors.New("chat: response stream failed")
)

// FragmentFunc observes each fragment after it has been folded into the
// placeholder. A non-nil return aborts the turn.
type FragmentFunc func(fragment string, index int) error

// TurnResult carries the two messages a turn produced. On stream
// failure ModelMessage holds the error-flagged placeholder.
type TurnResult struct {
	UserMessage  model.Message
	ModelMessage model.Message
}

// Orchestrator runs turns against one streaming client.
type Orchestrator struct {
	client    llm.Client
	modelName string
	publisher events.Publisher
	logger    *logger.Logger
}

// NewOrchestrator creates a turn orchestrator.
func NewOrchestrator(client llm.Client, modelName string, pub events.Publisher, log *logger.Logger) *Orchestrator {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Orchestrator{
		client:    client,
		modelName: modelName,
		publisher: pub,
		logger:    log,
	}
}

// Submit runs one turn for the session. onFragment may be nil.
//
// The turn proceeds: claim the turn slot, append the user message and
// an empty model placeholder, snapshot the settings, then fold stream
// fragments into the placeholder in arrival order, one store update per
// fragment. On stream failure the placeholder's text is replaced with
// StreamFailureText and flagged as an error; the returned error wraps
// ErrStreamFailed.
func (o *Orchestrator) Submit(ctx context.Context, sess *session.Session, text string, onFragment FragmentFunc) (*TurnResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}

	if !sess.BeginTurn() {
		return nil, ErrTurnInFlight
	}
	defer sess.EndTurn()

	log := o.logger.WithSession(sess.ID)

	// History is captured before this turn's user message is appended;
	// the user text travels separately in the request.
	prior := sess.Store.Messages()

	userMsg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Sender:    model.SenderUser,
		Text:      trimmed,
		Timestamp: time.Now(),
	}
	sess.Store.Append(userMsg)

	placeholder := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Sender:    model.SenderModel,
		Text:      "",
		Timestamp: time.Now(),
	}
	sess.Store.Append(placeholder)

	cfg := sess.Settings()
	o.publisher.TurnStarted(sess.ID, userMsg)

	req := &llm.ChatRequest{
		Model:          o.modelName,
		History:        toChatHistory(prior),
		UserText:       trimmed,
		Temperature:    cfg.Temperature,
		ThinkingBudget: cfg.ThinkingBudget,
		EnableThinking: cfg.EnableThinking,
	}

	start := time.Now()
	fragments, streamErr := o.consume(ctx, sess, placeholder.ID, req, onFragment)
	elapsed := time.Since(start).Seconds()

	if streamErr != nil {
		// The accumulated partial text is discarded wholesale.
		if err := sess.Store.UpdateText(placeholder.ID, StreamFailureText, true); err != nil {
			log.Error("failed to settle error placeholder", zap.Error(err))
		}
		o.publisher.TurnFailed(sess.ID, streamErr.Error())
		metrics.RecordTurn(o.client.Name(), "error", elapsed, fragments)
		log.Warn("turn failed",
			zap.Int("fragments", fragments),
			zap.Error(streamErr),
		)

		result := &TurnResult{UserMessage: userMsg, ModelMessage: findMessage(sess, placeholder.ID)}
		return result, errors.Join(ErrStreamFailed, streamErr)
	}

	final := findMessage(sess, placeholder.ID)
	o.publisher.TurnCompleted(sess.ID, final)
	metrics.RecordTurn(o.client.Name(), "success", elapsed, fragments)
	log.Info("turn completed",
		zap.Int("fragments", fragments),
		zap.Int("response_chars", len(final.Text)),
		zap.Float64("duration_s", elapsed),
	)

	return &TurnResult{UserMessage: userMsg, ModelMessage: final}, nil
}

// consume drives the fragment stream, folding each fragment into the
// placeholder. It returns the fragment count and the terminal error, if
// any.
func (o *Orchestrator) consume(ctx context.Context, sess *session.Session, placeholderID string, req *llm.ChatRequest, onFragment FragmentFunc) (int, error) {
	stream, err := o.client.StreamChat(ctx, req)
	if err != nil {
		return 0, err
	}
	defer stream.Close()

	var accumulator string
	index := 0

	for {
		fragment, err := stream.Next()
		if err == io.EOF {
			return index, nil
		}
		if err != nil {
			return index, err
		}

		accumulator += fragment
		if err := sess.Store.UpdateText(placeholderID, accumulator, false); err != nil {
			return index, err
		}
		o.publisher.Fragment(sess.ID, index, fragment)

		if onFragment != nil {
			if err := onFragment(fragment, index); err != nil {
				return index, err
			}
		}
		index++
	}
}

// toChatHistory converts stored messages to the provider-neutral form.
// Failed placeholders carry only the fixed failure string, so they are
// left out of the context window.
func toChatHistory(msgs []model.Message) []llm.ChatMessage {
	history := make([]llm.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		if msg.IsError || msg.Text == "" {
			continue
		}
		role := llm.RoleUser
		if msg.Sender == model.SenderModel {
			role = llm.RoleAssistant
		}
		history = append(history, llm.ChatMessage{Role: role, Content: msg.Text})
	}
	return history
}

func findMessage(sess *session.Session, id string) model.Message {
	for _, msg := range sess.Store.Messages() {
		if msg.ID == id {
			return msg
		}
	}
	return model.Message{}
}
