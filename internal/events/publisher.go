package events

import (
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/glimmerlabs/chat-gateway/internal/model"
)

// SubjectPrefix is the prefix for all chat subjects.
const SubjectPrefix = "chat"

// Publisher emits turn lifecycle events. Implementations must never
// block a turn on delivery.
type Publisher interface {
	TurnStarted(sessionID string, userMsg model.Message)
	Fragment(sessionID string, index int, text string)
	TurnCompleted(sessionID string, msg model.Message)
	TurnFailed(sessionID, reason string)
}

// TurnEvent is the wire form of a mirrored event.
type TurnEvent struct {
	SessionID string         `json:"session_id"`
	Kind      string         `json:"kind"`
	Message   *model.Message `json:"message,omitempty"`
	Fragment  string         `json:"fragment,omitempty"`
	Index     int            `json:"index,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	At        time.Time      `json:"at"`
}

// TurnSubject returns the subject for one kind of turn event.
func TurnSubject(sessionID, kind string) string {
	return fmt.Sprintf("%s.%s.turn.%s", SubjectPrefix, sessionID, kind)
}

// NATSPublisher mirrors events with plain core publishes.
type NATSPublisher struct {
	conn   *Conn
	logger *zap.Logger
}

// NewNATSPublisher creates a publisher on an established connection.
func NewNATSPublisher(conn *Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn, logger: conn.logger.Logger}
}

func (p *NATSPublisher) publish(sessionID, kind string, event TurnEvent) {
	event.SessionID = sessionID
	event.Kind = kind
	event.At = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal turn event", zap.Error(err))
		return
	}

	if err := p.conn.nc.Publish(TurnSubject(sessionID, kind), data); err != nil {
		p.logger.Warn("failed to publish turn event",
			zap.String("kind", kind),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}
}

func (p *NATSPublisher) TurnStarted(sessionID string, userMsg model.Message) {
	p.publish(sessionID, "started", TurnEvent{Message: &userMsg})
}

func (p *NATSPublisher) Fragment(sessionID string, index int, text string) {
	p.publish(sessionID, "fragment", TurnEvent{Fragment: text, Index: index})
}

func (p *NATSPublisher) TurnCompleted(sessionID string, msg model.Message) {
	p.publish(sessionID, "completed", TurnEvent{Message: &msg})
}

func (p *NATSPublisher) TurnFailed(sessionID, reason string) {
	p.publish(sessionID, "failed", TurnEvent{Reason: reason})
}

// NopPublisher discards all events. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) TurnStarted(string, model.Message)   {}
func (NopPublisher) Fragment(string, int, string)        {}
func (NopPublisher) TurnCompleted(string, model.Message) {}
func (NopPublisher) TurnFailed(string, string)           {}
