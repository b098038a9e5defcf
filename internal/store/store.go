// Package store holds the in-memory conversation for one chat session.
package store

import (
	"errors"
	"sync"

	"github.com/glimmerlabs/chat-gateway/internal/model"
)

var (
	// ErrNotFound is returned when no message with the given id exists.
	ErrNotFound = errors.New("store: message not found")

	// ErrImmutableMessage is returned when an update targets a user
	// message. Only model messages may change after they are appended.
	ErrImmutableMessage = errors.New("store: user messages are immutable")

	// ErrNotConfirmed is returned when Clear is called without the
	// confirmation flag. The wipe is irreversible, so it never happens
	// implicitly.
	ErrNotConfirmed = errors.New("store: clear requires confirmation")
)

// Store is an append-only message sequence with a single in-place
// mutation: replacing the text of the model message currently being
// streamed. Lifetime is scoped to the session; nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	messages []model.Message
}

// New creates an empty conversation store.
func New() *Store {
	return &Store{}
}

// Append adds a message to the end of the conversation.
func (s *Store) Append(msg model.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = append(s.messages, msg)
}

// UpdateText replaces the text of the message with the given id. The
// replacement is wholesale, not a delta, so repeating an update with
// the same accumulated text is idempotent. Updates against user
// messages are rejected.
func (s *Store) UpdateText(id, text string, markError bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID != id {
			continue
		}
		if s.messages[i].Sender == model.SenderUser {
			return ErrImmutableMessage
		}
		s.messages[i].Text = text
		if markError {
			s.messages[i].IsError = true
		}
		return nil
	}

	return ErrNotFound
}

// Clear empties the conversation. Without confirm the store is left
// untouched and ErrNotConfirmed is returned.
func (s *Store) Clear(confirm bool) error {
	if !confirm {
		return ErrNotConfirmed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages = nil
	return nil
}

// Messages returns a snapshot copy of the conversation in order.
func (s *Store) Messages() []model.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages in the conversation.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.messages)
}
