// Package session tracks per-page chat sessions: each browser page
// session maps to one server session holding the conversation store,
// the generation settings, and the one-turn-in-flight gate.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/glimmerlabs/chat-gateway/internal/model"
	"github.com/glimmerlabs/chat-gateway/internal/store"
)

// Session is the server-side state for one page session.
type Session struct {
	ID        string
	CreatedAt time.Time
	Store     *store.Store

	mu       sync.RWMutex
	settings model.GenerationConfig

	busy     atomic.Bool
	lastSeen atomic.Int64
}

func newSession() *Session {
	s := &Session{
		ID:        uuid.Must(uuid.NewV7()).String(),
		CreatedAt: time.Now(),
		Store:     store.New(),
		settings:  model.DefaultGenerationConfig(),
	}
	s.Touch()
	return s
}

// Settings returns a snapshot of the generation settings.
func (s *Session) Settings() model.GenerationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// SetSettings replaces the generation settings. An in-flight turn keeps
// the snapshot it took at turn start.
func (s *Session) SetSettings(cfg model.GenerationConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = cfg
}

// BeginTurn claims the single turn slot. It returns false when a turn
// is already in flight.
func (s *Session) BeginTurn() bool {
	return s.busy.CompareAndSwap(false, true)
}

// EndTurn releases the turn slot.
func (s *Session) EndTurn() {
	s.busy.Store(false)
}

// IsLoading reports whether a turn is in flight.
func (s *Session) IsLoading() bool {
	return s.busy.Load()
}

// State returns the renderable chat state.
func (s *Session) State() model.ChatState {
	return model.ChatState{
		Messages:  s.Store.Messages(),
		IsLoading: s.IsLoading(),
	}
}

// Touch records activity for TTL accounting.
func (s *Session) Touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

// LastSeen returns the time of the most recent activity.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}
