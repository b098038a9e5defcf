package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/glimmerlabs/chat-gateway/pkg/logger"
	"github.com/glimmerlabs/chat-gateway/pkg/metrics"
)

// ErrNotFound is returned when a session id is unknown or expired.
var ErrNotFound = errors.New("session: not found")

// Registry holds live sessions and sweeps out idle ones.
type Registry struct {
	ttl    time.Duration
	logger *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a session registry. Sessions idle longer than ttl
// are dropped by Run.
func NewRegistry(ttl time.Duration, log *logger.Logger) *Registry {
	return &Registry{
		ttl:      ttl,
		logger:   log,
		sessions: make(map[string]*Session),
	}
}

// Create opens a new session.
func (r *Registry) Create() *Session {
	s := newSession()

	r.mu.Lock()
	r.sessions[s.ID] = s
	count := len(r.sessions)
	r.mu.Unlock()

	metrics.SetSessionsActive(count)
	r.logger.Info("session created", zap.String("session_id", s.ID))

	return s
}

// Get returns a live session and records the access.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	s.Touch()
	return s, nil
}

// Delete drops a session immediately.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	count := len(r.sessions)
	r.mu.Unlock()

	metrics.SetSessionsActive(count)
}

// Count returns the number of live sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.sessions)
}

// Run sweeps idle sessions until the context is canceled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	cutoff := time.Now().Add(-r.ttl)

	r.mu.Lock()
	var dropped int
	for id, s := range r.sessions {
		// A session in the middle of a turn is active even if no HTTP
		// request has touched it recently.
		if s.IsLoading() {
			continue
		}
		if s.LastSeen().Before(cutoff) {
			delete(r.sessions, id)
			dropped++
		}
	}
	count := len(r.sessions)
	r.mu.Unlock()

	metrics.SetSessionsActive(count)
	if dropped > 0 {
		r.logger.Info("swept idle sessions",
			zap.Int("dropped", dropped),
			zap.Int("remaining", count),
		)
	}
}
