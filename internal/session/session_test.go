package session

import (
	"testing"
	"time"

	"github.com/glimmerlabs/chat-gateway/internal/model"
	"github.com/glimmerlabs/chat-gateway/pkg/logger"
)

func TestSession_TurnGate(t *testing.T) {
	s := newSession()

	if !s.BeginTurn() {
		t.Fatal("first BeginTurn should succeed")
	}
	if s.BeginTurn() {
		t.Error("second BeginTurn should fail while a turn is in flight")
	}
	if !s.IsLoading() {
		t.Error("IsLoading should be true during a turn")
	}

	s.EndTurn()
	if s.IsLoading() {
		t.Error("IsLoading should be false after EndTurn")
	}
	if !s.BeginTurn() {
		t.Error("BeginTurn should succeed again after EndTurn")
	}
}

func TestSession_SettingsSnapshot(t *testing.T) {
	s := newSession()

	got := s.Settings()
	want := model.DefaultGenerationConfig()
	if got != want {
		t.Fatalf("default settings = %+v, want %+v", got, want)
	}

	s.SetSettings(model.GenerationConfig{Temperature: 0.2, ThinkingBudget: 1024, EnableThinking: true})
	got = s.Settings()
	if got.Temperature != 0.2 || got.ThinkingBudget != 1024 || !got.EnableThinking {
		t.Errorf("settings after update = %+v", got)
	}
}

func TestRegistry_CreateGetDelete(t *testing.T) {
	r := NewRegistry(time.Hour, logger.NewNop())

	s := r.Create()
	got, err := r.Get(s.ID)
	if err != nil {
		t.Fatalf("Get after Create: %v", err)
	}
	if got != s {
		t.Error("Get should return the same session instance")
	}

	r.Delete(s.ID)
	if _, err := r.Get(s.ID); err != ErrNotFound {
		t.Errorf("Get after Delete = %v, want ErrNotFound", err)
	}
}

func TestRegistry_SweepDropsIdleSessions(t *testing.T) {
	r := NewRegistry(time.Millisecond, logger.NewNop())

	idle := r.Create()
	busy := r.Create()
	if !busy.BeginTurn() {
		t.Fatal("BeginTurn failed")
	}

	time.Sleep(5 * time.Millisecond)
	r.sweep()

	if _, err := r.Get(idle.ID); err != ErrNotFound {
		t.Errorf("idle session should be swept, got %v", err)
	}
	if _, err := r.Get(busy.ID); err != nil {
		t.Errorf("in-flight session should survive the sweep, got %v", err)
	}
}
