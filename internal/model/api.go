package model

import (
	"time"
)

// CreateSessionResponse is returned when a new chat session is opened.
type CreateSessionResponse struct {
	SessionID string           `json:"session_id"`
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Settings  GenerationConfig `json:"settings"`
}

// SendMessageRequest is the body of a chat submission.
type SendMessageRequest struct {
	Text string `json:"text"`
}

// ClearRequest gates the destructive history wipe behind an explicit
// confirmation flag.
type ClearRequest struct {
	Confirm bool `json:"confirm"`
}

// UpdateSettingsRequest carries a partial settings update. Nil fields
// are left unchanged.
type UpdateSettingsRequest struct {
	Temperature    *float64 `json:"temperature,omitempty"`
	ThinkingBudget *int32   `json:"thinking_budget,omitempty"`
	EnableThinking *bool    `json:"enable_thinking,omitempty"`
}

// FragmentEvent is one streamed response increment.
type FragmentEvent struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// MessageCompleteEvent closes out a streamed model message.
type MessageCompleteEvent struct {
	Message Message `json:"message"`
}

// ErrorEvent is the terminal event of a failed turn.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
