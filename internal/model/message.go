// Package model defines data structures for the chat gateway.
package model

import (
	"time"
)

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderModel Sender = "model"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// Message is one entry in a conversation. User messages are immutable
// once appended; model messages grow in place while a response streams.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	IsError   bool      `json:"is_error,omitempty"`
}

// ChatState is the renderable view of a session: the ordered message
// sequence plus whether a turn is currently in flight.
type ChatState struct {
	Messages  []Message `json:"messages"`
	IsLoading bool      `json:"is_loading"`
}
