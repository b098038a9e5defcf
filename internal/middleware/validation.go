package middleware

import (
	"errors"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateMessageContent validates message content.
func ValidateMessageContent(content string) error {
	if len(content) == 0 {
		return errors.New("content cannot be empty")
	}
	if len(content) > 100000 { // ~100KB limit
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateSessionID validates a session ID.
func ValidateSessionID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid session ID format")
	}
	return nil
}

// ValidateTemperature validates a sampling temperature.
func ValidateTemperature(t float64) error {
	if t < 0 || t > 2 {
		return errors.New("temperature must be between 0 and 2")
	}
	return nil
}

// ValidateThinkingBudget validates a reasoning token budget.
func ValidateThinkingBudget(budget int32) error {
	if budget < 0 {
		return errors.New("thinking budget cannot be negative")
	}
	return nil
}
