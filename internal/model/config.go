package model

// GenerationConfig holds the adjustable generation parameters for a
// session. It is read once at the start of each turn; edits made while
// a response streams apply to the next turn only.
type GenerationConfig struct {
	// Temperature controls sampling randomness, passed verbatim to the
	// backend. Valid range is 0 through 2.
	Temperature float64 `json:"temperature"`

	// ThinkingBudget is the upper bound on internal reasoning tokens.
	// Zero disables the reasoning phase.
	ThinkingBudget int32 `json:"thinking_budget"`

	// EnableThinking gates the reasoning phase independently of the
	// budget. When false, reasoning is skipped regardless of budget.
	EnableThinking bool `json:"enable_thinking"`
}

// DefaultGenerationConfig returns the settings a fresh session starts with.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:    1.0,
		ThinkingBudget: 0,
		EnableThinking: false,
	}
}
