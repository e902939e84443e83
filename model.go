package docchat

import "context"

// Prompt is a rendered two-part instruction ready to send to a model.
type Prompt struct {
	// System is the fixed system-role instruction.
	System string

	// Human is the user-role text with all variables substituted.
	Human string
}

// LanguageModel turns a rendered prompt into generated text.
type LanguageModel interface {
	// Generate returns the model output for the prompt.
	// Returns EPROVIDER on network, auth or quota failures.
	Generate(ctx context.Context, prompt Prompt) (string, error)
}
