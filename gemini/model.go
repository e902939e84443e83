package gemini

import (
	"context"

	"github.com/fwojciec/docchat"
	"google.golang.org/genai"
)

// Ensure Model implements docchat.LanguageModel at compile time.
var _ docchat.LanguageModel = (*Model)(nil)

// Model implements docchat.LanguageModel using Google Gemini.
type Model struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewModel creates a new Model generating with the named model at a fixed
// temperature.
func NewModel(client *genai.Client, model string, temperature float32) *Model {
	return &Model{client: client, model: model, temperature: temperature}
}

// Generate implements docchat.LanguageModel.
func (m *Model) Generate(ctx context.Context, prompt docchat.Prompt) (string, error) {
	result, err := m.client.Models.GenerateContent(ctx, m.model,
		BuildContents(prompt),
		BuildConfig(prompt, m.temperature),
	)
	if err != nil {
		return "", docchat.Errorf(docchat.EPROVIDER, "gemini generate: %v", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return "", docchat.Errorf(docchat.EPROVIDER, "gemini returned no candidates")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for a prompt: its system
// part becomes the system instruction.
func BuildConfig(prompt docchat.Prompt, temperature float32) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if prompt.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		}
	}
	return config
}

// BuildContents returns the user turn of a prompt.
func BuildContents(prompt docchat.Prompt) []*genai.Content {
	return []*genai.Content{
		genai.NewContentFromText(prompt.Human, genai.RoleUser),
	}
}
