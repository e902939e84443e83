// Package openai implements the language model and embedder on top of the
// OpenAI API.
package openai

import (
	"context"

	"github.com/fwojciec/docchat"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Default model names.
const (
	DefaultChatModel      = "gpt-4o"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// NewClient creates an OpenAI API client. Extra options are applied after
// the API key.
func NewClient(apiKey string, opts ...option.RequestOption) (*openai.Client, error) {
	if apiKey == "" {
		return nil, docchat.Errorf(docchat.EINVALID, "OPENAI_API_KEY not set")
	}
	client := openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &client, nil
}

// Ensure Model implements docchat.LanguageModel at compile time.
var _ docchat.LanguageModel = (*Model)(nil)

// Model implements docchat.LanguageModel using OpenAI chat completions.
type Model struct {
	client      *openai.Client
	model       string
	temperature float64
}

// NewModel creates a new Model generating with the named model at a fixed
// temperature.
func NewModel(client *openai.Client, model string, temperature float64) *Model {
	return &Model{client: client, model: model, temperature: temperature}
}

// Generate implements docchat.LanguageModel.
func (m *Model) Generate(ctx context.Context, prompt docchat.Prompt) (string, error) {
	resp, err := m.client.Chat.Completions.New(ctx, BuildParams(m.model, m.temperature, prompt))
	if err != nil {
		return "", docchat.Errorf(docchat.EPROVIDER, "openai chat completion: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", docchat.Errorf(docchat.EPROVIDER, "openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// BuildParams returns the chat completion request for a prompt: the system
// part as a system message, the human part as a user message.
func BuildParams(model string, temperature float64, prompt docchat.Prompt) openai.ChatCompletionNewParams {
	var messages []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.Human))
	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(temperature),
	}
}
