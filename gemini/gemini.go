// Package gemini implements the language model, embedder and token counter
// on top of the Google Gemini API.
package gemini

import (
	"context"

	"github.com/fwojciec/docchat"
	"google.golang.org/genai"
)

// Default model names.
const (
	DefaultChatModel      = "gemini-2.5-flash"
	DefaultEmbeddingModel = "gemini-embedding-001"
)

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, docchat.Errorf(docchat.EINVALID, "GEMINI_API_KEY not set")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}
