package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/gemini"
	"github.com/fwojciec/docchat/openai"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// API key environment variables per provider.
var apiKeyEnv = map[docchat.Provider]string{
	docchat.ProviderGemini: "GEMINI_API_KEY",
	docchat.ProviderOpenAI: "OPENAI_API_KEY",
}

// ProviderConfig selects and configures the AI service.
type ProviderConfig struct {
	Provider       docchat.Provider
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	Dimensions     int
	Temperature    float64

	// CountTokens requests a TokenCounter where the provider has one.
	CountTokens bool
}

// Clients are the capabilities built for one provider. TokenCounter is nil
// when the provider has no local tokenizer.
type Clients struct {
	Model        docchat.LanguageModel
	Embedder     docchat.Embedder
	TokenCounter docchat.TokenCounter
}

// ProviderFactory builds the clients for a configuration.
type ProviderFactory func(ctx context.Context, cfg ProviderConfig) (*Clients, error)

// NewProvider builds real Gemini or OpenAI clients.
func NewProvider(ctx context.Context, cfg ProviderConfig) (*Clients, error) {
	if cfg.APIKey == "" {
		return nil, docchat.Errorf(docchat.EINVALID, "%s not set", apiKeyEnv[cfg.Provider])
	}

	switch cfg.Provider {
	case docchat.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.APIKey)
		if err != nil {
			return nil, err
		}
		embedder := gemini.NewEmbedder(client, cfg.EmbeddingModel)
		embedder.Dimensions = cfg.Dimensions
		clients := &Clients{
			Model:    gemini.NewModel(client, cfg.ChatModel, float32(cfg.Temperature)),
			Embedder: embedder,
		}
		if cfg.CountTokens {
			tc, err := gemini.NewTokenCounter(cfg.ChatModel)
			if err != nil {
				return nil, err
			}
			clients.TokenCounter = tc
		}
		return clients, nil

	case docchat.ProviderOpenAI:
		client, err := openai.NewClient(cfg.APIKey)
		if err != nil {
			return nil, err
		}
		embedder := openai.NewEmbedder(client, cfg.EmbeddingModel)
		embedder.Dimensions = cfg.Dimensions
		return &Clients{
			Model:    openai.NewModel(client, cfg.ChatModel, cfg.Temperature),
			Embedder: embedder,
		}, nil
	}
	return nil, docchat.Errorf(docchat.EUNKNOWNPROVIDER, "unknown AI provider %q", cfg.Provider)
}

// providerConfig resolves the flags for the selected provider.
func (c *CLI) providerConfig(p docchat.Provider, getenv func(string) string) ProviderConfig {
	cfg := ProviderConfig{
		Provider:    p,
		APIKey:      getenv(apiKeyEnv[p]),
		Dimensions:  c.Dimensions,
		Temperature: c.Temperature,
	}
	switch p {
	case docchat.ProviderGemini:
		cfg.ChatModel, cfg.EmbeddingModel = c.GeminiChatModel, c.GeminiEmbeddingModel
	case docchat.ProviderOpenAI:
		cfg.ChatModel, cfg.EmbeddingModel = c.OpenAIChatModel, c.OpenAIEmbeddingModel
	}
	return cfg
}

// LoadPrompts reads prompt templates from path, or the built-in ones when
// path is empty, and validates them.
func LoadPrompts(path string) (docchat.PromptSet, error) {
	data := defaultPrompts
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return docchat.PromptSet{}, fmt.Errorf("read prompts: %w", err)
		}
	}

	var prompts docchat.PromptSet
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return docchat.PromptSet{}, docchat.Errorf(docchat.EINVALID, "parse prompts: %v", err)
	}
	if err := prompts.Validate(); err != nil {
		return docchat.PromptSet{}, err
	}
	return prompts, nil
}

// CheckIndex returns EINDEX if meta was built by a different embedding
// configuration than cfg.
func CheckIndex(meta *docchat.IndexMeta, cfg ProviderConfig) error {
	if meta.Provider != cfg.Provider || meta.EmbeddingModel != cfg.EmbeddingModel {
		return docchat.Errorf(docchat.EINDEX, "index was built with %s/%s but the active embedder is %s/%s, run 'docchat ingest' again",
			meta.Provider, meta.EmbeddingModel, cfg.Provider, cfg.EmbeddingModel)
	}
	if cfg.Dimensions > 0 && meta.Dimensions != cfg.Dimensions {
		return docchat.Errorf(docchat.EINDEX, "index has %d dimensions but %d were requested", meta.Dimensions, cfg.Dimensions)
	}
	return nil
}
