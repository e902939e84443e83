package docchat

import "strings"

// Provider identifies the AI service backing both the language model and
// the embedder.
type Provider string

// Supported providers.
const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// Providers returns all supported providers.
func Providers() []Provider {
	return []Provider{ProviderGemini, ProviderOpenAI}
}

// ParseProvider resolves a provider identifier case-insensitively.
// Returns EUNKNOWNPROVIDER for anything outside the supported set.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case ProviderGemini, ProviderOpenAI:
		return p, nil
	}
	return "", Errorf(EUNKNOWNPROVIDER, "unknown AI provider %q (supported: gemini, openai)", s)
}
