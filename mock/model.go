package mock

import (
	"context"

	"github.com/fwojciec/docchat"
)

var _ docchat.LanguageModel = (*LanguageModel)(nil)

// LanguageModel is a mock implementation of docchat.LanguageModel.
type LanguageModel struct {
	GenerateFn func(ctx context.Context, prompt docchat.Prompt) (string, error)
}

func (m *LanguageModel) Generate(ctx context.Context, prompt docchat.Prompt) (string, error) {
	return m.GenerateFn(ctx, prompt)
}
