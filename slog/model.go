package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docchat"
)

var _ docchat.LanguageModel = (*LoggingModel)(nil)

// LoggingModel wraps a LanguageModel with logging.
type LoggingModel struct {
	next   docchat.LanguageModel
	logger *slog.Logger
}

// NewLoggingModel creates a new LoggingModel.
func NewLoggingModel(next docchat.LanguageModel, logger *slog.Logger) *LoggingModel {
	return &LoggingModel{next: next, logger: logger}
}

// Generate logs prompt and output sizes and delegates to the wrapped model.
func (m *LoggingModel) Generate(ctx context.Context, prompt docchat.Prompt) (out string, err error) {
	defer func(begin time.Time) {
		m.logger.InfoContext(ctx, "generate",
			"prompt_bytes", len(prompt.System)+len(prompt.Human),
			"output_bytes", len(out),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return m.next.Generate(ctx, prompt)
}
