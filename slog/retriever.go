package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docchat"
)

var _ docchat.Retriever = (*LoggingRetriever)(nil)

// LoggingRetriever wraps a Retriever with logging.
type LoggingRetriever struct {
	next   docchat.Retriever
	logger *slog.Logger
}

// NewLoggingRetriever creates a new LoggingRetriever.
func NewLoggingRetriever(next docchat.Retriever, logger *slog.Logger) *LoggingRetriever {
	return &LoggingRetriever{next: next, logger: logger}
}

// Search logs the number of passages found and delegates to the wrapped
// retriever.
func (r *LoggingRetriever) Search(ctx context.Context, query string) (passages []string, err error) {
	defer func(begin time.Time) {
		r.logger.InfoContext(ctx, "search",
			"query_bytes", len(query),
			"passages", len(passages),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Search(ctx, query)
}

var _ docchat.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with logging.
type LoggingEmbedder struct {
	next   docchat.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next docchat.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// EmbedDocuments logs the batch size and delegates to the wrapped embedder.
func (e *LoggingEmbedder) EmbedDocuments(ctx context.Context, texts []string) (vecs [][]float32, err error) {
	defer func(begin time.Time) {
		e.logger.InfoContext(ctx, "embed documents",
			"texts", len(texts),
			"vectors", len(vecs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.EmbedDocuments(ctx, texts)
}

// EmbedQuery logs the vector dimension and delegates to the wrapped embedder.
func (e *LoggingEmbedder) EmbedQuery(ctx context.Context, text string) (vec []float32, err error) {
	defer func(begin time.Time) {
		e.logger.DebugContext(ctx, "embed query",
			"dimensions", len(vec),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.EmbedQuery(ctx, text)
}
