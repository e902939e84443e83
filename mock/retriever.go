package mock

import (
	"context"

	"github.com/fwojciec/docchat"
)

var _ docchat.Retriever = (*Retriever)(nil)

// Retriever is a mock implementation of docchat.Retriever.
type Retriever struct {
	SearchFn func(ctx context.Context, query string) ([]string, error)
}

func (r *Retriever) Search(ctx context.Context, query string) ([]string, error) {
	return r.SearchFn(ctx, query)
}

var _ docchat.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of docchat.Embedder.
type Embedder struct {
	EmbedDocumentsFn func(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQueryFn     func(ctx context.Context, text string) ([]float32, error)
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedDocumentsFn(ctx, texts)
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedQueryFn(ctx, text)
}
