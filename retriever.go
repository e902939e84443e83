package docchat

import "context"

// Retriever returns the passages most relevant to a query.
type Retriever interface {
	// Search returns passage texts ordered by relevance, best first.
	// Returns EPROVIDER if the query cannot be embedded.
	Search(ctx context.Context, query string) ([]string, error)
}

// Embedder computes embedding vectors for text.
type Embedder interface {
	// EmbedDocuments embeds passages for storage. The result has one vector
	// per input text, in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
