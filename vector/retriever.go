package vector

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/docchat"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Defaults for NewRetriever.
const (
	DefaultTopK      = 4
	DefaultCacheSize = 256
)

var _ docchat.Retriever = (*Retriever)(nil)

// Retriever embeds queries and searches an Index.
type Retriever struct {
	embedder docchat.Embedder
	index    *Index
	topK     int
	cache    *lru.Cache[string, []float32]
}

// NewRetriever returns a Retriever returning at most topK passages per
// search. Query embeddings are cached for the cacheSize most recent queries.
func NewRetriever(embedder docchat.Embedder, index *Index, topK, cacheSize int) (*Retriever, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
		cache:    cache,
	}, nil
}

// Search implements docchat.Retriever. The query is embedded with
// surrounding whitespace removed.
func (r *Retriever) Search(ctx context.Context, query string) ([]string, error) {
	key := strings.TrimSpace(query)
	vec, ok := r.cache.Get(key)
	if !ok {
		var err error
		vec, err = r.embedder.EmbedQuery(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		r.cache.Add(key, vec)
	}

	matches, err := r.index.Search(vec, r.topK)
	if err != nil {
		return nil, err
	}
	passages := make([]string, len(matches))
	for i, m := range matches {
		passages[i] = m.Content
	}
	return passages, nil
}
