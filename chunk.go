package docchat

import (
	"context"
	"time"
)

// Chunk is one embedded segment of the ingested documentation.
type Chunk struct {
	ID          string    `json:"id"`
	Position    int       `json:"position"`
	SourceURL   string    `json:"sourceUrl"`
	Content     string    `json:"content"`
	ContentHash string    `json:"contentHash"`
	Embedding   []float32 `json:"embedding,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.SourceURL == "" {
		return Errorf(EINVALID, "chunk source URL required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	if len(c.Embedding) == 0 {
		return Errorf(EINVALID, "chunk embedding required")
	}
	return nil
}

// IndexMeta describes how a persisted index was built. The chat command
// refuses to query an index built by a different embedding model.
type IndexMeta struct {
	Provider       Provider  `json:"provider"`
	EmbeddingModel string    `json:"embeddingModel"`
	Dimensions     int       `json:"dimensions"`
	SourceURL      string    `json:"sourceUrl"`
	Chunks         int       `json:"chunks"`
	BuiltAt        time.Time `json:"builtAt"`
}

// Validate returns an error if the metadata contains invalid fields.
func (m *IndexMeta) Validate() error {
	if _, err := ParseProvider(string(m.Provider)); err != nil {
		return err
	}
	if m.EmbeddingModel == "" {
		return Errorf(EINVALID, "index embedding model required")
	}
	if m.Dimensions <= 0 {
		return Errorf(EINVALID, "index dimensions must be positive")
	}
	return nil
}

// ChunkService represents the persisted similarity index.
type ChunkService interface {
	// ReplaceIndex atomically removes all chunks and metadata and stores
	// the given ones in their place.
	ReplaceIndex(ctx context.Context, meta *IndexMeta, chunks []*Chunk) error

	// FindChunks retrieves chunks ordered by position.
	FindChunks(ctx context.Context, filter ChunkFilter) ([]*Chunk, error)

	// FindIndexMeta retrieves the index metadata.
	// Returns ENOTFOUND if the index has never been built.
	FindIndexMeta(ctx context.Context) (*IndexMeta, error)
}

// ChunkFilter represents a filter for FindChunks.
type ChunkFilter struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Chunker splits cleaned text into overlapping segments.
type Chunker interface {
	Split(text string) ([]string, error)
}
