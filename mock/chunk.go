package mock

import (
	"context"

	"github.com/fwojciec/docchat"
)

var _ docchat.ChunkService = (*ChunkService)(nil)

// ChunkService is a mock implementation of docchat.ChunkService.
type ChunkService struct {
	ReplaceIndexFn  func(ctx context.Context, meta *docchat.IndexMeta, chunks []*docchat.Chunk) error
	FindChunksFn    func(ctx context.Context, filter docchat.ChunkFilter) ([]*docchat.Chunk, error)
	FindIndexMetaFn func(ctx context.Context) (*docchat.IndexMeta, error)
}

func (s *ChunkService) ReplaceIndex(ctx context.Context, meta *docchat.IndexMeta, chunks []*docchat.Chunk) error {
	return s.ReplaceIndexFn(ctx, meta, chunks)
}

func (s *ChunkService) FindChunks(ctx context.Context, filter docchat.ChunkFilter) ([]*docchat.Chunk, error) {
	return s.FindChunksFn(ctx, filter)
}

func (s *ChunkService) FindIndexMeta(ctx context.Context) (*docchat.IndexMeta, error) {
	return s.FindIndexMetaFn(ctx)
}

var _ docchat.Chunker = (*Chunker)(nil)

// Chunker is a mock implementation of docchat.Chunker.
type Chunker struct {
	SplitFn func(text string) ([]string, error)
}

func (c *Chunker) Split(text string) ([]string, error) {
	return c.SplitFn(text)
}
