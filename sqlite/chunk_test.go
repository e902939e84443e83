package sqlite_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeta() *docchat.IndexMeta {
	return &docchat.IndexMeta{
		Provider:       docchat.ProviderGemini,
		EmbeddingModel: "gemini-embedding-001",
		Dimensions:     3,
		SourceURL:      "https://example.com/docs",
	}
}

func testChunks(n int) []*docchat.Chunk {
	chunks := make([]*docchat.Chunk, n)
	for i := range chunks {
		chunks[i] = &docchat.Chunk{
			SourceURL: "https://example.com/docs",
			Content:   fmt.Sprintf("segment %d", i),
			Embedding: []float32{float32(i), 0.5, -1.25},
		}
	}
	return chunks
}

func TestChunkService_ReplaceIndex(t *testing.T) {
	t.Parallel()

	t.Run("stores chunks and metadata", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewChunkService(db)
		ctx := context.Background()
		meta := testMeta()
		chunks := testChunks(3)

		err := svc.ReplaceIndex(ctx, meta, chunks)
		require.NoError(t, err)

		assert.NotEmpty(t, chunks[0].ID, "ID should be generated")
		assert.NotEmpty(t, chunks[0].ContentHash, "ContentHash should be generated")
		assert.False(t, chunks[0].CreatedAt.IsZero(), "CreatedAt should be set")
		assert.Equal(t, 3, meta.Chunks)

		found, err := svc.FindChunks(ctx, docchat.ChunkFilter{})
		require.NoError(t, err)
		require.Len(t, found, 3)
		for i, c := range found {
			assert.Equal(t, i, c.Position)
			assert.Equal(t, fmt.Sprintf("segment %d", i), c.Content)
			assert.Equal(t, []float32{float32(i), 0.5, -1.25}, c.Embedding)
		}

		got, err := svc.FindIndexMeta(ctx)
		require.NoError(t, err)
		assert.Equal(t, docchat.ProviderGemini, got.Provider)
		assert.Equal(t, "gemini-embedding-001", got.EmbeddingModel)
		assert.Equal(t, 3, got.Dimensions)
		assert.Equal(t, 3, got.Chunks)
		assert.Equal(t, "https://example.com/docs", got.SourceURL)
		assert.False(t, got.BuiltAt.IsZero())
	})

	t.Run("overwrites the previous index", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewChunkService(db)
		ctx := context.Background()

		require.NoError(t, svc.ReplaceIndex(ctx, testMeta(), testChunks(5)))
		meta := testMeta()
		meta.Provider = docchat.ProviderOpenAI
		require.NoError(t, svc.ReplaceIndex(ctx, meta, testChunks(2)))

		found, err := svc.FindChunks(ctx, docchat.ChunkFilter{})
		require.NoError(t, err)
		assert.Len(t, found, 2)

		got, err := svc.FindIndexMeta(ctx)
		require.NoError(t, err)
		assert.Equal(t, docchat.ProviderOpenAI, got.Provider)
		assert.Equal(t, 2, got.Chunks)
	})

	t.Run("keeps the previous index when validation fails", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewChunkService(db)
		ctx := context.Background()
		require.NoError(t, svc.ReplaceIndex(ctx, testMeta(), testChunks(2)))

		chunks := testChunks(2)
		chunks[1].Embedding = []float32{1}
		err := svc.ReplaceIndex(ctx, testMeta(), chunks)

		require.Error(t, err)
		assert.Equal(t, docchat.EINVALID, docchat.ErrorCode(err))
		found, err := svc.FindChunks(ctx, docchat.ChunkFilter{})
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("returns error for invalid metadata", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewChunkService(db)

		err := svc.ReplaceIndex(context.Background(), &docchat.IndexMeta{}, testChunks(1))

		require.Error(t, err)
	})
}

func TestChunkService_FindChunks(t *testing.T) {
	t.Parallel()

	t.Run("applies limit and offset in position order", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewChunkService(db)
		ctx := context.Background()
		require.NoError(t, svc.ReplaceIndex(ctx, testMeta(), testChunks(10)))

		page, err := svc.FindChunks(ctx, docchat.ChunkFilter{Offset: 4, Limit: 3})

		require.NoError(t, err)
		require.Len(t, page, 3)
		assert.Equal(t, 4, page[0].Position)
		assert.Equal(t, 6, page[2].Position)
	})

	t.Run("applies offset without limit", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewChunkService(db)
		ctx := context.Background()
		require.NoError(t, svc.ReplaceIndex(ctx, testMeta(), testChunks(10)))

		page, err := svc.FindChunks(ctx, docchat.ChunkFilter{Offset: 8})

		require.NoError(t, err)
		assert.Len(t, page, 2)
	})

	t.Run("returns empty for an empty index", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewChunkService(db)

		page, err := svc.FindChunks(context.Background(), docchat.ChunkFilter{})

		require.NoError(t, err)
		assert.Empty(t, page)
	})
}

func TestChunkService_FindIndexMeta(t *testing.T) {
	t.Parallel()

	t.Run("returns not found before the first ingestion", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		svc := sqlite.NewChunkService(db)

		_, err := svc.FindIndexMeta(context.Background())

		require.Error(t, err)
		assert.Equal(t, docchat.ENOTFOUND, docchat.ErrorCode(err))
	})
}
