package sqlite

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/docchat"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ docchat.ChunkService = (*ChunkService)(nil)

// Metadata keys in the index_meta table.
const (
	metaProvider       = "provider"
	metaEmbeddingModel = "embedding_model"
	metaDimensions     = "dimensions"
	metaSourceURL      = "source_url"
	metaChunks         = "chunks"
	metaBuiltAt        = "built_at"
)

// ChunkService implements docchat.ChunkService using SQLite.
type ChunkService struct {
	db *DB
}

// NewChunkService creates a new ChunkService.
func NewChunkService(db *DB) *ChunkService {
	return &ChunkService{db: db}
}

// ReplaceIndex implements docchat.ChunkService. Chunks get fresh IDs,
// hashes, timestamps and consecutive positions.
func (s *ChunkService) ReplaceIndex(ctx context.Context, meta *docchat.IndexMeta, chunks []*docchat.Chunk) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	for i, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
		if len(c.Embedding) != meta.Dimensions {
			return docchat.Errorf(docchat.EINVALID, "chunk %d has %d dimensions, expected %d", i, len(c.Embedding), meta.Dimensions)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("failed to clear chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return fmt.Errorf("failed to clear index metadata: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, position, source_url, content, content_hash, embedding, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i, c := range chunks {
		c.ID = uuid.New().String()
		c.Position = i
		c.ContentHash = hashContent(c.Content)
		c.CreatedAt = now
		if _, err := stmt.ExecContext(ctx, c.ID, c.Position, c.SourceURL, c.Content, c.ContentHash,
			encodeEmbedding(c.Embedding), c.CreatedAt.Format(time.RFC3339)); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}

	meta.Chunks = len(chunks)
	meta.BuiltAt = now
	values := map[string]string{
		metaProvider:       string(meta.Provider),
		metaEmbeddingModel: meta.EmbeddingModel,
		metaDimensions:     strconv.Itoa(meta.Dimensions),
		metaSourceURL:      meta.SourceURL,
		metaChunks:         strconv.Itoa(meta.Chunks),
		metaBuiltAt:        meta.BuiltAt.Format(time.RFC3339),
	}
	for k, v := range values {
		if _, err := tx.ExecContext(ctx, "INSERT INTO index_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("failed to write index metadata: %w", err)
		}
	}

	return tx.Commit()
}

// FindChunks implements docchat.ChunkService.
func (s *ChunkService) FindChunks(ctx context.Context, filter docchat.ChunkFilter) ([]*docchat.Chunk, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, position, source_url, content, content_hash, embedding, created_at FROM chunks ORDER BY position ASC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*docchat.Chunk
	for rows.Next() {
		var c docchat.Chunk
		var blob []byte
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Position, &c.SourceURL, &c.Content, &c.ContentHash, &blob, &createdAt); err != nil {
			return nil, err
		}
		if c.Embedding, err = decodeEmbedding(blob); err != nil {
			return nil, docchat.Errorf(docchat.EINDEX, "chunk %d: %v", c.Position, err)
		}
		if c.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}
		chunks = append(chunks, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return chunks, nil
}

// FindIndexMeta implements docchat.ChunkService.
func (s *ChunkService) FindIndexMeta(ctx context.Context) (*docchat.IndexMeta, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM index_meta")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, docchat.Errorf(docchat.ENOTFOUND, "index has not been built")
	}

	return parseMeta(values)
}

func parseMeta(values map[string]string) (*docchat.IndexMeta, error) {
	meta := &docchat.IndexMeta{
		Provider:       docchat.Provider(values[metaProvider]),
		EmbeddingModel: values[metaEmbeddingModel],
		SourceURL:      values[metaSourceURL],
	}

	var err error
	if meta.Dimensions, err = strconv.Atoi(values[metaDimensions]); err != nil {
		return nil, docchat.Errorf(docchat.EINDEX, "invalid index dimensions %q", values[metaDimensions])
	}
	if meta.Chunks, err = strconv.Atoi(values[metaChunks]); err != nil {
		return nil, docchat.Errorf(docchat.EINDEX, "invalid index chunk count %q", values[metaChunks])
	}
	if meta.BuiltAt, err = parseRFC3339(values[metaBuiltAt], "built_at"); err != nil {
		return nil, docchat.Errorf(docchat.EINDEX, "%v", err)
	}
	return meta, nil
}
