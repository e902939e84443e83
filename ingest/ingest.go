// Package ingest builds the similarity index from a documentation page:
// fetch, extract, convert, split, embed, persist.
package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/bloom"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Defaults for Ingester.
const (
	DefaultBatchSize   = 64
	DefaultConcurrency = 4
)

// Ingester runs the one-shot ingestion pipeline. TokenCounter is optional.
type Ingester struct {
	Fetcher      docchat.Fetcher
	Extractor    docchat.Extractor
	Converter    docchat.Converter
	Chunker      docchat.Chunker
	Embedder     docchat.Embedder
	Chunks       docchat.ChunkService
	TokenCounter docchat.TokenCounter

	// Provider and EmbeddingModel are recorded in the index metadata.
	Provider       docchat.Provider
	EmbeddingModel string

	BatchSize   int
	Concurrency int

	// RequestsPerSecond limits embedding calls. Zero means unlimited.
	RequestsPerSecond float64

	// RetryDelays defaults to DefaultRetryDelays when nil.
	RetryDelays []time.Duration
}

// Result summarises an ingestion run.
type Result struct {
	Title      string
	Bytes      int
	Segments   int
	Duplicates int
	Tokens     int
	Dimensions int
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressFetched ProgressType = iota
	ProgressRetrying
	ProgressSplit
	ProgressEmbedded
	ProgressStored
)

// ProgressEvent reports progress during ingestion. Completed and Total
// count segments for ProgressSplit, ProgressEmbedded and ProgressStored.
type ProgressEvent struct {
	Type      ProgressType
	URL       string
	Attempt   int
	Completed int
	Total     int
	Error     error
}

// ProgressFunc is a callback for reporting ingestion progress.
type ProgressFunc func(event ProgressEvent)

// Ingest replaces the index with the contents of the page at url.
// A page whose extracted text is empty is EINVALID and leaves the
// existing index untouched.
func (in *Ingester) Ingest(ctx context.Context, url string, progress ProgressFunc) (*Result, error) {
	if progress == nil {
		progress = func(ProgressEvent) {}
	}

	delays := in.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, in.Fetcher, url, delays, func(attempt int, err error) {
		progress(ProgressEvent{Type: ProgressRetrying, URL: url, Attempt: attempt, Error: err})
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	progress(ProgressEvent{Type: ProgressFetched, URL: url})

	title, text, err := in.extractText(html)
	if err != nil {
		return nil, err
	}

	segments, err := in.Chunker.Split(text)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", url, err)
	}
	unique := bloom.Dedupe(segments)
	if len(unique) == 0 {
		return nil, docchat.Errorf(docchat.EINVALID, "page produced no segments")
	}
	result := &Result{
		Title:      title,
		Bytes:      len(text),
		Segments:   len(unique),
		Duplicates: len(segments) - len(unique),
	}
	progress(ProgressEvent{Type: ProgressSplit, URL: url, Completed: len(unique), Total: len(unique)})

	if in.TokenCounter != nil {
		if result.Tokens, err = in.TokenCounter.CountTokens(ctx, text); err != nil {
			return nil, fmt.Errorf("count tokens: %w", err)
		}
	}

	vectors, err := in.embed(ctx, unique, func(done int) {
		progress(ProgressEvent{Type: ProgressEmbedded, URL: url, Completed: done, Total: len(unique)})
	})
	if err != nil {
		return nil, err
	}

	chunks := make([]*docchat.Chunk, len(unique))
	for i, s := range unique {
		chunks[i] = &docchat.Chunk{SourceURL: url, Content: s, Embedding: vectors[i]}
	}
	result.Dimensions = len(vectors[0])

	meta := &docchat.IndexMeta{
		Provider:       in.Provider,
		EmbeddingModel: in.EmbeddingModel,
		Dimensions:     result.Dimensions,
		SourceURL:      url,
	}
	if err := in.Chunks.ReplaceIndex(ctx, meta, chunks); err != nil {
		return nil, fmt.Errorf("store index: %w", err)
	}
	progress(ProgressEvent{Type: ProgressStored, URL: url, Completed: len(chunks), Total: len(chunks)})

	return result, nil
}

// extractText returns the page title and its cleaned main text.
func (in *Ingester) extractText(html string) (string, string, error) {
	extracted, err := in.Extractor.Extract(html)
	if err != nil {
		return "", "", fmt.Errorf("extract: %w", err)
	}

	if strings.TrimSpace(extracted.ContentHTML) == "" {
		return "", "", docchat.Errorf(docchat.EINVALID, "page has no extractable text")
	}
	text, err := in.Converter.Convert(extracted.ContentHTML)
	if err != nil {
		return "", "", fmt.Errorf("convert: %w", err)
	}

	text = CleanText(text)
	if text == "" {
		return "", "", docchat.Errorf(docchat.EINVALID, "page has no extractable text")
	}
	return extracted.Title, text, nil
}

// embed embeds segments in batches, running up to Concurrency batches at
// once. Vectors come back in segment order. onBatch calls are serialised.
func (in *Ingester) embed(ctx context.Context, segments []string, onBatch func(done int)) ([][]float32, error) {
	batchSize := in.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	concurrency := in.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	limit := rate.Inf
	if in.RequestsPerSecond > 0 {
		limit = rate.Limit(in.RequestsPerSecond)
	}
	limiter := rate.NewLimiter(limit, 1)

	vectors := make([][]float32, len(segments))
	var mu sync.Mutex
	done := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for start := 0; start < len(segments); start += batchSize {
		end := min(start+batchSize, len(segments))
		g.Go(func() error {
			if err := limiter.Wait(gctx); err != nil {
				return err
			}
			batch, err := in.Embedder.EmbedDocuments(gctx, segments[start:end])
			if err != nil {
				return fmt.Errorf("embed segments %d-%d: %w", start, end-1, err)
			}
			if len(batch) != end-start {
				return docchat.Errorf(docchat.EPROVIDER, "embedder returned %d vectors for %d segments", len(batch), end-start)
			}
			copy(vectors[start:end], batch)

			mu.Lock()
			defer mu.Unlock()
			done += end - start
			onBatch(done)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
