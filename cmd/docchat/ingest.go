package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/goquery"
	"github.com/fwojciec/docchat/htmltomarkdown"
	dochttp "github.com/fwojciec/docchat/http"
	"github.com/fwojciec/docchat/ingest"
	"github.com/fwojciec/docchat/readability"
	"github.com/fwojciec/docchat/rod"
	docslog "github.com/fwojciec/docchat/slog"
	"github.com/fwojciec/docchat/sqlite"
	"github.com/fwojciec/docchat/textsplit"
	"github.com/fwojciec/docchat/trafilatura"
)

// Run executes the ingest command. The existing index is replaced only
// once every segment has been embedded.
func (c *IngestCmd) Run(deps *Dependencies, cli *CLI) error {
	ctx := deps.Ctx

	u, err := url.Parse(c.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fail(deps, docchat.Errorf(docchat.EINVALID, "invalid URL %q", c.URL))
	}

	splitter, err := textsplit.NewSplitter(
		textsplit.WithChunkSize(c.ChunkSize),
		textsplit.WithChunkOverlap(c.ChunkOverlap),
	)
	if err != nil {
		return fail(deps, err)
	}

	cfg := deps.Provider
	cfg.CountTokens = c.CountTokens && cfg.Provider == docchat.ProviderGemini
	clients, err := deps.NewProvider(ctx, cfg)
	if err != nil {
		return fail(deps, err)
	}

	fetcher, err := c.newFetcher()
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed for --browser")
		return fail(deps, err)
	}
	defer fetcher.Close()

	extractor := c.newExtractor()
	embedder := clients.Embedder
	if cli.Debug {
		fetcher = docslog.NewLoggingFetcher(fetcher, deps.Logger)
		extractor = docslog.NewLoggingExtractor(extractor, goquery.NewDetector(), deps.Logger)
		embedder = docslog.NewLoggingEmbedder(embedder, deps.Logger)
	}

	if err := os.MkdirAll(filepath.Dir(cli.Index), 0o755); err != nil {
		return fail(deps, fmt.Errorf("create index directory: %w", err))
	}
	db := sqlite.NewDB(cli.Index)
	if err := db.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "Hint: Set DOCCHAT_INDEX to use a different index path\n")
		return fail(deps, docchat.Errorf(docchat.EINDEX, "open index %s: %v", cli.Index, err))
	}
	defer db.Close()

	ingester := &ingest.Ingester{
		Fetcher:           fetcher,
		Extractor:         extractor,
		Converter:         htmltomarkdown.NewConverter(htmltomarkdown.WithDomain(u.Scheme + "://" + u.Host)),
		Chunker:           splitter,
		Embedder:          embedder,
		Chunks:            sqlite.NewChunkService(db),
		Provider:          cfg.Provider,
		EmbeddingModel:    cfg.EmbeddingModel,
		BatchSize:         c.BatchSize,
		Concurrency:       c.Concurrency,
		RequestsPerSecond: c.RPS,
	}
	if clients.TokenCounter != nil {
		ingester.TokenCounter = clients.TokenCounter
	}

	fmt.Fprintf(deps.Stdout, "Ingesting %s with %s embeddings\n", c.URL, cfg.Provider)
	result, err := ingester.Ingest(ctx, c.URL, func(e ingest.ProgressEvent) {
		switch e.Type {
		case ingest.ProgressRetrying:
			fmt.Fprintf(deps.Stderr, "  retry %s (attempt %d): %v\n", e.URL, e.Attempt, e.Error)
		case ingest.ProgressFetched:
			fmt.Fprintln(deps.Stdout, "  Fetched page")
		case ingest.ProgressSplit:
			fmt.Fprintf(deps.Stdout, "  Split into %d segments\n", e.Total)
		case ingest.ProgressEmbedded:
			fmt.Fprintf(deps.Stdout, "  Embedded %d/%d\n", e.Completed, e.Total)
		}
	})
	if err != nil {
		return fail(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Index written to %s: %d segments, %d dimensions (%s", cli.Index, result.Segments, result.Dimensions, ingest.FormatBytes(result.Bytes))
	if ingester.TokenCounter != nil {
		fmt.Fprintf(deps.Stdout, ", %s", ingest.FormatTokens(result.Tokens))
	}
	fmt.Fprintln(deps.Stdout, ")")
	if result.Duplicates > 0 {
		fmt.Fprintf(deps.Stdout, "  Dropped %d duplicate segments\n", result.Duplicates)
	}
	return nil
}

func (c *IngestCmd) newFetcher() (docchat.Fetcher, error) {
	if c.Browser {
		f, err := rod.NewFetcher(rod.WithTimeout(c.Timeout))
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return dochttp.NewFetcher(dochttp.WithTimeout(c.Timeout)), nil
}

func (c *IngestCmd) newExtractor() docchat.Extractor {
	switch c.Extractor {
	case "trafilatura":
		return trafilatura.NewExtractor()
	case "readability":
		return readability.NewExtractor(c.URL)
	}
	return goquery.NewExtractor()
}
