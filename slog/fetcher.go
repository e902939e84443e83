// Package slog provides log/slog decorators for docchat capabilities and
// conversation machine hooks that log node transitions.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docchat"
)

var _ docchat.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging.
type LoggingFetcher struct {
	next   docchat.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next docchat.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		f.logger.Info("fetch",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

var _ docchat.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor, logging the detected documentation
// framework with each extraction.
type LoggingExtractor struct {
	next     docchat.Extractor
	detector docchat.FrameworkDetector
	logger   *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor. detector may be nil.
func NewLoggingExtractor(next docchat.Extractor, detector docchat.FrameworkDetector, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, detector: detector, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the result size.
func (e *LoggingExtractor) Extract(html string) (result *docchat.ExtractResult, err error) {
	framework := "(unknown)"
	if e.detector != nil {
		if fw := e.detector.Detect(html); fw != docchat.FrameworkUnknown {
			framework = string(fw)
		}
	}
	defer func(begin time.Time) {
		var title string
		var size int
		if result != nil {
			title, size = result.Title, len(result.ContentHTML)
		}
		e.logger.Info("extract",
			"framework", framework,
			"title", title,
			"bytes", size,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html)
}
