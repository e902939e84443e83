package docchat

import "context"

// Fetcher retrieves HTML from a documentation URL.
type Fetcher interface {
	// Fetch returns the page HTML. Browser-backed implementations wait
	// for JavaScript to render first.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}
