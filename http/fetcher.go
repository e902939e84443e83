// Package http provides a docchat.Fetcher for static documentation pages
// that need no JavaScript rendering.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/docchat"
)

// Fetch defaults.
const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultUserAgent    = "docchat/1.0 (+https://github.com/fwojciec/docchat)"
)

var _ docchat.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page HTML with plain GET requests.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for a whole request, body included.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithMaxBodyBytes caps the response size. Larger pages are EINVALID.
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBodyBytes = n }
}

// NewFetcher returns a Fetcher with its own http.Client.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    DefaultUserAgent,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch implements docchat.Fetcher. 404 and 410 responses are ENOTFOUND
// and other 4xx responses EINVALID, so callers know not to retry them.
// Server errors and 429 are returned as plain errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", docchat.Errorf(docchat.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch code := resp.StatusCode; {
	case code == http.StatusNotFound || code == http.StatusGone:
		return "", docchat.Errorf(docchat.ENOTFOUND, "HTTP %d for %s", code, url)
	case code == http.StatusTooManyRequests || code >= 500:
		return "", fmt.Errorf("HTTP %d for %s", code, url)
	case code >= 400:
		return "", docchat.Errorf(docchat.EINVALID, "HTTP %d for %s", code, url)
	case code < 200 || code >= 300:
		return "", fmt.Errorf("unexpected HTTP %d for %s", code, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return "", docchat.Errorf(docchat.EINVALID, "page %s exceeds %d bytes", url, f.maxBodyBytes)
	}
	return string(body), nil
}

// Close is a no-op; http.Client needs no cleanup.
func (f *Fetcher) Close() error {
	return nil
}
