package ingest

import (
	"context"
	"time"

	"github.com/fwojciec/docchat"
)

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// RetryFunc is called before each retry with the upcoming attempt number
// (starting at 2) and the error that triggered it.
type RetryFunc func(attempt int, err error)

// FetchWithRetry fetches url, retrying transient failures once per delay.
// EINVALID and ENOTFOUND errors are permanent and returned immediately.
func FetchWithRetry(ctx context.Context, fetcher docchat.Fetcher, url string, delays []time.Duration, onRetry RetryFunc) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		html, err := fetcher.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if !retryable(err) || attempt == len(delays) {
			break
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if onRetry != nil {
			onRetry(attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return "", lastErr
}

func retryable(err error) bool {
	switch docchat.ErrorCode(err) {
	case docchat.EINVALID, docchat.ENOTFOUND:
		return false
	}
	return true
}
