package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/ingest"
	"github.com/fwojciec/docchat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failingFetcher(calls *int, err error) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(context.Context, string) (string, error) {
			*calls++
			return "", err
		},
	}
}

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	delays := []time.Duration{0, 0, 0}

	t.Run("makes one attempt per delay plus one", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetchErr := errors.New("timeout")

		_, err := ingest.FetchWithRetry(context.Background(), failingFetcher(&calls, fetchErr), "u", delays, nil)

		assert.ErrorIs(t, err, fetchErr)
		assert.Equal(t, 4, calls)
	})

	t.Run("does not retry permanent failures", func(t *testing.T) {
		t.Parallel()

		for _, code := range []string{docchat.EINVALID, docchat.ENOTFOUND} {
			calls := 0

			_, err := ingest.FetchWithRetry(context.Background(), failingFetcher(&calls, docchat.Errorf(code, "nope")), "u", delays, nil)

			assert.Equal(t, code, docchat.ErrorCode(err))
			assert.Equal(t, 1, calls)
		}
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				calls++
				cancel()
				return "", errors.New("timeout")
			},
		}

		_, err := ingest.FetchWithRetry(ctx, fetcher, "u", []time.Duration{time.Hour}, nil)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})

	t.Run("uses the documented default delays", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, ingest.DefaultRetryDelays())
	})

	t.Run("returns the page once a retry succeeds", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetcher := &mock.Fetcher{
			FetchFn: func(context.Context, string) (string, error) {
				calls++
				if calls == 1 {
					return "", errors.New("reset")
				}
				return "<html/>", nil
			},
		}

		html, err := ingest.FetchWithRetry(context.Background(), fetcher, "u", delays, nil)

		require.NoError(t, err)
		assert.Equal(t, "<html/>", html)
	})
}
