package ingest_test

import (
	"testing"

	"github.com/fwojciec/docchat/ingest"
	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	t.Parallel()

	t.Run("drops blank and whitespace-only lines", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Intro\n  indented\nEnd", ingest.CleanText("\nIntro\n\n \t\n  indented\nEnd\n\n"))
	})

	t.Run("returns empty for blank text", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, ingest.CleanText(" \n\n"))
	})
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", ingest.FormatBytes(512))
	assert.Equal(t, "1.5 KB", ingest.FormatBytes(1536))
	assert.Equal(t, "2.0 MB", ingest.FormatBytes(2*1024*1024))
}

func TestFormatTokens(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "~999 tokens", ingest.FormatTokens(999))
	assert.Equal(t, "~2k tokens", ingest.FormatTokens(1500))
}
