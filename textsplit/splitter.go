// Package textsplit splits cleaned documentation text into overlapping
// segments for embedding.
package textsplit

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/docchat"
	"github.com/tmc/langchaingo/textsplitter"
)

// Defaults for NewSplitter.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// DefaultSeparators are tried in order: paragraphs, lines, words, runes.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

var _ docchat.Chunker = (*Splitter)(nil)

// Splitter is a recursive character splitter measuring length in runes.
// Text is split on the first separator that occurs in it, keeping the
// separator at the start of the following piece; pieces still too long are
// split again with the remaining separators. Pieces are then merged back
// into segments of at most ChunkSize runes, consecutive segments sharing up
// to ChunkOverlap runes.
type Splitter struct {
	chunkSize    int
	chunkOverlap int
	separators   []string

	splitter textsplitter.RecursiveCharacter
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithChunkSize sets the maximum segment length in runes.
func WithChunkSize(n int) Option {
	return func(s *Splitter) { s.chunkSize = n }
}

// WithChunkOverlap sets the overlap between consecutive segments in runes.
func WithChunkOverlap(n int) Option {
	return func(s *Splitter) { s.chunkOverlap = n }
}

// WithSeparators replaces the separator list.
func WithSeparators(seps ...string) Option {
	return func(s *Splitter) { s.separators = seps }
}

// NewSplitter creates a Splitter. Returns EINVALID if the size is not
// positive or the overlap is not smaller than the size.
func NewSplitter(opts ...Option) (*Splitter, error) {
	s := &Splitter{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   DefaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.chunkSize <= 0 {
		return nil, docchat.Errorf(docchat.EINVALID, "chunk size must be positive, got %d", s.chunkSize)
	}
	if s.chunkOverlap < 0 || s.chunkOverlap >= s.chunkSize {
		return nil, docchat.Errorf(docchat.EINVALID, "chunk overlap %d must be in [0, %d)", s.chunkOverlap, s.chunkSize)
	}
	if len(s.separators) == 0 {
		return nil, docchat.Errorf(docchat.EINVALID, "at least one separator required")
	}

	s.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.chunkSize),
		textsplitter.WithChunkOverlap(s.chunkOverlap),
		textsplitter.WithSeparators(s.separators),
		textsplitter.WithLenFunc(utf8.RuneCountInString),
		textsplitter.WithKeepSeparator(true),
	)
	return s, nil
}

// Split implements docchat.Chunker. Blank segments are dropped.
func (s *Splitter) Split(text string) ([]string, error) {
	segments, err := s.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}
	out := segments[:0]
	for _, seg := range segments {
		if strings.TrimSpace(seg) != "" {
			out = append(out, seg)
		}
	}
	return out, nil
}
