// Package bloom drops repeated text segments using a Bloom filter.
package bloom

import (
	"encoding/binary"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"
)

// DefaultFalsePositiveRate is the false positive rate used by Dedupe.
const DefaultFalsePositiveRate = 1e-6

// Filter remembers segments by the xxhash of their trimmed text.
// A false positive drops a unique segment; size the filter accordingly.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected segments
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(max(n, 1), fpRate),
	}
}

// Seen records text and reports whether it had been recorded before.
func (f *Filter) Seen(text string) bool {
	return f.f.TestOrAdd(key(text))
}

// Test reports whether text might have been recorded.
func (f *Filter) Test(text string) bool {
	return f.f.Test(key(text))
}

// EstimatedCount returns the approximate number of segments recorded.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}

func key(text string) []byte {
	return binary.BigEndian.AppendUint64(nil, xxhash.Sum64String(strings.TrimSpace(text)))
}

// Dedupe returns segments without repeats, keeping first occurrences in
// order.
func Dedupe(segments []string) []string {
	f := NewFilter(uint(len(segments)), DefaultFalsePositiveRate)
	out := make([]string, 0, len(segments))
	for _, s := range segments {
		if !f.Seen(s) {
			out = append(out, s)
		}
	}
	return out
}
