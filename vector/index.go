// Package vector provides an in-memory flat similarity index over chunk
// embeddings and a Retriever that queries it.
package vector

import (
	"context"
	"math"
	"sort"

	"github.com/fwojciec/docchat"
	"gonum.org/v1/gonum/floats"
)

// loadPageSize is the number of chunks read per FindChunks call.
const loadPageSize = 500

// Match is one search hit.
type Match struct {
	Position int
	Content  string
	Score    float64
}

// Index is a brute-force cosine index. Vectors are normalised on insert so
// a search is a dot product per entry.
type Index struct {
	dims     int
	vectors  [][]float64
	contents []string
}

// NewIndex returns an empty index for vectors of dims dimensions.
func NewIndex(dims int) *Index {
	return &Index{dims: dims}
}

// Dimensions returns the vector dimension of the index.
func (x *Index) Dimensions() int { return x.dims }

// Len returns the number of entries.
func (x *Index) Len() int { return len(x.vectors) }

// Add appends content with its embedding. Positions follow insertion order.
func (x *Index) Add(content string, embedding []float32) error {
	if len(embedding) != x.dims {
		return docchat.Errorf(docchat.EINDEX, "embedding has %d dimensions, index has %d", len(embedding), x.dims)
	}
	x.vectors = append(x.vectors, normalize(embedding))
	x.contents = append(x.contents, content)
	return nil
}

// Search returns the k entries most similar to query, best first. Equal
// scores keep insertion order.
func (x *Index) Search(query []float32, k int) ([]Match, error) {
	if len(query) != x.dims {
		return nil, docchat.Errorf(docchat.EINDEX, "query has %d dimensions, index has %d", len(query), x.dims)
	}
	if k <= 0 {
		return nil, nil
	}

	q := normalize(query)
	matches := make([]Match, len(x.vectors))
	for i, v := range x.vectors {
		matches[i] = Match{Position: i, Content: x.contents[i], Score: floats.Dot(q, v)}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if k < len(matches) {
		matches = matches[:k]
	}
	return matches, nil
}

func normalize(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	if n := floats.Norm(out, 2); n > 0 && !math.IsInf(n, 0) {
		floats.Scale(1/n, out)
	}
	return out
}

// Load reads every chunk from the store into a new index. It fails with
// EINDEX if the store is empty or a chunk does not match meta.Dimensions.
func Load(ctx context.Context, chunks docchat.ChunkService, meta *docchat.IndexMeta) (*Index, error) {
	idx := NewIndex(meta.Dimensions)
	for offset := 0; ; offset += loadPageSize {
		page, err := chunks.FindChunks(ctx, docchat.ChunkFilter{Offset: offset, Limit: loadPageSize})
		if err != nil {
			return nil, err
		}
		for _, c := range page {
			if err := idx.Add(c.Content, c.Embedding); err != nil {
				return nil, docchat.Errorf(docchat.EINDEX, "chunk %d: %s", c.Position, docchat.ErrorMessage(err))
			}
		}
		if len(page) < loadPageSize {
			break
		}
	}
	if idx.Len() == 0 {
		return nil, docchat.Errorf(docchat.EINDEX, "index contains no chunks")
	}
	return idx, nil
}
