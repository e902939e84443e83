package openai

import (
	"context"

	"github.com/fwojciec/docchat"
	"github.com/openai/openai-go"
)

var _ docchat.Embedder = (*Embedder)(nil)

// Embedder implements docchat.Embedder using the OpenAI embeddings API.
type Embedder struct {
	client *openai.Client
	model  string

	// Dimensions shortens vectors to this size when positive.
	Dimensions int
}

// NewEmbedder creates a new Embedder for the named model.
func NewEmbedder(client *openai.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

// EmbedDocuments implements docchat.Embedder.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return e.embed(ctx, texts)
}

// EmbedQuery implements docchat.Embedder.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},

		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if e.Dimensions > 0 {
		params.Dimensions = openai.Int(int64(e.Dimensions))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, docchat.Errorf(docchat.EPROVIDER, "openai embeddings: %v", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, docchat.Errorf(docchat.EPROVIDER, "openai returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	// Data carries its input index and is not guaranteed to be ordered.
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(vecs) || vecs[d.Index] != nil {
			return nil, docchat.Errorf(docchat.EPROVIDER, "openai returned invalid embedding index %d", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		vecs[d.Index] = vec
	}
	return vecs, nil
}
