package gemini

import (
	"context"

	"github.com/fwojciec/docchat"
	"google.golang.org/genai"
)

// Task types sent with embedding requests.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// maxBatch is the largest number of texts sent in one embedding request.
const maxBatch = 100

var _ docchat.Embedder = (*Embedder)(nil)

// Embedder implements docchat.Embedder using the Gemini embedding API.
type Embedder struct {
	client *genai.Client
	model  string

	// Dimensions truncates vectors to this size when positive.
	Dimensions int
}

// NewEmbedder creates a new Embedder for the named model.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	return &Embedder{client: client, model: model}
}

// EmbedDocuments implements docchat.Embedder.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))
		vecs, err := e.embed(ctx, texts[start:end], TaskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// EmbedQuery implements docchat.Embedder.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.embed(ctx, []string{text}, TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *Embedder) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	result, err := e.client.Models.EmbedContent(ctx, e.model, BuildEmbedContents(texts), BuildEmbedConfig(task, e.Dimensions))
	if err != nil {
		return nil, docchat.Errorf(docchat.EPROVIDER, "gemini embed: %v", err)
	}
	if result == nil || len(result.Embeddings) != len(texts) {
		return nil, docchat.Errorf(docchat.EPROVIDER, "gemini returned %d embeddings for %d texts", embeddingCount(result), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for i, emb := range result.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, docchat.Errorf(docchat.EPROVIDER, "gemini returned an empty embedding at %d", i)
		}
		vecs[i] = emb.Values
	}
	return vecs, nil
}

func embeddingCount(r *genai.EmbedContentResponse) int {
	if r == nil {
		return 0
	}
	return len(r.Embeddings)
}

// BuildEmbedContents wraps each text in its own content.
func BuildEmbedContents(texts []string) []*genai.Content {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}
	return contents
}

// BuildEmbedConfig returns the embedding request config for a task type.
func BuildEmbedConfig(task string, dims int) *genai.EmbedContentConfig {
	config := &genai.EmbedContentConfig{TaskType: task}
	if dims > 0 {
		d := int32(dims)
		config.OutputDimensionality = &d
	}
	return config
}
