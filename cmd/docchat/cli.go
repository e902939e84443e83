package main

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/fwojciec/docchat/gemini"
	"github.com/fwojciec/docchat/ingest"
	"github.com/fwojciec/docchat/openai"
	"github.com/fwojciec/docchat/textsplit"
	"github.com/fwojciec/docchat/vector"
)

// DefaultURL is the page ingested when none is given.
const DefaultURL = "https://python.langchain.com/v0.1/docs/get_started/introduction/"

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Provider    ProviderConfig
	NewProvider ProviderFactory
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Provider    string  `help:"AI provider (gemini, openai)" default:"gemini" env:"DOCCHAT_PROVIDER"`
	Index       string  `help:"Path to the similarity index" default:"data_store/index.db" env:"DOCCHAT_INDEX"`
	Temperature float64 `help:"Generation temperature" default:"0"`
	Dimensions  int     `help:"Embedding dimensions, 0 for the model default" default:"0"`
	Debug       bool    `help:"Log every model, retrieval and node call"`

	GeminiChatModel      string `name:"gemini-chat-model" help:"Gemini chat model" default:"${gemini_chat_model}"`
	GeminiEmbeddingModel string `name:"gemini-embedding-model" help:"Gemini embedding model" default:"${gemini_embedding_model}"`
	OpenAIChatModel      string `name:"openai-chat-model" help:"OpenAI chat model" default:"${openai_chat_model}"`
	OpenAIEmbeddingModel string `name:"openai-embedding-model" help:"OpenAI embedding model" default:"${openai_embedding_model}"`

	Chat   ChatCmd   `cmd:"" default:"withargs" help:"Start an interactive conversation (default)"`
	Ingest IngestCmd `cmd:"" help:"Build the similarity index from a documentation page"`
	Graph  GraphCmd  `cmd:"" help:"Print the conversation graph as a Mermaid diagram"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	Prompts     string `help:"YAML file with prompt templates (default: built in)" type:"existingfile"`
	TopK        int    `name:"top-k" help:"Passages retrieved per question" default:"${top_k}"`
	MaxHistory  int    `help:"Keep at most this many history lines, rounded up to whole turns, 0 for unlimited" default:"0"`
	MetricsFile string `help:"Write node metrics to this file on exit"`
	Plain       bool   `help:"Print answers without Markdown rendering"`
}

// IngestCmd is the "ingest" subcommand.
type IngestCmd struct {
	URL          string        `arg:"" optional:"" help:"Documentation page URL" default:"${default_url}"`
	Extractor    string        `help:"Main content extractor" enum:"goquery,trafilatura,readability" default:"goquery"`
	Browser      bool          `help:"Render the page in headless Chrome"`
	Timeout      time.Duration `help:"Fetch timeout" default:"30s"`
	ChunkSize    int           `help:"Maximum segment length in characters" default:"${chunk_size}"`
	ChunkOverlap int           `help:"Characters shared by consecutive segments" default:"${chunk_overlap}"`
	BatchSize    int           `help:"Segments per embedding request" default:"${batch_size}"`
	Concurrency  int           `short:"c" help:"Concurrent embedding requests" default:"${concurrency}"`
	RPS          float64       `name:"rps" help:"Embedding requests per second, 0 for unlimited" default:"0"`
	CountTokens  bool          `help:"Report the token count of the page (Gemini only)" default:"true" negatable:""`
}

// GraphCmd is the "graph" subcommand.
type GraphCmd struct{}

// Vars returns the interpolation variables for CLI defaults.
func Vars() map[string]string {
	return map[string]string{
		"default_url":            DefaultURL,
		"gemini_chat_model":      gemini.DefaultChatModel,
		"gemini_embedding_model": gemini.DefaultEmbeddingModel,
		"openai_chat_model":      openai.DefaultChatModel,
		"openai_embedding_model": openai.DefaultEmbeddingModel,
		"top_k":                  strconv.Itoa(vector.DefaultTopK),
		"chunk_size":             strconv.Itoa(textsplit.DefaultChunkSize),
		"chunk_overlap":          strconv.Itoa(textsplit.DefaultChunkOverlap),
		"batch_size":             strconv.Itoa(ingest.DefaultBatchSize),
		"concurrency":            strconv.Itoa(ingest.DefaultConcurrency),
	}
}
