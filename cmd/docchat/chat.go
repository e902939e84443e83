package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fwojciec/docchat"
	"github.com/fwojciec/docchat/conversation"
	"github.com/fwojciec/docchat/glamour"
	docprom "github.com/fwojciec/docchat/prometheus"
	docslog "github.com/fwojciec/docchat/slog"
	"github.com/fwojciec/docchat/sqlite"
	"github.com/fwojciec/docchat/vector"
	"golang.org/x/term"
)

// Run executes the chat command. Startup failures end the program before
// the first prompt is shown.
func (c *ChatCmd) Run(deps *Dependencies, cli *CLI) error {
	ctx := deps.Ctx

	if c.MaxHistory < 0 {
		return fail(deps, docchat.Errorf(docchat.EINVALID, "--max-history must not be negative, got %d", c.MaxHistory))
	}

	prompts, err := LoadPrompts(c.Prompts)
	if err != nil {
		return fail(deps, err)
	}

	clients, err := deps.NewProvider(ctx, deps.Provider)
	if err != nil {
		return fail(deps, err)
	}

	db, err := sqlite.OpenIndex(cli.Index)
	if err != nil {
		return fail(deps, err)
	}
	defer db.Close()

	retriever, err := loadRetriever(ctx, db, clients.Embedder, deps.Provider, c.TopK)
	if err != nil {
		return fail(deps, err)
	}

	agent := &conversation.Agent{
		Model:     clients.Model,
		Retriever: retriever,
		Prompts:   prompts,
		Logger:    deps.Logger,
	}
	metrics := docprom.NewMetrics()
	opts := []conversation.Option{conversation.WithHooks(metrics.Hooks())}
	if cli.Debug {
		agent.Model = docslog.NewLoggingModel(agent.Model, deps.Logger)
		agent.Retriever = docslog.NewLoggingRetriever(agent.Retriever, deps.Logger)
		opts = append(opts, conversation.WithHooks(docslog.NewHooks(deps.Logger)))
	}
	machine, err := agent.Compile(opts...)
	if err != nil {
		return fail(deps, err)
	}

	session := conversation.NewSession(machine)
	session.MaxHistory = c.MaxHistory
	session.Logger = deps.Logger
	if !c.Plain && isTerminal(deps.Stdout) {
		if r, err := glamour.NewRenderer(); err != nil {
			deps.Logger.Warn("markdown rendering disabled", "err", err)
		} else {
			session.Renderer = r
		}
	}

	runErr := session.Run(ctx, deps.Stdin, deps.Stdout)

	if c.MetricsFile != "" {
		if err := metrics.WriteFile(c.MetricsFile); err != nil {
			deps.Logger.Warn("failed to write metrics", "path", c.MetricsFile, "err", err)
		}
	}

	switch {
	case runErr == nil:
		return nil
	case errors.Is(runErr, context.Canceled):
		fmt.Fprintf(deps.Stdout, "\n%s%s\n", conversation.AgentLabel, conversation.Farewell)
		return nil
	}
	return fail(deps, runErr)
}

// loadRetriever checks the index against the active embedder and loads it
// into memory.
func loadRetriever(ctx context.Context, db *sqlite.DB, embedder docchat.Embedder, cfg ProviderConfig, topK int) (*vector.Retriever, error) {
	chunks := sqlite.NewChunkService(db)
	meta, err := chunks.FindIndexMeta(ctx)
	if err != nil {
		if docchat.ErrorCode(err) == docchat.ENOTFOUND {
			return nil, docchat.Errorf(docchat.EINDEX, "index %s is empty, run 'docchat ingest' first", db.Path())
		}
		return nil, err
	}
	if err := CheckIndex(meta, cfg); err != nil {
		return nil, err
	}

	idx, err := vector.Load(ctx, chunks, meta)
	if err != nil {
		return nil, err
	}
	return vector.NewRetriever(embedder, idx, topK, vector.DefaultCacheSize)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
