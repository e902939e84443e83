package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docchat"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()
	err := m.Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// EnvFile is loaded into the environment before flags are parsed.
	// Missing files are ignored. Empty disables loading.
	EnvFile string

	// Getenv looks up API keys.
	Getenv func(string) string

	// NewProvider builds the AI clients for a provider configuration.
	NewProvider ProviderFactory
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		EnvFile:     ".env",
		Getenv:      os.Getenv,
		NewProvider: NewProvider,
	}
}

// Run executes the CLI with the given arguments. Errors have already been
// reported on stderr when Run returns them.
func (m *Main) Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if m.EnvFile != "" {
		if err := godotenv.Load(m.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(stderr, "error: load %s: %v\n", m.EnvFile, err)
			return err
		}
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docchat"),
		kong.Description("Chat with a documentation page from the terminal."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars(Vars()),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 1 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	provider, err := docchat.ParseProvider(cli.Provider)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", docchat.ErrorMessage(err))
		return err
	}

	deps := &Dependencies{
		Ctx:         ctx,
		Stdin:       stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		Logger:      newLogger(stderr, cli.Debug),
		Provider:    cli.providerConfig(provider, m.Getenv),
		NewProvider: m.NewProvider,
	}
	return kongCtx.Run(deps, cli)
}

// newLogger returns a text logger on w with "error" keys renamed to "err".
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// fail reports err on stderr the way every command does and returns it.
func fail(deps *Dependencies, err error) error {
	fmt.Fprintf(deps.Stderr, "error: %s\n", docchat.ErrorMessage(err))
	return err
}
