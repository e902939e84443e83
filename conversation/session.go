package conversation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/fwojciec/docchat"
)

// Console labels.
const (
	InputPrompt = "You: "
	UserLabel   = "User: "
	AgentLabel  = "Agent: "

	Greeting = "Ask me anything about the documentation. Type 'exit' to quit."
	Farewell = "Goodbye!"
)

var exitKeywords = []string{"salir", "exit", "quit"}

// IsExit reports whether line is an exit keyword, ignoring case and
// surrounding space.
func IsExit(line string) bool {
	line = strings.ToLower(strings.TrimSpace(line))
	return slices.Contains(exitKeywords, line)
}

// Runner runs one turn over an initial state.
type Runner interface {
	Run(ctx context.Context, state docchat.ConversationState) (docchat.ConversationState, error)
}

// Session drives a Runner turn by turn and owns the conversation history.
type Session struct {
	Runner Runner

	// Renderer formats answers for display. Optional.
	Renderer docchat.Renderer

	// MaxHistory caps the history length by dropping the oldest user and
	// agent pair. Odd values are rounded up to keep whole pairs. Zero keeps
	// everything.
	MaxHistory int

	Logger *slog.Logger

	history []string
}

// NewSession returns a session with empty history.
func NewSession(r Runner) *Session {
	return &Session{Runner: r}
}

// History returns a copy of the history lines.
func (s *Session) History() []string {
	return slices.Clone(s.history)
}

// Turn answers one question and records it in the history. Nothing is
// recorded when the run fails.
func (s *Session) Turn(ctx context.Context, question string) (string, error) {
	state, err := s.Runner.Run(ctx, docchat.NewConversationState(question, s.history))
	if err != nil {
		return "", err
	}
	if !state.Has(docchat.FieldResponse) {
		return "", docchat.Errorf(docchat.EINTERNAL, "turn finished without a response")
	}

	s.history = append(s.history, UserLabel+question, AgentLabel+state.Response)
	if limit := s.MaxHistory + s.MaxHistory%2; s.MaxHistory > 0 && len(s.history) > limit {
		s.history = slices.Clone(s.history[len(s.history)-limit:])
	}
	return state.Response, nil
}

// Run reads questions from in and writes answers to out until an exit
// keyword, end of input or cancellation. Blank lines are ignored. A failed
// turn ends the session with its error.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- scanner.Err()
	}()

	fmt.Fprintln(out, Greeting)
	for {
		fmt.Fprintf(out, "\n%s", InputPrompt)

		var line string
		select {
		case <-ctx.Done():
			return ctx.Err()
		case l, ok := <-lines:
			if !ok {
				if err := <-errc; err != nil {
					return err
				}
				fmt.Fprintf(out, "\n%s%s\n", AgentLabel, Farewell)
				return nil
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if IsExit(line) {
			fmt.Fprintf(out, "%s%s\n", AgentLabel, Farewell)
			return nil
		}

		response, err := s.Turn(ctx, line)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s%s\n", AgentLabel, s.render(response))
	}
}

func (s *Session) render(response string) string {
	if s.Renderer == nil {
		return response
	}
	out, err := s.Renderer.Render(response)
	if err != nil {
		s.logger().Warn("render failed, printing raw answer", "err", err)
		return response
	}
	return out
}

func (s *Session) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
