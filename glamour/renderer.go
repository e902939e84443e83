// Package glamour renders Markdown answers for the terminal.
package glamour

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fwojciec/docchat"
)

// DefaultWordWrap is the column answers are wrapped at.
const DefaultWordWrap = 100

var _ docchat.Renderer = (*Renderer)(nil)

// Renderer styles Markdown with glamour.
type Renderer struct {
	r *glamour.TermRenderer
}

// Option configures a Renderer.
type Option func(*options)

type options struct {
	style    string
	wordWrap int
}

// WithStyle selects a named glamour style such as "dark", "light" or
// "notty". The default detects the terminal background.
func WithStyle(style string) Option {
	return func(o *options) { o.style = style }
}

// WithWordWrap sets the wrap column. Zero disables wrapping.
func WithWordWrap(n int) Option {
	return func(o *options) { o.wordWrap = n }
}

// NewRenderer returns a Renderer.
func NewRenderer(opts ...Option) (*Renderer, error) {
	o := options{wordWrap: DefaultWordWrap}
	for _, opt := range opts {
		opt(&o)
	}

	styleOpt := glamour.WithAutoStyle()
	if o.style != "" {
		styleOpt = glamour.WithStandardStyle(o.style)
	}
	r, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(o.wordWrap))
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}
	return &Renderer{r: r}, nil
}

// Render implements docchat.Renderer. Surrounding blank lines glamour adds
// are trimmed so the answer sits next to its prefix.
func (r *Renderer) Render(markdown string) (string, error) {
	out, err := r.r.Render(markdown)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n"), nil
}
