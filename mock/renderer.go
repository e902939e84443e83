package mock

import "github.com/fwojciec/docchat"

var _ docchat.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of docchat.Renderer.
type Renderer struct {
	RenderFn func(markdown string) (string, error)
}

func (r *Renderer) Render(markdown string) (string, error) {
	return r.RenderFn(markdown)
}
