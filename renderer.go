package docchat

// Renderer formats a Markdown answer for display.
type Renderer interface {
	Render(markdown string) (string, error)
}
