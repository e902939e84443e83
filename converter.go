package docchat

// Converter converts extracted HTML into Markdown text for splitting.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}
