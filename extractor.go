package docchat

// ExtractResult holds the main content extracted from an HTML page.
type ExtractResult struct {
	// Title is the page title, if one could be found.
	Title string

	// ContentHTML is the main content as HTML with page chrome removed.
	ContentHTML string
}

// Extractor extracts the main content from an HTML page.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}
