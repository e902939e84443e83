// Package trafilatura provides a boilerplate-removing docchat.Extractor
// backed by go-trafilatura.
package trafilatura

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fwojciec/docchat"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ docchat.Extractor = (*Extractor)(nil)

// Extractor extracts the main article body, dropping comment sections.
type Extractor struct {
	// Fallback enables the readability and dom-distiller fallback
	// extractors when the main heuristics find too little text.
	Fallback bool
}

// NewExtractor returns an Extractor with fallbacks enabled.
func NewExtractor() *Extractor {
	return &Extractor{Fallback: true}
}

// Extract implements docchat.Extractor. A page without any recognisable
// main content is EINVALID.
func (e *Extractor) Extract(rawHTML string) (*docchat.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docchat.Errorf(docchat.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback:  e.Fallback,
		ExcludeComments: true,
	})
	if err != nil {
		return nil, docchat.Errorf(docchat.EINVALID, "extract main content: %v", err)
	}
	if result.ContentNode == nil {
		return nil, docchat.Errorf(docchat.EINVALID, "no main content found")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, result.ContentNode); err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}

	return &docchat.ExtractResult{
		Title:       strings.TrimSpace(result.Metadata.Title),
		ContentHTML: buf.String(),
	}, nil
}
