// Package readability provides a docchat.Extractor backed by go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/docchat"
	"github.com/go-shiori/go-readability"
)

var _ docchat.Extractor = (*Extractor)(nil)

// Extractor extracts the readable article from a page.
type Extractor struct {
	// PageURL resolves relative links in the extracted content. Optional.
	PageURL *url.URL
}

// NewExtractor returns an Extractor resolving links against pageURL. An
// empty or unparsable pageURL leaves links untouched.
func NewExtractor(pageURL string) *Extractor {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		u = nil
	}
	return &Extractor{PageURL: u}
}

// Extract implements docchat.Extractor. Pages readability cannot find an
// article in are EINVALID.
func (e *Extractor) Extract(rawHTML string) (*docchat.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, docchat.Errorf(docchat.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.PageURL)
	if err != nil {
		return nil, docchat.Errorf(docchat.EINVALID, "extract article: %v", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, docchat.Errorf(docchat.EINVALID, "no readable content found")
	}

	return &docchat.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
