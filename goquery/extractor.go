package goquery

import (
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docchat"
)

var _ docchat.Extractor = (*Extractor)(nil)

// contentSelectors lists the main content regions of each framework, most
// specific first.
var contentSelectors = map[docchat.Framework][]string{
	docchat.FrameworkDocusaurus: {".theme-doc-markdown", "article"},
	docchat.FrameworkMkDocs:     {".md-content__inner", ".md-content"},
	docchat.FrameworkSphinx:     {"[role='main']", ".document .body", ".rst-content"},
	docchat.FrameworkVitePress:  {".vp-doc", ".VPDoc"},
	docchat.FrameworkVuePress:   {".theme-default-content"},
	docchat.FrameworkGitBook:    {"main"},
	docchat.FrameworkNextra:     {"article", "main"},
}

// fallbackSelectors are tried when no framework region matches.
var fallbackSelectors = []string{"article", "body"}

// removeSelectors are stripped from the content before it is returned.
const removeSelectors = "script, style, noscript, template, nav, .theme-doc-toc-mobile, .pagination-nav, .theme-edit-this-page"

// Extractor returns the main content region of a documentation page.
type Extractor struct {
	detector *Detector
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{detector: NewDetector()}
}

// Extract implements docchat.Extractor. The content region is the first
// match among the detected framework's selectors, then article, then
// body. Returns EINVALID if the page has no content region.
func (e *Extractor) Extract(html string) (*docchat.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, docchat.Errorf(docchat.EINVALID, "failed to parse HTML: %v", err)
	}

	selectors := slices.Concat(contentSelectors[e.detector.detect(doc)], fallbackSelectors)
	var content *goquery.Selection
	for _, sel := range selectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			content = s
			break
		}
	}
	if content == nil {
		return nil, docchat.Errorf(docchat.EINVALID, "page has no content")
	}

	content.Find(removeSelectors).Remove()
	contentHTML, err := content.Html()
	if err != nil {
		return nil, docchat.Errorf(docchat.EINVALID, "failed to render content: %v", err)
	}

	return &docchat.ExtractResult{
		Title:       title(doc, content),
		ContentHTML: strings.TrimSpace(contentHTML),
	}, nil
}

func title(doc *goquery.Document, content *goquery.Selection) string {
	if h1 := strings.TrimSpace(content.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
