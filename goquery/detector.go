// Package goquery extracts the main content of documentation pages with
// goquery, using framework-specific content regions when the site
// generator can be recognised.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docchat"
)

var _ docchat.FrameworkDetector = (*Detector)(nil)

// marker lists the selectors that identify a framework. Order matters:
// VitePress is checked before VuePress.
type marker struct {
	framework docchat.Framework
	selectors []string
}

var markers = []marker{
	{docchat.FrameworkDocusaurus, []string{"#__docusaurus_skipToContent_fallback", ".theme-doc-sidebar-container", "[data-rh][data-theme]"}},
	{docchat.FrameworkMkDocs, []string{"[data-md-color-scheme]", "[data-md-component]", ".md-nav--primary"}},
	{docchat.FrameworkSphinx, []string{".toctree-wrapper", ".wy-nav-side", ".wy-menu-vertical", ".sphinxsidebar"}},
	{docchat.FrameworkVitePress, []string{"#VPContent", ".VPDoc", ".VPDocAsideOutline"}},
	{docchat.FrameworkVuePress, []string{".theme-default-content", ".sidebar-links", ".vuepress-navbar"}},
	{docchat.FrameworkGitBook, []string{"[data-testid='space.sidebar']", "[data-testid='page.desktopTableOfContents']"}},
	{docchat.FrameworkNextra, []string{".nextra-navbar", ".nextra-sidebar", ".nextra-toc"}},
}

// generators maps meta generator substrings to frameworks.
var generators = []struct {
	substr    string
	framework docchat.Framework
}{
	{"sphinx", docchat.FrameworkSphinx},
	{"gitbook", docchat.FrameworkGitBook},
	{"docusaurus", docchat.FrameworkDocusaurus},
	{"mkdocs", docchat.FrameworkMkDocs},
	{"vitepress", docchat.FrameworkVitePress},
	{"vuepress", docchat.FrameworkVuePress},
	{"nextra", docchat.FrameworkNextra},
}

// Detector identifies documentation frameworks from HTML content using
// meta generator tags, framework-specific classes and data attributes.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect implements docchat.FrameworkDetector.
func (d *Detector) Detect(html string) docchat.Framework {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return docchat.FrameworkUnknown
	}
	return d.detect(doc)
}

func (d *Detector) detect(doc *goquery.Document) docchat.Framework {
	// The generator tag is the most reliable signal when present.
	if generator, ok := doc.Find("meta[name='generator']").Last().Attr("content"); ok {
		generator = strings.ToLower(generator)
		for _, g := range generators {
			if strings.Contains(generator, g.substr) {
				return g.framework
			}
		}
	}

	for _, m := range markers {
		for _, sel := range m.selectors {
			if doc.Find(sel).Length() > 0 {
				return m.framework
			}
		}
	}

	if hasGitBookClasses(doc) {
		return docchat.FrameworkGitBook
	}
	return docchat.FrameworkUnknown
}

// hasGitBookClasses reports whether the html element carries at least two
// of GitBook's theme classes.
func hasGitBookClasses(doc *goquery.Document) bool {
	class, _ := doc.Find("html").Attr("class")
	count := 0
	for _, c := range []string{"circular-corners", "theme-clean", "tint"} {
		if strings.Contains(class, c) {
			count++
		}
	}
	return count >= 2
}
