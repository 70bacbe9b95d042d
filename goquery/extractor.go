// Package goquery implements serplens.Extractor using CSS-selector based
// HTML parsing. Extraction is deterministic: the same markup always yields
// the same ScrapedPage.
package goquery

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/serplens/serplens"
	"golang.org/x/net/publicsuffix"
)

// boilerplateSelector matches elements stripped before visible-text
// extraction: scripts, chrome, and common ad/sidebar containers.
const boilerplateSelector = "script, style, nav, footer, header, aside, .advertisement, .ad, .sidebar"

// contentSelectors are evaluated in order; the matching element with the
// longest trimmed text wins. The document body is the fallback.
var contentSelectors = []string{
	"main",
	"[role=\"main\"]",
	".main-content",
	".content",
	".post-content",
	".entry-content",
	"article",
	".article-content",
}

// lazySrcAttrs are consulted when an img has no src, in order.
var lazySrcAttrs = []string{"data-src", "data-lazy-src", "data-original"}

// iconClassRE identifies icon-font markup masquerading as italic text.
var iconClassRE = regexp.MustCompile(`\b(fa-|icon-|glyphicon|material-icons)\b`)

var whitespaceRE = regexp.MustCompile(`\s+`)

// Ensure Extractor implements serplens.Extractor at compile time.
var _ serplens.Extractor = (*Extractor)(nil)

// Extractor parses raw markup into structured page data.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML into a ScrapedPage. The source URL anchors
// internal/external link classification. The original markup is retained
// as FullContent before any boilerplate removal.
func (e *Extractor) Extract(html, sourceURL string) (*serplens.ScrapedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, serplens.Errorf(serplens.EINVALID, "failed to parse HTML: %v", err)
	}

	page := &serplens.ScrapedPage{
		FullContent:    html,
		Headings:       []serplens.Heading{},
		Images:         []serplens.Image{},
		StructuredData: []map[string]any{},
		StyledElements: serplens.StyledElements{
			Emphasis: []serplens.StyledText{},
			Strong:   []serplens.StyledText{},
			Italic:   []serplens.StyledText{},
		},
	}

	// Structured data comes from script tags, which boilerplate removal
	// would otherwise discard.
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, sel *goquery.Selection) {
		page.StructuredData = append(page.StructuredData, parseJSONLD(sel.Text())...)
	})

	doc.Find(boilerplateSelector).Remove()

	page.Title = cleanText(doc.Find("title").First().Text())
	if page.Title == "" {
		page.Title = cleanText(doc.Find("h1").First().Text())
	}

	page.MetaDescription, _ = doc.Find(`meta[name="description"]`).Attr("content")
	if page.MetaDescription == "" {
		page.MetaDescription, _ = doc.Find(`meta[property="og:description"]`).Attr("content")
	}

	var content string
	for _, selector := range contentSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		if text := strings.TrimSpace(sel.Text()); len(text) > len(content) {
			content = text
		}
	}
	if content == "" {
		content = strings.TrimSpace(doc.Find("body").Text())
	}
	page.Content = cleanText(content)
	page.WordCount = len(strings.Fields(page.Content))

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		name := goquery.NodeName(sel)
		if len(name) != 2 {
			return
		}
		level := int(name[1] - '0')
		if text := cleanText(sel.Text()); text != "" {
			page.Headings = append(page.Headings, serplens.Heading{Level: level, Text: text})
		}
	})

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		for _, attr := range lazySrcAttrs {
			if src != "" {
				break
			}
			src, _ = sel.Attr(attr)
		}
		if src == "" {
			return
		}
		alt, _ := sel.Attr("alt")
		page.Images = append(page.Images, serplens.Image{Src: src, Alt: alt})
	})

	pageDomain := registrableDomain(sourceURL)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || isNonHTTPLink(href) {
			return
		}
		if strings.HasPrefix(href, "http") {
			if registrableDomain(href) == pageDomain {
				page.Links.Internal++
			} else {
				page.Links.External++
			}
			return
		}
		// Relative and fragment-only links stay on the page's own domain.
		page.Links.Internal++
	})

	doc.Find("em").Each(func(_ int, sel *goquery.Selection) {
		if text := cleanText(sel.Text()); text != "" {
			page.StyledElements.Emphasis = append(page.StyledElements.Emphasis,
				serplens.StyledText{Tag: "em", Text: text})
		}
	})
	doc.Find("strong").Each(func(_ int, sel *goquery.Selection) {
		if text := cleanText(sel.Text()); text != "" {
			page.StyledElements.Strong = append(page.StyledElements.Strong,
				serplens.StyledText{Tag: "strong", Text: text})
		}
	})
	doc.Find("i").Each(func(_ int, sel *goquery.Selection) {
		class, _ := sel.Attr("class")
		if iconClassRE.MatchString(class) {
			return
		}
		if text := cleanText(sel.Text()); text != "" {
			page.StyledElements.Italic = append(page.StyledElements.Italic,
				serplens.StyledText{Tag: "i", Text: text})
		}
	})

	return page, nil
}

// parseJSONLD decodes one JSON-LD block into data objects. Malformed JSON
// is silently discarded; a top-level array contributes each object element.
func parseJSONLD(raw string) []map[string]any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil
	}
	switch v := value.(type) {
	case map[string]any:
		return []map[string]any{v}
	case []any:
		var blocks []map[string]any
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				blocks = append(blocks, m)
			}
		}
		return blocks
	}
	return nil
}

// registrableDomain extracts the eTLD+1 of a URL's hostname with any
// leading "www." stripped. Hosts without a public suffix (IPs, localhost)
// fall back to the stripped hostname; unparseable input falls back to the
// input itself.
func registrableDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}

// isNonHTTPLink reports whether a href uses a scheme that never counts as
// a page link.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(href)
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

// cleanText collapses whitespace runs to single spaces and trims.
func cleanText(text string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
}
