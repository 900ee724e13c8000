// Package extract reduces fetched HTML pages to a short plain-text excerpt
// that can be appended to a prompt for link evidence.
package extract

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// DefaultMaxExcerptRunes bounds the excerpt handed to the prompt builder
const DefaultMaxExcerptRunes = 1500

// minReadableRunes is the shortest readability result accepted before
// falling back to the plain visible-text walk
const minReadableRunes = 200

// Page is the readable content of a fetched page
type Page struct {
	Title   string
	Text    string
	Excerpt string
	Method  string // "readability" or "visible-text"
}

// PageExtractor extracts readable text from HTML
type PageExtractor struct {
	maxRunes int
}

// NewPageExtractor creates a page extractor; maxRunes <= 0 uses the default
func NewPageExtractor(maxRunes int) *PageExtractor {
	if maxRunes <= 0 {
		maxRunes = DefaultMaxExcerptRunes
	}
	return &PageExtractor{maxRunes: maxRunes}
}

// Extract parses htmlContent and returns its title and main text
func (e *PageExtractor) Extract(htmlContent string, pageURL string) (*Page, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return nil, err
	}

	page := &Page{Title: documentTitle(doc)}

	if text := e.readable(htmlContent, pageURL); utf8.RuneCountInString(text) >= minReadableRunes {
		page.Text = text
		page.Method = "readability"
	} else {
		page.Text = collapseSpaces(extractVisibleText(doc))
		page.Method = "visible-text"
	}

	page.Excerpt = truncateRunes(page.Text, e.maxRunes)
	if page.Title != "" {
		page.Excerpt = page.Title + "\n" + page.Excerpt
	}

	return page, nil
}

// readable runs the readability article extractor; failures yield ""
func (e *PageExtractor) readable(htmlContent, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	article, err := readability.FromReader(strings.NewReader(htmlContent), parsed)
	if err != nil || article.Node == nil {
		return ""
	}

	return collapseSpaces(extractVisibleText(article.Node))
}

// documentTitle returns the first <title> text
func documentTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := documentTitle(c); title != "" {
			return title
		}
	}
	return ""
}

// extractVisibleText extracts text nodes from HTML, skipping scripts/styles
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head", "nav", "footer", "svg":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
