package adapters

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// HTMLAdapter extracts visible summary text from HTML exports
type HTMLAdapter struct {
	BaseAdapter
}

// NewHTMLAdapter creates a new HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle checks for HTML files or content types
func (a *HTMLAdapter) CanHandle(path string, contentType string) bool {
	switch extension(path) {
	case ".html", ".htm", ".xhtml":
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "html")
}

// ExtractText renders block elements as paragraphs so intro trimming and
// citation scanning see the same structure as a plain-text summary
func (a *HTMLAdapter) ExtractText(raw []byte) (string, error) {
	doc, err := a.ParseHTML(string(raw))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	root := a.FindFirst(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "body"
	})
	if root == nil {
		root = doc
	}

	var buf strings.Builder
	writeVisibleText(&buf, root)
	return tidyParagraphs(buf.String()), nil
}

// writeVisibleText writes text nodes, skipping scripts/styles
func writeVisibleText(buf *strings.Builder, n *html.Node) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "iframe", "head":
			return
		case "br":
			buf.WriteString("\n")
			return
		}
	}

	if n.Type == html.TextNode {
		// Whitespace inside text nodes is layout, not content
		buf.WriteString(" ")
		buf.WriteString(strings.Join(strings.Fields(n.Data), " "))
		buf.WriteString(" ")
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeVisibleText(buf, c)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "section", "article", "h1", "h2", "h3", "h4", "h5", "h6", "ul", "ol", "table", "blockquote":
			buf.WriteString("\n\n")
		case "li", "tr":
			buf.WriteString("\n")
		}
	}
}

// tidyParagraphs trims every line and collapses runs of blank lines
func tidyParagraphs(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
