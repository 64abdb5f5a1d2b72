// Package adapters turns summary documents of different formats into plain
// text for the segmenter.
package adapters

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Adapter defines the interface for format-specific summary readers
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter can handle the given path/content type
	CanHandle(path string, contentType string) bool

	// ExtractText returns the summary as plain text with paragraph breaks preserved
	ExtractText(raw []byte) (string, error)
}

// Registry manages summary adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// Register built-in adapters
	registry.Register(NewHTMLAdapter())

	// Set generic adapter as fallback
	registry.generic = NewGenericAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the best adapter for the given path and content type
func (r *Registry) FindAdapter(path string, contentType string) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(path, contentType) {
			return adapter
		}
	}
	return r.generic
}

// extension returns the lower-cased file extension of path
func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// BaseAdapter provides HTML tree helpers for adapters
type BaseAdapter struct{}

// ParseHTML parses HTML string into a node tree
func (b *BaseAdapter) ParseHTML(htmlContent string) (*html.Node, error) {
	return html.Parse(strings.NewReader(htmlContent))
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// FindFirst finds the first node matching a predicate
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}
