package adapters

import (
	"bytes"
	"strings"
)

// GenericAdapter is the fallback adapter for plain text and Markdown summaries
type GenericAdapter struct{}

// NewGenericAdapter creates a new generic adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "generic"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(path string, contentType string) bool {
	return true
}

// ExtractText normalizes line endings and strips a UTF-8 byte order mark
func (a *GenericAdapter) ExtractText(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	text := strings.ReplaceAll(string(raw), "\r\n", "\n")
	return strings.ToValidUTF8(text, ""), nil
}
