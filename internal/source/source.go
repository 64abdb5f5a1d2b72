// Package source reads transcript and summary files from disk and turns
// them into the plain text the indexer and segmenter work on.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ppiankov/depocite/internal/extract/adapters"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported input format")
	ErrEmptyInput        = errors.New("input is empty")
	ErrNoExtractableText = errors.New("no extractable text found in PDF")
)

// Format identifies how a file was decoded
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
)

// Document is a decoded input file
type Document struct {
	Path   string
	Format Format
	Raw    []byte // File bytes as read, used for cache keys
	Text   string
}

// Loader decodes transcripts and summaries
type Loader struct {
	adapters  *adapters.Registry
	pageBreak string
}

// NewLoader creates a loader that separates PDF pages with pageBreak
func NewLoader(pageBreak string) *Loader {
	if pageBreak == "" {
		pageBreak = "\f"
	}
	return &Loader{
		adapters:  adapters.NewRegistry(),
		pageBreak: pageBreak,
	}
}

// LoadTranscript reads a plain-text or PDF transcript
func (l *Loader) LoadTranscript(path string) (*Document, error) {
	raw, err := readInput(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{Path: path, Raw: raw}
	switch detectFormat(path, raw) {
	case FormatPDF:
		doc.Format = FormatPDF
		var pages []string
		if pages, err = pdfPages(raw); err == nil {
			doc.Text = transcriptFromPages(pages, l.pageBreak)
		}
	case FormatText, FormatMarkdown:
		doc.Format = FormatText
		doc.Text, err = l.adapters.FindAdapter(path, "text/plain").ExtractText(raw)
	default:
		return nil, fmt.Errorf("transcript %s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("transcript %s: %w", path, err)
	}

	return doc, nil
}

// LoadSummary reads a text, Markdown, HTML or PDF summary
func (l *Loader) LoadSummary(path string) (*Document, error) {
	raw, err := readInput(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{Path: path, Raw: raw, Format: detectFormat(path, raw)}
	switch doc.Format {
	case FormatPDF:
		var pages []string
		if pages, err = pdfPages(raw); err == nil {
			doc.Text = strings.Join(pages, "\n\n")
		}
	case FormatHTML:
		doc.Text, err = l.adapters.FindAdapter(path, "text/html").ExtractText(raw)
	case FormatText, FormatMarkdown:
		doc.Text, err = l.adapters.FindAdapter(path, "text/plain").ExtractText(raw)
	default:
		return nil, fmt.Errorf("summary %s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, fmt.Errorf("summary %s: %w", path, err)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("summary %s: %w", path, ErrEmptyInput)
	}

	return doc, nil
}

func readInput(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, fmt.Errorf("read %s: %w", path, ErrEmptyInput)
	}
	return raw, nil
}

// detectFormat picks a decoder by extension, sniffing extensionless files
func detectFormat(path string, raw []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return FormatPDF
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt", ".text", "":
		if bytes.HasPrefix(raw, []byte("%PDF-")) {
			return FormatPDF
		}
		return FormatText
	default:
		return ""
	}
}

// pdfPages extracts the plain text of every page
func pdfPages(raw []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	pages := make([]string, 0, r.NumPage())
	hasText := false
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract pdf page %d: %w", i, err)
		}
		if strings.TrimSpace(text) != "" {
			hasText = true
		}
		pages = append(pages, strings.TrimRight(text, "\n"))
	}

	if !hasText {
		return nil, ErrNoExtractableText
	}
	return pages, nil
}

// transcriptFromPages puts the page-break marker on its own line ahead of
// every page so the printed page number that follows is picked up.
func transcriptFromPages(pages []string, marker string) string {
	var buf strings.Builder
	for _, p := range pages {
		buf.WriteString(marker)
		buf.WriteString("\n")
		buf.WriteString(p)
		buf.WriteString("\n")
	}
	return buf.String()
}
