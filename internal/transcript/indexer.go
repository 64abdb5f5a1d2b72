// Package transcript indexes paginated, line-numbered deposition transcripts
// and answers page/line range queries over them.
package transcript

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/depocite/internal/model"
)

// DefaultPageMarker is the page-break marker emitted by text exports of transcripts
const DefaultPageMarker = "\f"

var (
	digitRun        = regexp.MustCompile(`\d+`)
	numberedLine    = regexp.MustCompile(`^(\d+)\s+(.*)$`)
	numberedContent = regexp.MustCompile(`^\s*\d+\s+[A-Za-z]`)
)

type pageState int

const (
	stateNormal pageState = iota
	stateAwaitPageNumber
)

// Index is an immutable page/line index over transcript lines.
// It is safe for concurrent readers.
type Index struct {
	lines []model.TranscriptLine
}

type options struct {
	marker string
}

// Option configures Build
type Option func(*options)

// WithPageMarker overrides the page-break marker. An empty marker disables page detection.
func WithPageMarker(marker string) Option {
	return func(o *options) {
		o.marker = marker
	}
}

// Build indexes raw transcript lines in document order
func Build(raw []string, opts ...Option) *Index {
	o := options{marker: DefaultPageMarker}
	for _, opt := range opts {
		opt(&o)
	}

	ix := &Index{lines: make([]model.TranscriptLine, 0, len(raw))}
	page := 0
	state := stateNormal

	for _, rawLine := range raw {
		rawLine = strings.TrimRight(rawLine, "\r\n")

		if o.marker != "" {
			if at := strings.Index(rawLine, o.marker); at >= 0 {
				if n, ok := firstNumber(rawLine[at+len(o.marker):]); ok {
					page = n
					state = stateNormal
				} else {
					state = stateAwaitPageNumber
				}
				continue
			}
		}

		if state == stateAwaitPageNumber {
			trimmed := strings.TrimSpace(rawLine)
			if trimmed == "" {
				ix.lines = append(ix.lines, model.TranscriptLine{Page: page})
				continue
			}
			state = stateNormal
			// Numbered testimony right after a break means the page number was
			// not printed; keep the current page.
			if !numberedContent.MatchString(rawLine) {
				if n, ok := firstNumber(trimmed); ok {
					page = n
					continue
				}
			}
		}

		ix.lines = append(ix.lines, parseLine(page, rawLine))
	}

	return ix
}

// BuildFromText splits text into lines and indexes it
func BuildFromText(text string, opts ...Option) *Index {
	return Build(SplitLines(text), opts...)
}

// SplitLines splits text on newlines, tolerating CRLF endings
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func parseLine(page int, rawLine string) model.TranscriptLine {
	trimmed := strings.TrimSpace(rawLine)
	if m := numberedLine.FindStringSubmatch(trimmed); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return model.TranscriptLine{Page: page, Line: model.IntPtr(n), Text: strings.TrimSpace(m[2])}
		}
	}
	return model.TranscriptLine{Page: page, Text: trimmed}
}

func firstNumber(s string) (int, bool) {
	run := digitRun.FindString(s)
	if run == "" {
		return 0, false
	}
	n, err := strconv.Atoi(run)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Len returns the number of indexed lines
func (ix *Index) Len() int {
	return len(ix.lines)
}

// Lines returns a copy of the indexed lines
func (ix *Index) Lines() []model.TranscriptLine {
	out := make([]model.TranscriptLine, len(ix.lines))
	for i, l := range ix.lines {
		out[i] = model.TranscriptLine{Page: l.Page, Line: copyLine(l.Line), Text: l.Text}
	}
	return out
}

// Pages returns the distinct page numbers in document order
func (ix *Index) Pages() []int {
	var pages []int
	for i, l := range ix.lines {
		if i == 0 || l.Page != ix.lines[i-1].Page {
			pages = append(pages, l.Page)
		}
	}
	return pages
}

// NumberedPositions returns every numbered line as a coverage set
func (ix *Index) NumberedPositions() model.CoverageSet {
	set := make(model.CoverageSet)
	for _, l := range ix.lines {
		if l.Line != nil && strings.TrimSpace(l.Text) != "" {
			set.Add(l.Page, *l.Line)
		}
	}
	return set
}

// CitationID returns the stable id of a range
func CitationID(fromPage, toPage int, fromLine, toLine *int) string {
	return fmt.Sprintf("citation_%d_%s_%d_%s", fromPage, lineOrPage(fromLine), toPage, lineOrPage(toLine))
}

func lineOrPage(line *int) string {
	if line == nil {
		return "page"
	}
	return strconv.Itoa(*line)
}
