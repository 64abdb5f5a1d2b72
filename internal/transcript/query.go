package transcript

import (
	"fmt"
	"strings"

	"github.com/ppiankov/depocite/internal/model"
)

// bounds is a normalized range query
type bounds struct {
	fromPage, toPage int
	fromLine, toLine *int
}

func newBounds(fromPage, toPage int, fromLine, toLine *int) bounds {
	if toPage == 0 {
		toPage = fromPage
	}
	return bounds{fromPage: fromPage, toPage: toPage, fromLine: fromLine, toLine: toLine}
}

func (b bounds) useLines() bool {
	return b.fromLine != nil || b.toLine != nil
}

// includes applies the inclusion rule: pages strictly inside the range are
// taken whole, boundary pages keep only numbered lines within the line bounds.
func (b bounds) includes(l model.TranscriptLine) bool {
	if l.Page < b.fromPage || l.Page > b.toPage {
		return false
	}
	if !b.useLines() {
		return true
	}
	if l.Page != b.fromPage && l.Page != b.toPage {
		return true
	}
	if l.Line == nil {
		return false
	}
	if l.Page == b.fromPage && b.fromLine != nil && *b.fromLine > 0 && *l.Line < *b.fromLine {
		return false
	}
	if l.Page == b.toPage && b.toLine != nil && *b.toLine > 0 && *l.Line > *b.toLine {
		return false
	}
	return true
}

// RetrieveTextForRange returns the transcript text of a page/line range.
// A toPage of 0 means the range ends on fromPage. A range matching nothing
// carries model.NoTextFound as its text.
func (ix *Index) RetrieveTextForRange(fromPage, toPage int, fromLine, toLine *int) model.CitationEntry {
	b := newBounds(fromPage, toPage, fromLine, toLine)
	id := CitationID(b.fromPage, b.toPage, b.fromLine, b.toLine)

	var texts []string
	positions := make([]model.Position, 0)
	for _, l := range ix.lines {
		if !b.includes(l) {
			continue
		}
		texts = append(texts, l.Text)
		positions = append(positions, model.Position{Page: l.Page, Line: copyLine(l.Line)})
	}

	text := model.NoTextFound
	if len(texts) > 0 {
		text = strings.Join(texts, "\n")
	}

	return model.CitationEntry{
		ID:        id,
		StartPage: b.fromPage,
		EndPage:   b.toPage,
		StartLine: copyLine(b.fromLine),
		EndLine:   copyLine(b.toLine),
		Page:      b.fromPage,
		Text:      text,
		Link:      "#" + id,
		Lines:     positions,
	}
}

// CitedRanges returns the numbered lines a range covers
func (ix *Index) CitedRanges(fromPage, toPage int, fromLine, toLine *int) model.CoverageSet {
	b := newBounds(fromPage, toPage, fromLine, toLine)
	covered := make(model.CoverageSet)
	for _, l := range ix.lines {
		if l.Line == nil || !b.includes(l) {
			continue
		}
		covered.Add(l.Page, *l.Line)
	}
	return covered
}

// gapRun accumulates consecutive uncited lines of one page
type gapRun struct {
	page      int
	first     *int
	last      *int
	texts     []string
	positions []model.Position
}

func (r *gapRun) add(l model.TranscriptLine) {
	if l.Line != nil {
		if r.first == nil {
			r.first = copyLine(l.Line)
		}
		r.last = copyLine(l.Line)
	}
	r.texts = append(r.texts, l.Text)
	r.positions = append(r.positions, model.Position{Page: l.Page, Line: copyLine(l.Line)})
}

// breaksAt reports whether l cannot extend the run
func (r *gapRun) breaksAt(l model.TranscriptLine) bool {
	if l.Page != r.page {
		return true
	}
	return l.Line != nil && r.last != nil && *l.Line != *r.last+1
}

func (r *gapRun) entry(ordinal int) model.CitationEntry {
	return model.CitationEntry{
		ID:        fmt.Sprintf("segment-%d", ordinal),
		StartPage: r.page,
		EndPage:   r.page,
		StartLine: r.first,
		EndLine:   r.last,
		Page:      r.page,
		Text:      strings.Join(r.texts, "\n"),
		Lines:     r.positions,
		IsCited:   false,
	}
}

// UncitedSections groups the non-blank lines outside covered into sections.
// A section never spans pages and splits wherever printed line numbers skip.
func (ix *Index) UncitedSections(covered model.CoverageSet) []model.CitationEntry {
	sections := make([]model.CitationEntry, 0)
	var run *gapRun

	flush := func() {
		if run != nil && len(run.texts) > 0 {
			sections = append(sections, run.entry(len(sections)))
		}
		run = nil
	}

	for _, l := range ix.lines {
		if covered.Contains(model.Position{Page: l.Page, Line: l.Line}) || strings.TrimSpace(l.Text) == "" {
			flush()
			continue
		}
		if run != nil && run.breaksAt(l) {
			flush()
		}
		if run == nil {
			run = &gapRun{page: l.Page}
		}
		run.add(l)
	}
	flush()

	return sections
}

// copyLine keeps index-owned line numbers out of caller hands
func copyLine(line *int) *int {
	if line == nil {
		return nil
	}
	return model.IntPtr(*line)
}
