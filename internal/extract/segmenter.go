package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/depocite/internal/citation"
	"github.com/ppiankov/depocite/internal/model"
)

// introBoundary matches blank lines and markdown table separators
var introBoundary = regexp.MustCompile(`(?m)(?:\n\s*\n|^\|[-| ]+\|$)`)

// DropReason explains why a citation token produced no fact
type DropReason string

const (
	DropUnknownDialect DropReason = "unknown_dialect" // Token matched no citation shape
	DropEmptyText      DropReason = "empty_text"      // No narrative text precedes the token
)

// DroppedToken is a citation token the segmenter discarded
type DroppedToken struct {
	Token  string     `json:"token"`
	Reason DropReason `json:"reason"`
	Text   string     `json:"text,omitempty"`
}

// Segmentation is the detailed result of splitting a summary
type Segmentation struct {
	Facts       []model.Fact
	Dropped     []DroppedToken
	IntroCutoff int // Byte offset where the factual body starts
}

// Segmenter splits summary text into (fact, citation) units
type Segmenter struct {
	grammar *citation.Grammar
}

// NewSegmenter creates a segmenter parsing tokens with g
func NewSegmenter(g *citation.Grammar) *Segmenter {
	if g == nil {
		g = citation.NewGrammar(0)
	}
	return &Segmenter{grammar: g}
}

// Segment returns the facts of a summary in document order
func (s *Segmenter) Segment(content string) []model.Fact {
	return s.SegmentDetailed(content).Facts
}

// SegmentDetailed splits a summary and reports which tokens were dropped
func (s *Segmenter) SegmentDetailed(content string) Segmentation {
	scan := citation.Scanner()
	result := Segmentation{Facts: make([]model.Fact, 0)}

	matches := scan.FindAllStringIndex(content, -1)
	if len(matches) == 0 {
		return result
	}

	// Drop preamble such as headings and captions before the first cited paragraph
	result.IntroCutoff = introCutoff(content[:matches[0][0]])
	content = content[result.IntroCutoff:]
	matches = scan.FindAllStringIndex(content, -1)

	prev := 0
	for _, m := range matches {
		segment := content[prev:m[0]]
		token := content[m[0]:m[1]]
		prev = m[1]

		text := collapseSpace(strings.ReplaceAll(segment, token, ""))
		tok := s.grammar.Parse(token)

		switch {
		case len(tok.Ranges) == 0:
			result.Dropped = append(result.Dropped, DroppedToken{Token: token, Reason: DropUnknownDialect, Text: text})
			continue
		case text == "":
			result.Dropped = append(result.Dropped, DroppedToken{Token: token, Reason: DropEmptyText})
			continue
		}

		result.Facts = append(result.Facts, model.Fact{
			Text:             text,
			CitationToken:    token,
			Dialect:          tok.Dialect,
			Ranges:           tok.Ranges,
			TextWithCitation: collapseSpace(segment + " " + token),
		})
	}

	return result
}

// introCutoff returns the end of the last blank-line or table-separator boundary
func introCutoff(intro string) int {
	cutoff := 0
	for _, loc := range introBoundary.FindAllStringIndex(intro, -1) {
		cutoff = loc[1]
	}
	return cutoff
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
