package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// TranscriptLine is one indexed line of a deposition transcript
type TranscriptLine struct {
	Page int    `json:"page"`           // Page the line belongs to (0 before the first page break)
	Line *int   `json:"line,omitempty"` // Printed line number, nil for unnumbered/continuation lines
	Text string `json:"text"`           // Line text without the printed line number
}

// IsNumbered reports whether the line carries a printed line number
func (l TranscriptLine) IsNumbered() bool {
	return l.Line != nil
}

// Position identifies a transcript line by page and printed line number
type Position struct {
	Page int
	Line *int
}

// MarshalJSON encodes a position as a [page, line] pair, line null when unnumbered
func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Page, p.Line})
}

// UnmarshalJSON decodes a [page, line] pair
func (p *Position) UnmarshalJSON(data []byte) error {
	var pair [2]*int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode position: %w", err)
	}
	if pair[0] != nil {
		p.Page = *pair[0]
	}
	p.Line = pair[1]
	return nil
}

// Key returns the comparable form of a numbered position
func (p Position) Key() PositionKey {
	k := PositionKey{Page: p.Page}
	if p.Line != nil {
		k.Line = *p.Line
	}
	return k
}

// PositionKey is a comparable (page, line) pair of a numbered line
type PositionKey struct {
	Page int
	Line int
}

// Position converts the key back into a numbered position
func (k PositionKey) Position() Position {
	return Position{Page: k.Page, Line: IntPtr(k.Line)}
}

// CoverageSet is the set of numbered transcript lines attributed to at least one citation
type CoverageSet map[PositionKey]struct{}

// NewCoverageSet creates a coverage set holding the given keys
func NewCoverageSet(keys ...PositionKey) CoverageSet {
	s := make(CoverageSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add marks a line as covered
func (s CoverageSet) Add(page, line int) {
	s[PositionKey{Page: page, Line: line}] = struct{}{}
}

// Contains reports whether a position is covered. Unnumbered positions are never covered.
func (s CoverageSet) Contains(p Position) bool {
	if p.Line == nil {
		return false
	}
	_, ok := s[p.Key()]
	return ok
}

// Union adds every member of other into s and returns s
func (s CoverageSet) Union(other CoverageSet) CoverageSet {
	for k := range other {
		s[k] = struct{}{}
	}
	return s
}

// Len returns the number of covered lines
func (s CoverageSet) Len() int {
	return len(s)
}

// Sorted returns the covered keys in document order
func (s CoverageSet) Sorted() []PositionKey {
	keys := make([]PositionKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Page != keys[j].Page {
			return keys[i].Page < keys[j].Page
		}
		return keys[i].Line < keys[j].Line
	})
	return keys
}

// IntPtr returns a pointer to a copy of v
func IntPtr(v int) *int {
	return &v
}
