package model

import (
	"path/filepath"
	"strings"
	"time"
)

// Report represents the complete result of linking one summary to one transcript
type Report struct {
	RunID       string    `json:"run_id"`       // Unique id of this linking run
	Subject     string    `json:"subject"`      // Display name derived from the summary file
	Transcript  string    `json:"transcript"`   // Transcript source path
	Summary     string    `json:"summary"`      // Summary source path
	GeneratedAt time.Time `json:"generated_at"` // When the run finished

	SummaryWords int    `json:"summary_words"` // Word count of the summary text
	Facts        []Fact `json:"facts"`         // Segmented (fact, citation) units

	CitationData         []CitationEntry `json:"citation_data"`          // Sorted by page and line
	UnsortedCitationData []CitationEntry `json:"unsorted_citation_data"` // Narrative order

	Score Score `json:"score"` // Coverage statistics and signals
}

// Score represents the transparent coverage breakdown of a report
type Score struct {
	Stats   Stats    `json:"stats"`
	Signals []Signal `json:"signals"`
}

// Stats holds raw counts behind the coverage signals
type Stats struct {
	NumberedLines    int     `json:"numbered_lines"`    // Numbered, non-blank transcript lines
	CitedLines       int     `json:"cited_lines"`       // Numbered lines covered by a citation
	CoveragePercent  float64 `json:"coverage_percent"`  // cited_lines / numbered_lines * 100
	Facts            int     `json:"facts"`             // Facts emitted by the segmenter
	CitedEntries     int     `json:"cited_entries"`     // One per resolved range
	UncitedSections  int     `json:"uncited_sections"`  // Gap sections
	UnresolvedRanges int     `json:"unresolved_ranges"` // Ranges that matched no text
	DroppedTokens    int     `json:"dropped_tokens"`    // Tokens the segmenter discarded
}

// Signal represents a diagnostic signal with transparent data
type Signal struct {
	Type        SignalType     `json:"type"`
	Severity    SignalSeverity `json:"severity"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"`
}

// SignalType classifies the type of diagnostic signal
type SignalType string

const (
	SignalCoverage            SignalType = "coverage"             // Share of transcript lines cited
	SignalUnresolvedRange     SignalType = "unresolved_range"     // Range with no transcript text
	SignalDroppedCitation     SignalType = "dropped_citation"     // Token discarded by the segmenter
	SignalOverlappingCitation SignalType = "overlapping_citation" // Lines cited by more than one range
)

// SignalSeverity indicates the importance of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// SubjectFromPath derives a display subject from a summary file path
func SubjectFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CountWords counts whitespace-separated words
func CountWords(text string) int {
	return len(strings.Fields(text))
}
