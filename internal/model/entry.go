package model

// NoTextFound is the placeholder text of a range that matched no transcript lines
const NoTextFound = "No text found for this range."

// CitationEntry is one resolved citation range, or one uncited transcript section
type CitationEntry struct {
	ID           string     `json:"citation_id"`
	CitationStr  string     `json:"citation_str,omitempty"`  // Full token as written in the summary
	CitationPart string     `json:"citation_part,omitempty"` // Compact label of this single range
	StartPage    int        `json:"start_page"`
	EndPage      int        `json:"end_page"`
	StartLine    *int       `json:"start_line"`
	EndLine      *int       `json:"end_line"`
	Page         int        `json:"page"` // Alias of StartPage for display
	Text         string     `json:"text"`
	Link         string     `json:"link,omitempty"`
	Lines        []Position `json:"lines"`
	IsCited      bool       `json:"is_cited"`
	SummaryFact  string     `json:"summary_fact,omitempty"`
}

// Resolved reports whether the entry matched transcript text
func (e CitationEntry) Resolved() bool {
	return e.Text != NoTextFound
}
