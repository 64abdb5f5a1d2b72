package model

// Dialect identifies which citation shape a token was recognized as
type Dialect string

const (
	DialectUnknown    Dialect = "unknown"     // Matches no known shape
	DialectParenLines Dialect = "paren_lines" // (9:1-24:11) or (9:1-24:11, 25:1-3)
	DialectMultiPage  Dialect = "multi_page"  // (126-127, 139-142)
	DialectSinglePage Dialect = "single_page" // (121-124)
	DialectMultiLine  Dialect = "multi_line"  // 9:1-24:11, 25:1-3
	DialectMixed      Dialect = "mixed"       // 9:1-24:11, 121-124
	DialectSingleLine Dialect = "single_line" // 37:22-24 or 9:1-24:11
)

// CitationRange is a closed page/line range. Nil lines mean whole pages.
type CitationRange struct {
	FromPage int  `json:"from_page"`
	ToPage   int  `json:"to_page"`
	FromLine *int `json:"from_line"`
	ToLine   *int `json:"to_line"`
}

// PageOnly reports whether the range names whole pages
func (r CitationRange) PageOnly() bool {
	return r.FromLine == nil && r.ToLine == nil
}

// CitationToken is a citation substring found in a summary together with its parse
type CitationToken struct {
	Raw     string          `json:"raw"`
	Dialect Dialect         `json:"dialect"`
	Ranges  []CitationRange `json:"ranges"`
}

// Fact is a narrative clause of the summary paired with the citation that follows it
type Fact struct {
	Text             string          `json:"text"`
	CitationToken    string          `json:"citation_str"`
	Dialect          Dialect         `json:"dialect"`
	Ranges           []CitationRange `json:"citations"`
	TextWithCitation string          `json:"fact_text_with_citation"`
}
