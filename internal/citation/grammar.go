// Package citation recognizes transcript citation tokens such as "(9:1-24:11)",
// "37:22-24" or "(126-127, 139-142)" and parses them into page/line ranges.
package citation

import (
	"regexp"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ppiankov/depocite/internal/model"
)

const (
	lineRange = `\d+:\d+-\d+(?::\d+)?` // 9:1-24:11 or 37:22-24
	pageRange = `\d+-\d+`              // 121-124
	listSep   = `,\s*`
)

// rule pairs a dialect with its shape and element parser
type rule struct {
	dialect model.Dialect
	shape   string
	pattern *regexp.Regexp
	parse   func(body string) []model.CitationRange
}

// rules is ordered by precedence; the first full match wins
var rules = []rule{
	newRule(model.DialectParenLines, `\((?:`+lineRange+`(?:`+listSep+lineRange+`)*)\)`, parseLineRanges),
	newRule(model.DialectMultiPage, `\((?:`+pageRange+`(?:`+listSep+pageRange+`)+)\)`, parsePageRanges),
	newRule(model.DialectSinglePage, `\(`+pageRange+`\)`, parsePageRanges),
	newRule(model.DialectMultiLine, lineRange+`(?:`+listSep+lineRange+`)+`, parseLineRanges),
	newRule(model.DialectMixed, `(?:(?:`+lineRange+`|`+pageRange+`)(?:`+listSep+`(?:`+lineRange+`|`+pageRange+`))+)`, parseLineRanges),
	newRule(model.DialectSingleLine, lineRange, parseLineRanges),
}

// scanOrder is the scanner's alternative order. It follows rule precedence
// except that Mixed, a superset of MultiLine, is tried first so a list that
// starts with line ranges and ends with page ranges is taken whole.
var scanOrder = []model.Dialect{
	model.DialectParenLines,
	model.DialectMultiPage,
	model.DialectSinglePage,
	model.DialectMixed,
	model.DialectMultiLine,
	model.DialectSingleLine,
}

// scanner finds candidate tokens in running text; a bare range is the last resort
var scanner = buildScanner()

func newRule(d model.Dialect, shape string, parse func(string) []model.CitationRange) rule {
	return rule{
		dialect: d,
		shape:   shape,
		pattern: regexp.MustCompile(`^(?:` + shape + `)$`),
		parse:   parse,
	}
}

func buildScanner() *regexp.Regexp {
	alts := make([]string, 0, len(scanOrder)+1)
	for _, d := range scanOrder {
		for _, r := range rules {
			if r.dialect == d {
				alts = append(alts, r.shape)
			}
		}
	}
	alts = append(alts, lineRange+`|`+pageRange)
	return regexp.MustCompile(`(` + strings.Join(alts, `|`) + `)`)
}

// Scanner returns the combined token pattern used to locate citations in text
func Scanner() *regexp.Regexp {
	return scanner
}

// Classify returns the dialect of a token, or DialectUnknown
func Classify(raw string) model.Dialect {
	if r, ok := match(strings.TrimSpace(raw)); ok {
		return r.dialect
	}
	return model.DialectUnknown
}

func match(raw string) (rule, bool) {
	for _, r := range rules {
		if r.pattern.MatchString(raw) {
			return r, true
		}
	}
	return rule{}, false
}

// Grammar parses citation tokens, memoizing results in a bounded cache
type Grammar struct {
	memo *lru.Cache[string, model.CitationToken]
}

// NewGrammar creates a grammar. cacheSize <= 0 disables memoization.
func NewGrammar(cacheSize int) *Grammar {
	g := &Grammar{}
	if cacheSize > 0 {
		if memo, err := lru.New[string, model.CitationToken](cacheSize); err == nil {
			g.memo = memo
		}
	}
	return g
}

// Parse classifies a token and parses it into ranges. Unknown tokens parse to no ranges.
func (g *Grammar) Parse(raw string) model.CitationToken {
	raw = strings.TrimSpace(raw)
	if g.memo != nil {
		if tok, ok := g.memo.Get(raw); ok {
			return cloneToken(tok)
		}
	}

	tok := model.CitationToken{Raw: raw, Dialect: model.DialectUnknown, Ranges: []model.CitationRange{}}
	if r, ok := match(raw); ok {
		tok.Dialect = r.dialect
		tok.Ranges = r.parse(strings.Trim(raw, "()"))
	}

	if g.memo != nil {
		g.memo.Add(raw, cloneToken(tok))
	}
	return tok
}

// parseLineRanges parses comma-separated P:L-P:L, P:L-L and P-P elements
func parseLineRanges(body string) []model.CitationRange {
	ranges := make([]model.CitationRange, 0)
	for _, elem := range splitElements(body) {
		if !strings.Contains(elem, ":") {
			if r, ok := parsePageElement(elem); ok {
				ranges = append(ranges, r)
			}
			continue
		}

		parts := strings.Split(elem, "-")
		if len(parts) != 2 {
			continue
		}
		startPage, startLine, ok := parsePageLine(parts[0])
		if !ok {
			continue
		}

		endPage, endLine := startPage, 0
		end := strings.TrimSpace(parts[1])
		if strings.Contains(end, ":") {
			if endPage, endLine, ok = parsePageLine(end); !ok {
				continue
			}
		} else if endLine, ok = atoi(end); !ok {
			continue
		}

		ranges = append(ranges, model.CitationRange{
			FromPage: startPage,
			ToPage:   endPage,
			FromLine: model.IntPtr(startLine),
			ToLine:   model.IntPtr(endLine),
		})
	}
	return ranges
}

// parsePageRanges parses comma-separated P-P elements
func parsePageRanges(body string) []model.CitationRange {
	ranges := make([]model.CitationRange, 0)
	for _, elem := range splitElements(body) {
		if r, ok := parsePageElement(elem); ok {
			ranges = append(ranges, r)
		}
	}
	return ranges
}

func parsePageElement(elem string) (model.CitationRange, bool) {
	parts := strings.Split(elem, "-")
	if len(parts) != 2 {
		return model.CitationRange{}, false
	}
	from, ok := atoi(parts[0])
	if !ok {
		return model.CitationRange{}, false
	}
	to, ok := atoi(parts[1])
	if !ok {
		return model.CitationRange{}, false
	}
	return model.CitationRange{FromPage: from, ToPage: to}, true
}

func parsePageLine(s string) (int, int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	page, ok := atoi(parts[0])
	if !ok {
		return 0, 0, false
	}
	line, ok := atoi(parts[1])
	if !ok {
		return 0, 0, false
	}
	return page, line, true
}

func splitElements(body string) []string {
	var elems []string
	for _, e := range strings.Split(body, ",") {
		if e = strings.TrimSpace(e); e != "" {
			elems = append(elems, e)
		}
	}
	return elems
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	return n, err == nil
}

func cloneToken(tok model.CitationToken) model.CitationToken {
	out := tok
	out.Ranges = make([]model.CitationRange, len(tok.Ranges))
	for i, r := range tok.Ranges {
		out.Ranges[i] = r
		if r.FromLine != nil {
			out.Ranges[i].FromLine = model.IntPtr(*r.FromLine)
		}
		if r.ToLine != nil {
			out.Ranges[i].ToLine = model.IntPtr(*r.ToLine)
		}
	}
	return out
}
