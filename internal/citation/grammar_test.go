package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/depocite/internal/model"
)

func lineRangeOf(fp, fl, tp, tl int) model.CitationRange {
	return model.CitationRange{FromPage: fp, ToPage: tp, FromLine: model.IntPtr(fl), ToLine: model.IntPtr(tl)}
}

func pageRangeOf(fp, tp int) model.CitationRange {
	return model.CitationRange{FromPage: fp, ToPage: tp}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want model.Dialect
	}{
		{"(9:1-24:11)", model.DialectParenLines},
		{"(9:1-24:11, 25:1-3)", model.DialectParenLines},
		{"(126-127, 139-142)", model.DialectMultiPage},
		{"(121-124)", model.DialectSinglePage},
		{"9:1-24:11, 25:1-3", model.DialectMultiLine},
		{"9:1-24:11, 121-124", model.DialectMixed},
		{"121-124, 130-131", model.DialectMixed},
		{"37:22-24", model.DialectSingleLine},
		{"9:1-24:11", model.DialectSingleLine},
		{"121-124", model.DialectUnknown},
		{"(9:1-24:11, 121-124)", model.DialectUnknown},
		{"page nine", model.DialectUnknown},
		{"", model.DialectUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.raw))
		})
	}
}

func TestParse_KnownShapes(t *testing.T) {
	g := NewGrammar(16)

	tok := g.Parse("(9:1-24:11)")
	require.Len(t, tok.Ranges, 1)
	assert.Equal(t, lineRangeOf(9, 1, 24, 11), tok.Ranges[0])

	tok = g.Parse("37:22-24")
	require.Len(t, tok.Ranges, 1)
	assert.Equal(t, lineRangeOf(37, 22, 37, 24), tok.Ranges[0])

	tok = g.Parse("(121-124)")
	assert.Equal(t, model.DialectSinglePage, tok.Dialect)
	assert.Equal(t, []model.CitationRange{pageRangeOf(121, 124)}, tok.Ranges)

	tok = g.Parse("(126-127, 139-142)")
	assert.Equal(t, model.DialectMultiPage, tok.Dialect)
	assert.Equal(t, []model.CitationRange{pageRangeOf(126, 127), pageRangeOf(139, 142)}, tok.Ranges)
}

func TestParse_MixedList(t *testing.T) {
	tok := NewGrammar(0).Parse("9:1-9:5, 10-12, 14:3-7")

	assert.Equal(t, model.DialectMixed, tok.Dialect)
	assert.Equal(t, []model.CitationRange{
		lineRangeOf(9, 1, 9, 5),
		pageRangeOf(10, 12),
		lineRangeOf(14, 3, 14, 7),
	}, tok.Ranges)
}

func TestParse_MultiLineKeepsOrder(t *testing.T) {
	tok := NewGrammar(0).Parse("12:4-13:2,  15:1-9")

	assert.Equal(t, model.DialectMultiLine, tok.Dialect)
	assert.Equal(t, []model.CitationRange{lineRangeOf(12, 4, 13, 2), lineRangeOf(15, 1, 15, 9)}, tok.Ranges)
}

func TestParse_Unknown(t *testing.T) {
	tok := NewGrammar(0).Parse("2019-2020")

	assert.Equal(t, model.DialectUnknown, tok.Dialect)
	assert.Empty(t, tok.Ranges)
	assert.NotNil(t, tok.Ranges)
}

func TestParse_MemoReturnsIndependentCopies(t *testing.T) {
	g := NewGrammar(4)

	first := g.Parse("37:22-24")
	*first.Ranges[0].FromLine = 99
	first.Ranges[0].FromPage = 1

	second := g.Parse("37:22-24")
	assert.Equal(t, lineRangeOf(37, 22, 37, 24), second.Ranges[0])
}

func TestScanner_FindsWholeTokens(t *testing.T) {
	text := "He arrived late (9:1-24:11). He left (126-127, 139-142); see also 12:4-13:2, 15:1-9 and 37:22-24."

	got := Scanner().FindAllString(text, -1)

	assert.Equal(t, []string{"(9:1-24:11)", "(126-127, 139-142)", "12:4-13:2, 15:1-9", "37:22-24"}, got)
}

func TestScanner_MixedListStartingWithLineRanges(t *testing.T) {
	got := Scanner().FindAllString("The witness said X 9:1-5, 10:2-3, 121-124. Later.", -1)

	require.Len(t, got, 1)
	assert.Equal(t, "9:1-5, 10:2-3, 121-124", got[0])
	assert.Equal(t, model.DialectMixed, Classify(got[0]))
}

func TestScanner_BareRangeFallback(t *testing.T) {
	got := Scanner().FindAllString("Between 2019-2020 nothing happened.", -1)

	require.Len(t, got, 1)
	assert.Equal(t, "2019-2020", got[0])
	assert.Equal(t, model.DialectUnknown, Classify(got[0]))
}
