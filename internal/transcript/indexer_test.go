package transcript

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/depocite/internal/model"
)

// pageLines renders a transcript page with numbered testimony lines
func pageLines(page, from, to int) []string {
	lines := []string{fmt.Sprintf("\f%d", page)}
	for i := from; i <= to; i++ {
		lines = append(lines, fmt.Sprintf("%5d   Q. line %d of page %d", i, i, page))
	}
	return lines
}

func TestBuild_PageNumberOnMarkerLine(t *testing.T) {
	ix := Build([]string{"\f  12", "  1   Q. Good morning."})

	lines := ix.Lines()
	if len(lines) != 1 {
		t.Fatalf("Expected 1 indexed line, got %d", len(lines))
	}
	if lines[0].Page != 12 {
		t.Errorf("Expected page 12, got %d", lines[0].Page)
	}
	if lines[0].Line == nil || *lines[0].Line != 1 {
		t.Errorf("Expected line 1, got %v", lines[0].Line)
	}
	if lines[0].Text != "Q. Good morning." {
		t.Errorf("Expected text without line number, got %q", lines[0].Text)
	}
}

func TestBuild_PageNumberOnNextLine(t *testing.T) {
	ix := Build([]string{"\f", "                     7", "  1   A. Yes."})

	lines := ix.Lines()
	if len(lines) != 1 {
		t.Fatalf("Expected marker and page-number lines to be consumed, got %d lines", len(lines))
	}
	if lines[0].Page != 7 {
		t.Errorf("Expected page 7, got %d", lines[0].Page)
	}
}

func TestBuild_AwaitAbandonedOnNumberedContent(t *testing.T) {
	raw := append(pageLines(3, 1, 2), "\f", "  1   Q. Next page without a printed number.")
	ix := Build(raw)

	lines := ix.Lines()
	last := lines[len(lines)-1]
	if last.Page != 3 {
		t.Errorf("Expected page to stay 3, got %d", last.Page)
	}
	if last.Line == nil || *last.Line != 1 {
		t.Errorf("Expected numbered content to be indexed as line 1, got %v", last.Line)
	}
}

func TestBuild_BlankLinesKeepAwaiting(t *testing.T) {
	ix := Build([]string{"\f", "", "   9", "  1   A. Correct."})

	lines := ix.Lines()
	if len(lines) != 2 {
		t.Fatalf("Expected blank line plus testimony, got %d lines", len(lines))
	}
	if lines[0].Line != nil || lines[0].Text != "" {
		t.Errorf("Expected an unnumbered blank line, got %+v", lines[0])
	}
	if lines[1].Page != 9 {
		t.Errorf("Expected page 9, got %d", lines[1].Page)
	}
}

func TestBuild_UnnumberedLines(t *testing.T) {
	ix := Build([]string{"\f2", "DEPOSITION OF JANE DOE", "  4   continued", "12"})

	lines := ix.Lines()
	if lines[0].Line != nil {
		t.Errorf("Expected heading to be unnumbered, got line %d", *lines[0].Line)
	}
	if lines[1].Line == nil || *lines[1].Line != 4 {
		t.Errorf("Expected line 4, got %v", lines[1].Line)
	}
	if lines[2].Line != nil || lines[2].Text != "12" {
		t.Errorf("Expected bare number to be unnumbered text, got %+v", lines[2])
	}
}

func TestBuild_CustomPageMarker(t *testing.T) {
	ix := Build([]string{"<<PAGE>> 4", "  1   Q. Hello."}, WithPageMarker("<<PAGE>>"))

	if got := ix.Lines()[0].Page; got != 4 {
		t.Errorf("Expected page 4, got %d", got)
	}
}

func TestBuild_Idempotent(t *testing.T) {
	raw := append(pageLines(1, 1, 5), pageLines(2, 1, 5)...)

	a := Build(raw)
	b := Build(raw)
	if !reflect.DeepEqual(a.Lines(), b.Lines()) {
		t.Error("Expected repeated builds to produce identical indexes")
	}

	first := a.RetrieveTextForRange(1, 2, model.IntPtr(3), model.IntPtr(2))
	second := a.RetrieveTextForRange(1, 2, model.IntPtr(3), model.IntPtr(2))
	if !reflect.DeepEqual(first, second) {
		t.Error("Expected repeated queries to return identical results")
	}
}

func TestIndex_Pages(t *testing.T) {
	raw := append([]string{"CAPTION"}, append(pageLines(1, 1, 2), pageLines(2, 1, 2)...)...)
	ix := Build(raw)

	if got := ix.Pages(); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Errorf("Expected pages [0 1 2], got %v", got)
	}
}

func TestCitationID(t *testing.T) {
	if got := CitationID(9, 24, model.IntPtr(1), model.IntPtr(11)); got != "citation_9_1_24_11" {
		t.Errorf("Unexpected id %q", got)
	}
	if got := CitationID(121, 124, nil, nil); got != "citation_121_page_124_page" {
		t.Errorf("Unexpected id %q", got)
	}
}

func TestSplitLines_CRLF(t *testing.T) {
	got := SplitLines("a\r\nb\nc")
	if !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Unexpected split %q", got)
	}
	if !strings.Contains(strings.Join(got, ""), "abc") {
		t.Error("Expected all lines preserved")
	}
}
