package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/depocite/internal/model"
)

// Renderer writes reports as JSON, Markdown and terminal summaries
type Renderer struct {
	includeFooter bool
	textPreview   int
}

// NewRenderer creates a renderer. textPreview caps entry text in Markdown
// (in runes); zero or less prints full text.
func NewRenderer(includeFooter bool, textPreview int) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		textPreview:   textPreview,
	}
}

// RenderJSON writes the report as indented JSON; "-" writes to stdout
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// RenderMarkdown writes the reviewer listing to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var buf strings.Builder
	r.WriteMarkdown(&buf, report)
	return os.WriteFile(path, []byte(buf.String()), 0644)
}

// WriteMarkdown renders the reviewer listing: coverage, signals, then every
// entry in page order with an anchor matching its link
func (r *Renderer) WriteMarkdown(w io.Writer, report *model.Report) {
	stats := report.Score.Stats

	fmt.Fprintf(w, "# Citation report: %s\n\n", report.Subject)
	fmt.Fprintf(w, "- Transcript: `%s`\n", report.Transcript)
	fmt.Fprintf(w, "- Summary: `%s` (%d words)\n", report.Summary, report.SummaryWords)
	fmt.Fprintf(w, "- Run: `%s` at %s\n\n", report.RunID, report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	fmt.Fprintf(w, "## Coverage\n\n")
	fmt.Fprintf(w, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(w, "| Cited lines | %d / %d (%.1f%%) |\n", stats.CitedLines, stats.NumberedLines, stats.CoveragePercent)
	fmt.Fprintf(w, "| Facts | %d |\n", stats.Facts)
	fmt.Fprintf(w, "| Cited ranges | %d |\n", stats.CitedEntries)
	fmt.Fprintf(w, "| Uncited sections | %d |\n", stats.UncitedSections)
	fmt.Fprintf(w, "| Unresolved ranges | %d |\n", stats.UnresolvedRanges)
	fmt.Fprintf(w, "| Dropped tokens | %d |\n\n", stats.DroppedTokens)

	if len(report.Score.Signals) > 0 {
		fmt.Fprintf(w, "## Signals\n\n")
		for _, sig := range report.Score.Signals {
			fmt.Fprintf(w, "- **%s** `%s`: %s\n", sig.Severity, sig.Type, sig.Description)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "## Transcript\n\n")
	for _, e := range report.CitationData {
		if e.IsCited {
			fmt.Fprintf(w, "<a id=\"%s\"></a>\n### %s (cited)\n\n", e.ID, e.CitationPart)
			fmt.Fprintf(w, "_%s_ %s\n\n", e.SummaryFact, e.CitationStr)
		} else {
			fmt.Fprintf(w, "### %s (uncited)\n\n", uncitedLabel(e))
		}
		fmt.Fprintf(w, "%s\n\n", quote(r.preview(e.Text)))
	}

	if r.includeFooter {
		fmt.Fprintf(w, "---\n_Generated by depocite. Citations are matched by page and line number only; their legal accuracy is not assessed._\n")
	}
}

// RenderSummary prints a short terminal summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	stats := report.Score.Stats

	fmt.Fprintf(w, "%s\n", report.Subject)
	fmt.Fprintf(w, "  Coverage:   %d/%d lines (%.1f%%)\n", stats.CitedLines, stats.NumberedLines, stats.CoveragePercent)
	fmt.Fprintf(w, "  Facts:      %d (%d ranges, %d unresolved)\n", stats.Facts, stats.CitedEntries, stats.UnresolvedRanges)
	fmt.Fprintf(w, "  Uncited:    %d sections\n", stats.UncitedSections)
	if stats.DroppedTokens > 0 {
		fmt.Fprintf(w, "  Dropped:    %d tokens\n", stats.DroppedTokens)
	}

	for _, sig := range report.Score.Signals {
		if sig.Severity == model.SeverityInfo {
			continue
		}
		fmt.Fprintf(w, "  [%s] %s\n", sig.Severity, sig.Description)
	}
}

func (r *Renderer) preview(text string) string {
	runes := []rune(text)
	if r.textPreview <= 0 || len(runes) <= r.textPreview {
		return text
	}
	return strings.TrimSpace(string(runes[:r.textPreview])) + "…"
}

func uncitedLabel(e model.CitationEntry) string {
	switch {
	case e.StartLine == nil:
		return fmt.Sprintf("p. %d", e.StartPage)
	case e.EndLine == nil || *e.EndLine == *e.StartLine:
		return fmt.Sprintf("%d:%d", e.StartPage, *e.StartLine)
	default:
		return fmt.Sprintf("%d:%d-%d", e.StartPage, *e.StartLine, *e.EndLine)
	}
}

func quote(text string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}
