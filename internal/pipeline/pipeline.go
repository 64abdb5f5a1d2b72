package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/depocite/internal/cache"
	"github.com/ppiankov/depocite/internal/citation"
	"github.com/ppiankov/depocite/internal/extract"
	"github.com/ppiankov/depocite/internal/model"
	"github.com/ppiankov/depocite/internal/resolve"
	"github.com/ppiankov/depocite/internal/score"
	"github.com/ppiankov/depocite/internal/source"
	"github.com/ppiankov/depocite/internal/transcript"
)

// Pipeline orchestrates the complete linking process
type Pipeline struct {
	loader    *source.Loader
	segmenter *extract.Segmenter
	scorer    *score.Scorer
	renderer  *Renderer
	reports   *cache.ReportCache // nil if caching is disabled
	config    *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	var reports *cache.ReportCache
	if cfg.Cache.Enabled {
		store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		reports = cache.NewReportCache(store, cfg.Cache.DiskTTL)
	}

	return &Pipeline{
		loader:    source.NewLoader(cfg.Transcript.PageMarker),
		segmenter: extract.NewSegmenter(citation.NewGrammar(cfg.Resolve.GrammarCache)),
		scorer:    score.NewScorer(cfg.Score),
		renderer:  NewRenderer(cfg.Output.IncludeFooter, cfg.Output.TextPreview),
		reports:   reports,
		config:    cfg,
	}
}

// Link resolves the citations of summary against transcript lines
func (p *Pipeline) Link(ctx context.Context, lines []string, summary string) (*model.Report, error) {
	// 1. Index transcript
	ix := transcript.Build(lines, transcript.WithPageMarker(p.config.Transcript.PageMarker))

	// 2. Segment summary into facts
	seg := p.segmenter.SegmentDetailed(summary)
	for _, d := range seg.Dropped {
		p.logf("Warning: dropped citation %q (%s)\n", d.Token, d.Reason)
	}

	// 3. Resolve ranges and uncited sections
	result, err := resolve.NewResolver(ix).ResolveParallel(ctx, seg.Facts, p.config.Resolve.IncludeUncited, p.config.Resolve.Workers)
	if err != nil {
		return nil, err
	}

	// 4. Score coverage
	scoreResult := p.scorer.Calculate(score.Input{
		NumberedLines: ix.NumberedPositions().Len(),
		Entries:       result.Narrative,
		Coverage:      result.Coverage,
		Facts:         len(seg.Facts),
		Dropped:       seg.Dropped,
	})

	return &model.Report{
		RunID:                uuid.NewString(),
		GeneratedAt:          time.Now().UTC(),
		SummaryWords:         model.CountWords(summary),
		Facts:                seg.Facts,
		CitationData:         result.Sorted,
		UnsortedCitationData: result.Narrative,
		Score:                scoreResult,
	}, nil
}

// LinkFiles loads a transcript and a summary from disk and links them.
// Reports are cached by input content and output-affecting options.
func (p *Pipeline) LinkFiles(ctx context.Context, transcriptPath, summaryPath string) (*model.Report, error) {
	tdoc, err := p.loader.LoadTranscript(transcriptPath)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	sdoc, err := p.loader.LoadSummary(summaryPath)
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}

	key := cache.ReportKey(tdoc.Raw, sdoc.Raw, p.optionsKey())
	if p.reports != nil {
		if report, found := p.reports.Get(key); found {
			p.logf("Cache hit: %s + %s\n", transcriptPath, summaryPath)
			p.label(report, transcriptPath, summaryPath)
			return report, nil
		}
	}

	report, err := p.Link(ctx, transcript.SplitLines(tdoc.Text), sdoc.Text)
	if err != nil {
		return nil, fmt.Errorf("link %s: %w", summaryPath, err)
	}
	p.label(report, transcriptPath, summaryPath)

	if p.reports != nil {
		if err := p.reports.Put(key, report); err != nil {
			// Don't fail the run, just warn
			fmt.Fprintf(os.Stderr, "Warning: failed to cache report: %v\n", err)
		}
	}

	return report, nil
}

func (p *Pipeline) label(report *model.Report, transcriptPath, summaryPath string) {
	report.Subject = model.SubjectFromPath(summaryPath)
	report.Transcript = transcriptPath
	report.Summary = summaryPath
}

// optionsKey lists the settings that change report content
func (p *Pipeline) optionsKey() string {
	cfg := p.config
	return fmt.Sprintf("marker=%q;uncited=%t;low=%g;critical=%g",
		cfg.Transcript.PageMarker, cfg.Resolve.IncludeUncited, cfg.Score.LowCoverage, cfg.Score.CriticalCoverage)
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	// Render JSON
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	// Render Markdown
	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// Print summary to stdout, unless stdout carries the JSON
	out := os.Stdout
	if jsonPath == "-" {
		out = os.Stderr
	}
	p.renderer.RenderSummary(out, report)

	return nil
}
