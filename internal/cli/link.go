package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/depocite/internal/model"
	"github.com/ppiankov/depocite/internal/pipeline"
)

var (
	outJSON    string
	outMD      string
	timeout    time.Duration
	workers    int
	pageMarker string
	noUncited  bool
	noCache    bool
	noFooter   bool
)

// linkCmd represents the link command
var linkCmd = &cobra.Command{
	Use:   "link <transcript> <summary>",
	Short: "Link the citations of one summary to its transcript",
	Long: `Link reads a deposition transcript (.txt with form-feed page breaks, or .pdf)
and a summary (.txt, .md, .html or .pdf), then:
- Splits the summary into facts, each followed by a citation
- Resolves every cited page/line range to transcript text
- Groups uncited transcript lines into sections
- Reports coverage, unresolved ranges and dropped citations

Example:
  depocite link smith-depo.txt smith-summary.md
  depocite link smith-depo.pdf smith-summary.html --json - --md smith.md
  depocite link smith-depo.txt smith-summary.md --no-uncited --workers 4`,
	Args: cobra.ExactArgs(2),
	RunE: runLink,
}

func init() {
	rootCmd.AddCommand(linkCmd)

	// Output flags
	linkCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (- for stdout)")
	linkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Linking flags
	linkCmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "overall link timeout")
	linkCmd.Flags().IntVar(&workers, "workers", 1, "workers resolving facts in parallel")
	linkCmd.Flags().StringVar(&pageMarker, "page-marker", "\f", "page-break marker in text transcripts")
	linkCmd.Flags().BoolVar(&noUncited, "no-uncited", false, "omit uncited transcript sections")
	linkCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable report cache")
	linkCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runLink(cmd *cobra.Command, args []string) error {
	transcriptPath, summaryPath := args[0], args[1]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyLinkFlags(cmd, cfg)

	if verbose {
		fmt.Fprintf(os.Stderr, "Transcript: %s\n", transcriptPath)
		fmt.Fprintf(os.Stderr, "Summary:    %s\n", summaryPath)
		fmt.Fprintf(os.Stderr, "Workers:    %d\n", cfg.Resolve.Workers)
		fmt.Fprintf(os.Stderr, "Cache:      %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	// Create pipeline
	p := pipeline.NewPipeline(cfg)

	if verbose {
		fmt.Fprintf(os.Stderr, "⚙️  Linking citations...\n")
	}

	report, err := p.LinkFiles(ctx, transcriptPath, summaryPath)
	if err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	if verbose {
		stats := report.Score.Stats
		fmt.Fprintf(os.Stderr, "✓ Segmented %d facts (%d tokens dropped)\n", stats.Facts, stats.DroppedTokens)
		fmt.Fprintf(os.Stderr, "✓ Resolved %d ranges (%d unresolved)\n", stats.CitedEntries, stats.UnresolvedRanges)
		fmt.Fprintf(os.Stderr, "✓ Found %d uncited sections\n", stats.UncitedSections)
		fmt.Fprintln(os.Stderr)
	}

	// Render outputs
	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// applyLinkFlags overlays explicitly set flags on cfg
func applyLinkFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Resolve.Workers = workers
	}
	if flags.Changed("page-marker") {
		cfg.Transcript.PageMarker = pageMarker
	}
	if noUncited {
		cfg.Resolve.IncludeUncited = false
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
}
