package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/depocite/internal/pipeline"
	"github.com/ppiankov/depocite/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// workers, pageMarker, noUncited, noCache and noFooter are defined in link.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Link many transcript/summary pairs from a manifest in parallel",
	Long: `Batch links every transcript/summary pair listed in a manifest file:
- One pair per line: <transcript><TAB><summary>
- Blank lines and lines starting with # are skipped
- Relative paths are resolved against the manifest's directory
- Pairs are processed in parallel with a configurable worker count
- A JSON and a Markdown report are written per pair

Example:
  depocite batch cases.tsv
  depocite batch cases.tsv --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of pairs linked concurrently")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./depocite-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")

	// Inherit flags from link command
	batchCmd.Flags().IntVar(&workers, "workers", 1, "workers resolving facts within one pair")
	batchCmd.Flags().StringVar(&pageMarker, "page-marker", "\f", "page-break marker in text transcripts")
	batchCmd.Flags().BoolVar(&noUncited, "no-uncited", false, "omit uncited transcript sections")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable report cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyLinkFlags(cmd, cfg)
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Depocite Batch Linking\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Manifest:     %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// Create pipeline and batch processor
	p := pipeline.NewPipeline(cfg)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)

	fmt.Fprintf(os.Stderr, "⚙️  Linking pairs with %d workers...\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "\n")

	pairs, err := worker.ReadPairsFromFile(file)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	results := processor.ProcessPairs(ctx, pairs)

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter, cfg.Output.TextPreview)
	used := make(map[string]bool)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Pair.Summary, result.Error)
			continue
		}

		// Generate output file names, suffixing repeated subjects
		slug := uniqueSlug(used, sanitizeFilename(result.Report.Subject))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Pair.Summary, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Pair.Summary, err)
			continue
		}

		successCount++
		stats := result.Report.Score.Stats
		fmt.Fprintf(os.Stderr, "✓ %s (coverage: %.1f%%, unresolved: %d)\n", result.Report.Subject, stats.CoveragePercent, stats.UnresolvedRanges)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d pairs\n", len(pairs))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if failureCount > 0 && successCount == 0 {
		return fmt.Errorf("all %d pairs failed", failureCount)
	}
	return nil
}

// uniqueSlug returns slug, or slug-N with the lowest N >= 2 not yet in used,
// and marks the result as used
func uniqueSlug(used map[string]bool, slug string) string {
	candidate := slug
	for n := 2; used[candidate]; n++ {
		candidate = fmt.Sprintf("%s-%d", slug, n)
	}
	used[candidate] = true
	return candidate
}

// sanitizeFilename makes a report subject safe to use as a file name
func sanitizeFilename(s string) string {
	s = strings.TrimSpace(filepath.Base(s))

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	if s == "" || s == "." || s == ".." {
		s = "report"
	}

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}

	return s
}
