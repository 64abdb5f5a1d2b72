package worker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/depocite/internal/model"
)

var errNotRun = errors.New("job was not run")

// Linker defines the interface for linking one summary to one transcript
type Linker interface {
	LinkFiles(ctx context.Context, transcriptPath, summaryPath string) (*model.Report, error)
}

// Pair names a transcript and the summary written about it
type Pair struct {
	Transcript string
	Summary    string
}

// LinkJob represents a single pair linking job
type LinkJob struct {
	Index  int
	Pair   Pair
	Linker Linker
}

// Execute executes the link job
func (j *LinkJob) Execute(ctx context.Context) Result {
	report, err := j.Linker.LinkFiles(ctx, j.Pair.Transcript, j.Pair.Summary)
	return &LinkResult{
		Index:  j.Index,
		Pair:   j.Pair,
		Report: report,
		Error:  err,
	}
}

// LinkResult represents the result of a link job
type LinkResult struct {
	Index  int
	Pair   Pair
	Report *model.Report
	Error  error
}

// GetError returns the error from the link result
func (r *LinkResult) GetError() error {
	return r.Error
}

// BatchProcessor links many pairs concurrently
type BatchProcessor struct {
	linker      Linker
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(linker Linker, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		linker:      linker,
		concurrency: concurrency,
	}
}

// ProcessPairs links every pair and returns results in input order
func (b *BatchProcessor) ProcessPairs(ctx context.Context, pairs []Pair) []*LinkResult {
	if len(pairs) == 0 {
		return []*LinkResult{}
	}

	pool := NewPoolWithContext(ctx, b.concurrency)
	pool.Start()

	for i, pair := range pairs {
		pool.Submit(&LinkJob{
			Index:  i,
			Pair:   pair,
			Linker: b.linker,
		})
	}

	results := pool.Wait()

	linkResults := make([]*LinkResult, len(pairs))
	for _, result := range results {
		lr := result.(*LinkResult)
		linkResults[lr.Index] = lr
	}

	// Pairs dropped by a cancelled pool still get a result
	for i, lr := range linkResults {
		if lr != nil {
			continue
		}
		cause := ctx.Err()
		if cause == nil {
			cause = errNotRun
		}
		linkResults[i] = &LinkResult{
			Index: i,
			Pair:  pairs[i],
			Error: fmt.Errorf("not linked: %w", cause),
		}
	}

	return linkResults
}

// ProcessFile reads pairs from a manifest file and links them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*LinkResult, error) {
	pairs, err := ReadPairsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read pairs: %w", err)
	}

	return b.ProcessPairs(ctx, pairs), nil
}

// ReadPairsFromFile reads "transcript<TAB>summary" lines from a manifest.
// Whitespace also separates the two paths when no tab is present. Relative
// paths resolve against the manifest's directory.
func ReadPairsFromFile(filePath string) ([]Pair, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(filePath)
	var pairs []Pair
	seen := make(map[Pair]bool)

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var fields []string
		if strings.Contains(line, "\t") {
			fields = strings.Split(line, "\t")
		} else {
			fields = strings.Fields(line)
		}
		if len(fields) != 2 {
			return nil, fmt.Errorf("line %d: expected transcript and summary paths, got %d fields", lineNo, len(fields))
		}

		pair := Pair{
			Transcript: resolvePath(base, strings.TrimSpace(fields[0])),
			Summary:    resolvePath(base, strings.TrimSpace(fields[1])),
		}

		// Deduplicate pairs
		if !seen[pair] {
			seen[pair] = true
			pairs = append(pairs, pair)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return pairs, nil
}

func resolvePath(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
