package resolve

import (
	"context"
	"fmt"

	"github.com/ppiankov/depocite/internal/model"
	"github.com/ppiankov/depocite/internal/worker"
)

// factJob resolves one fact on the worker pool
type factJob struct {
	index    int
	fact     model.Fact
	resolver *Resolver
}

// factResult carries a fact's entries and partial coverage
type factResult struct {
	index    int
	entries  []model.CitationEntry
	coverage model.CoverageSet
	err      error
}

func (r *factResult) GetError() error {
	return r.err
}

// Execute resolves the fact unless the pool was cancelled
func (j *factJob) Execute(ctx context.Context) worker.Result {
	if err := ctx.Err(); err != nil {
		return &factResult{index: j.index, err: err}
	}
	entries, coverage := j.resolver.resolveFact(j.fact)
	return &factResult{index: j.index, entries: entries, coverage: coverage}
}

// ResolveParallel resolves facts on a pool of workers. Each job builds a
// partial coverage set; partials are merged serially in fact order, so the
// result equals Resolve for the same input.
func (r *Resolver) ResolveParallel(ctx context.Context, facts []model.Fact, includeUncited bool, workers int) (Result, error) {
	if workers <= 1 || len(facts) < 2 {
		return r.Resolve(facts, includeUncited), nil
	}

	pool := worker.NewPoolWithContext(ctx, workers)
	pool.Start()
	for i, fact := range facts {
		pool.Submit(&factJob{index: i, fact: fact, resolver: r})
	}
	results := pool.Wait()

	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("resolve facts: %w", err)
	}

	ordered := make([]*factResult, len(facts))
	for _, res := range results {
		fr := res.(*factResult)
		if fr.err != nil {
			return Result{}, fmt.Errorf("resolve fact %d: %w", fr.index, fr.err)
		}
		ordered[fr.index] = fr
	}

	entries := make([]model.CitationEntry, 0, len(facts))
	coverage := model.NewCoverageSet()
	for i, fr := range ordered {
		if fr == nil {
			return Result{}, fmt.Errorf("resolve fact %d: no result", i)
		}
		entries = append(entries, fr.entries...)
		coverage = coverage.Union(fr.coverage)
	}

	return r.finish(entries, coverage, includeUncited), nil
}
