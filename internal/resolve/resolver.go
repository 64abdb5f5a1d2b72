// Package resolve links summary facts to transcript text and derives the
// cited/uncited view of a transcript.
package resolve

import (
	"fmt"
	"sort"

	"github.com/ppiankov/depocite/internal/model"
	"github.com/ppiankov/depocite/internal/transcript"
)

// Result holds both views of a resolution pass
type Result struct {
	Narrative []model.CitationEntry // Cited entries in fact order, then uncited sections
	Sorted    []model.CitationEntry // Stable sort by start page and start line
	Coverage  model.CoverageSet     // Numbered lines attributed to some citation
}

// Cited returns the cited entries of the narrative view
func (r Result) Cited() []model.CitationEntry {
	out := make([]model.CitationEntry, 0, len(r.Narrative))
	for _, e := range r.Narrative {
		if e.IsCited {
			out = append(out, e)
		}
	}
	return out
}

// Resolver maps fact citations onto a transcript index
type Resolver struct {
	index *transcript.Index
}

// NewResolver creates a resolver over ix
func NewResolver(ix *transcript.Index) *Resolver {
	return &Resolver{index: ix}
}

// Resolve resolves every range of every fact. Coverage is threaded through
// the facts as a fold; unmatched ranges keep the placeholder text.
func (r *Resolver) Resolve(facts []model.Fact, includeUncited bool) Result {
	entries := make([]model.CitationEntry, 0, len(facts))
	coverage := model.NewCoverageSet()

	for _, fact := range facts {
		factEntries, factCoverage := r.resolveFact(fact)
		entries = append(entries, factEntries...)
		coverage = coverage.Union(factCoverage)
	}

	return r.finish(entries, coverage, includeUncited)
}

// resolveFact returns one entry per range of fact and the lines they cover
func (r *Resolver) resolveFact(fact model.Fact) ([]model.CitationEntry, model.CoverageSet) {
	entries := make([]model.CitationEntry, 0, len(fact.Ranges))
	coverage := model.NewCoverageSet()

	for _, rng := range fact.Ranges {
		entry := r.index.RetrieveTextForRange(rng.FromPage, rng.ToPage, rng.FromLine, rng.ToLine)
		entry.IsCited = true
		entry.CitationStr = fact.CitationToken
		entry.CitationPart = Label(rng)
		entry.SummaryFact = fact.Text
		entry.Page = entry.StartPage

		coverage.Union(r.index.CitedRanges(rng.FromPage, rng.ToPage, rng.FromLine, rng.ToLine))
		entries = append(entries, entry)
	}

	return entries, coverage
}

func (r *Resolver) finish(entries []model.CitationEntry, coverage model.CoverageSet, includeUncited bool) Result {
	if includeUncited {
		entries = append(entries, r.index.UncitedSections(coverage)...)
	}

	return Result{
		Narrative: entries,
		Sorted:    SortEntries(entries),
		Coverage:  coverage,
	}
}

// Label renders the compact display form of a single range:
// P:L-P:L, P:L-L, P-P or P
func Label(rng model.CitationRange) string {
	crossesPages := rng.ToPage != 0 && rng.ToPage != rng.FromPage

	if rng.FromLine != nil && rng.ToLine != nil {
		if crossesPages {
			return fmt.Sprintf("%d:%d-%d:%d", rng.FromPage, *rng.FromLine, rng.ToPage, *rng.ToLine)
		}
		return fmt.Sprintf("%d:%d-%d", rng.FromPage, *rng.FromLine, *rng.ToLine)
	}

	if crossesPages {
		return fmt.Sprintf("%d-%d", rng.FromPage, rng.ToPage)
	}
	return fmt.Sprintf("%d", rng.FromPage)
}

// SortEntries returns a copy of entries ordered by start page, then start line
// (unset lines sort as 0). Ties keep their original order.
func SortEntries(entries []model.CitationEntry) []model.CitationEntry {
	sorted := make([]model.CitationEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StartPage != sorted[j].StartPage {
			return sorted[i].StartPage < sorted[j].StartPage
		}
		return lineOrZero(sorted[i].StartLine) < lineOrZero(sorted[j].StartLine)
	})
	return sorted
}

func lineOrZero(line *int) int {
	if line == nil {
		return 0
	}
	return *line
}
