package score

import (
	"fmt"
	"sort"

	"github.com/ppiankov/depocite/internal/extract"
	"github.com/ppiankov/depocite/internal/model"
)

// maxListed caps the examples carried in signal data
const maxListed = 20

// Input is everything the scorer looks at for one report
type Input struct {
	NumberedLines int                   // Numbered, non-blank transcript lines
	Entries       []model.CitationEntry // Narrative view, cited and uncited
	Coverage      model.CoverageSet
	Facts         int
	Dropped       []extract.DroppedToken
}

// Scorer calculates coverage statistics and generates signals
type Scorer struct {
	lowCoverage      float64
	criticalCoverage float64
}

// NewScorer creates a new scorer with the given coverage thresholds
func NewScorer(cfg model.ScoreConfig) *Scorer {
	return &Scorer{
		lowCoverage:      cfg.LowCoverage,
		criticalCoverage: cfg.CriticalCoverage,
	}
}

// Calculate computes the stats of a linking run and its diagnostic signals
func (s *Scorer) Calculate(in Input) model.Score {
	stats := s.stats(in)
	signals := []model.Signal{s.coverageSignal(stats)}

	// Unresolved ranges
	if sig, ok := s.unresolvedSignal(in.Entries); ok {
		signals = append(signals, sig)
	}

	// Dropped tokens
	if sig, ok := s.droppedSignal(in.Dropped); ok {
		signals = append(signals, sig)
	}

	// Lines attributed by more than one range
	if sig, ok := s.overlapSignal(in.Entries); ok {
		signals = append(signals, sig)
	}

	return model.Score{
		Stats:   stats,
		Signals: signals,
	}
}

func (s *Scorer) stats(in Input) model.Stats {
	stats := model.Stats{
		NumberedLines: in.NumberedLines,
		CitedLines:    in.Coverage.Len(),
		Facts:         in.Facts,
		DroppedTokens: len(in.Dropped),
	}

	for _, e := range in.Entries {
		if !e.IsCited {
			stats.UncitedSections++
			continue
		}
		stats.CitedEntries++
		if !e.Resolved() {
			stats.UnresolvedRanges++
		}
	}

	if stats.NumberedLines > 0 {
		stats.CoveragePercent = float64(stats.CitedLines) / float64(stats.NumberedLines) * 100
	}
	return stats
}

// coverageSignal reports the share of numbered lines some citation covers
func (s *Scorer) coverageSignal(stats model.Stats) model.Signal {
	if stats.NumberedLines == 0 {
		return model.Signal{
			Type:        model.SignalCoverage,
			Severity:    model.SeverityCritical,
			Description: "Transcript has no numbered lines",
			Data: map[string]any{
				"numbered_lines": 0,
				"cited_lines":    stats.CitedLines,
			},
		}
	}

	severity := model.SeverityInfo
	if stats.CoveragePercent < s.criticalCoverage {
		severity = model.SeverityCritical
	} else if stats.CoveragePercent < s.lowCoverage {
		severity = model.SeverityWarning
	}

	return model.Signal{
		Type:        model.SignalCoverage,
		Severity:    severity,
		Description: fmt.Sprintf("Cited %d of %d transcript lines (%.1f%%)", stats.CitedLines, stats.NumberedLines, stats.CoveragePercent),
		Data: map[string]any{
			"numbered_lines":     stats.NumberedLines,
			"cited_lines":        stats.CitedLines,
			"coverage_percent":   stats.CoveragePercent,
			"low_threshold":      s.lowCoverage,
			"critical_threshold": s.criticalCoverage,
			"formula":            "cited_lines / numbered_lines * 100",
		},
	}
}

// unresolvedSignal lists cited ranges that matched no transcript text
func (s *Scorer) unresolvedSignal(entries []model.CitationEntry) (model.Signal, bool) {
	var ranges []string
	for _, e := range entries {
		if e.IsCited && !e.Resolved() {
			ranges = append(ranges, e.CitationPart)
		}
	}
	if len(ranges) == 0 {
		return model.Signal{}, false
	}

	return model.Signal{
		Type:        model.SignalUnresolvedRange,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d cited range(s) matched no transcript text", len(ranges)),
		Data: map[string]any{
			"count":  len(ranges),
			"ranges": truncate(ranges),
		},
	}, true
}

// droppedSignal reports citation-like tokens that produced no fact
func (s *Scorer) droppedSignal(dropped []extract.DroppedToken) (model.Signal, bool) {
	if len(dropped) == 0 {
		return model.Signal{}, false
	}

	reasons := make(map[string]int)
	tokens := make([]string, 0, len(dropped))
	for _, d := range dropped {
		reasons[string(d.Reason)]++
		tokens = append(tokens, d.Token)
	}

	return model.Signal{
		Type:        model.SignalDroppedCitation,
		Severity:    model.SeverityWarning,
		Description: fmt.Sprintf("%d citation token(s) were dropped", len(dropped)),
		Data: map[string]any{
			"count":   len(dropped),
			"reasons": reasons,
			"tokens":  truncate(tokens),
		},
	}, true
}

// overlapSignal counts numbered lines cited by more than one range
func (s *Scorer) overlapSignal(entries []model.CitationEntry) (model.Signal, bool) {
	hits := make(map[model.PositionKey]int)
	for _, e := range entries {
		if !e.IsCited {
			continue
		}
		for _, pos := range e.Lines {
			if pos.Line == nil {
				continue
			}
			hits[pos.Key()]++
		}
	}

	var overlapping []model.PositionKey
	for key, n := range hits {
		if n > 1 {
			overlapping = append(overlapping, key)
		}
	}
	if len(overlapping) == 0 {
		return model.Signal{}, false
	}

	sort.Slice(overlapping, func(i, j int) bool {
		if overlapping[i].Page != overlapping[j].Page {
			return overlapping[i].Page < overlapping[j].Page
		}
		return overlapping[i].Line < overlapping[j].Line
	})

	examples := make([]string, 0, len(overlapping))
	for _, key := range overlapping {
		examples = append(examples, fmt.Sprintf("%d:%d", key.Page, key.Line))
	}

	return model.Signal{
		Type:        model.SignalOverlappingCitation,
		Severity:    model.SeverityInfo,
		Description: fmt.Sprintf("%d transcript line(s) are cited more than once", len(overlapping)),
		Data: map[string]any{
			"count": len(overlapping),
			"lines": truncate(examples),
		},
	}, true
}

func truncate(items []string) []string {
	if len(items) > maxListed {
		return items[:maxListed]
	}
	return items
}
