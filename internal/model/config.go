package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all depocite settings
type Config struct {
	Transcript  TranscriptConfig  `yaml:"transcript" mapstructure:"transcript"`
	Resolve     ResolveConfig     `yaml:"resolve" mapstructure:"resolve"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Score       ScoreConfig       `yaml:"score" mapstructure:"score"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// TranscriptConfig controls transcript indexing
type TranscriptConfig struct {
	PageMarker string `yaml:"page_marker" mapstructure:"page_marker"` // Page-break marker, form feed by default
}

// ResolveConfig controls citation resolution
type ResolveConfig struct {
	IncludeUncited bool `yaml:"include_uncited" mapstructure:"include_uncited"`
	Workers        int  `yaml:"workers" mapstructure:"workers"` // >1 resolves facts in parallel
	GrammarCache   int  `yaml:"grammar_cache" mapstructure:"grammar_cache"`
}

// CacheConfig controls the report cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ScoreConfig holds coverage thresholds (percent)
type ScoreConfig struct {
	LowCoverage      float64 `yaml:"low_coverage" mapstructure:"low_coverage"`
	CriticalCoverage float64 `yaml:"critical_coverage" mapstructure:"critical_coverage"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
	TextPreview   int  `yaml:"text_preview" mapstructure:"text_preview"` // Characters of entry text in Markdown
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Transcript: TranscriptConfig{
			PageMarker: "\f",
		},
		Resolve: ResolveConfig{
			IncludeUncited: true,
			Workers:        1,
			GrammarCache:   4096,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       defaultCacheDir(),
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Score: ScoreConfig{
			LowCoverage:      50,
			CriticalCoverage: 20,
		},
		Output: OutputConfig{
			IncludeFooter: true,
			TextPreview:   160,
		},
	}
}

// defaultCacheDir returns ~/.depocite/cache, falling back to the temp dir
func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "depocite-cache")
	}
	return filepath.Join(home, ".depocite", "cache")
}
