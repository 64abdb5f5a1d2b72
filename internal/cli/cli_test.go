package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/depocite/internal/model"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	if err := registerDefaults(model.DefaultConfig()); err != nil {
		t.Fatalf("registerDefaults failed: %v", err)
	}
	viper.SetEnvPrefix("DEPOCITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func TestLoadConfig_Defaults(t *testing.T) {
	resetViper(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Transcript.PageMarker != want.Transcript.PageMarker {
		t.Errorf("Expected page marker %q, got %q", want.Transcript.PageMarker, cfg.Transcript.PageMarker)
	}
	if cfg.Cache.MemoryTTL != want.Cache.MemoryTTL || cfg.Cache.DiskTTL != want.Cache.DiskTTL {
		t.Errorf("Expected TTLs %v/%v, got %v/%v", want.Cache.MemoryTTL, want.Cache.DiskTTL, cfg.Cache.MemoryTTL, cfg.Cache.DiskTTL)
	}
	if !cfg.Resolve.IncludeUncited {
		t.Error("Expected uncited sections on by default")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DEPOCITE_RESOLVE_WORKERS", "3")
	t.Setenv("DEPOCITE_CACHE_MEMORY_TTL", "5m")
	t.Setenv("DEPOCITE_SCORE_LOW_COVERAGE", "65.5")
	resetViper(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}

	if cfg.Resolve.Workers != 3 {
		t.Errorf("Expected 3 workers from env, got %d", cfg.Resolve.Workers)
	}
	if cfg.Cache.MemoryTTL != 5*time.Minute {
		t.Errorf("Expected 5m memory TTL from env, got %v", cfg.Cache.MemoryTTL)
	}
	if cfg.Score.LowCoverage != 65.5 {
		t.Errorf("Expected low coverage 65.5 from env, got %v", cfg.Score.LowCoverage)
	}
}

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}
	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected second write to refuse overwriting")
	}

	resetViper(t)
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("Generated config does not parse: %v", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig failed: %v", err)
	}
	want := model.DefaultConfig()
	if cfg.Transcript.PageMarker != "\f" {
		t.Errorf("Expected form feed marker to survive YAML, got %q", cfg.Transcript.PageMarker)
	}
	if cfg.Resolve.GrammarCache != want.Resolve.GrammarCache || cfg.Concurrency.Workers != want.Concurrency.Workers {
		t.Errorf("Unexpected config after round trip: %+v", cfg)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "# Depocite Configuration File") {
		t.Error("Expected header comment")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"smith-summary", "smith-summary"},
		{"Smith v. Jones: day 2", "Smith-v.-Jones_-day-2"},
		{"dir/name", "name"},
		{"", "report"},
		{strings.Repeat("a", 150), strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueSlug_AvoidsLiteralSuffixCollision(t *testing.T) {
	used := make(map[string]bool)

	got := []string{
		uniqueSlug(used, "x"),
		uniqueSlug(used, "x-2"),
		uniqueSlug(used, "x"),
		uniqueSlug(used, "x"),
	}

	want := []string{"x", "x-2", "x-3", "x-4"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("slug %d: got %q, want %q", i, got[i], want[i])
		}
	}
}
