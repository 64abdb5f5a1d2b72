package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/depocite/internal/model"
)

func TestReportKey_Stable(t *testing.T) {
	a := ReportKey([]byte("transcript"), []byte("summary"), "opts")
	b := ReportKey([]byte("transcript"), []byte("summary"), "opts")

	if a != b {
		t.Errorf("Expected identical keys, got %s and %s", a, b)
	}
	if !strings.HasPrefix(a, "depocite:v1:") {
		t.Errorf("Expected versioned prefix, got %s", a)
	}
}

func TestReportKey_DistinguishesInputs(t *testing.T) {
	base := ReportKey([]byte("ab"), []byte("c"), "x")

	others := []string{
		ReportKey([]byte("a"), []byte("bc"), "x"),
		ReportKey([]byte("ab"), []byte("c"), "y"),
		ReportKey([]byte("ab"), []byte("cd"), "x"),
	}
	for i, k := range others {
		if k == base {
			t.Errorf("Case %d: expected a different key", i)
		}
	}
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	value := []byte("report")
	if err := c.Set("k", value, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	value[0] = 'X'

	got, found := c.Get("k")
	if !found || string(got) != "report" {
		t.Errorf("Expected stored copy %q, got %q (found=%v)", "report", got, found)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", c.Len())
	}

	_ = c.Delete("k")
	if _, found := c.Get("k"); found {
		t.Error("Expected entry to be deleted")
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	_ = c.Set("k", []byte("v"), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Expected entry to expire")
	}
}

func TestDiskCache_RoundTripAndShard(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)
	key := ReportKey([]byte("t"), []byte("s"), "")

	if err := c.Set(key, []byte("payload"), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, found := c.Get(key)
	if !found || string(got) != "payload" {
		t.Fatalf("Expected payload, got %q (found=%v)", got, found)
	}

	hash := strings.TrimPrefix(key, "depocite:v1:")
	if _, err := os.Stat(filepath.Join(dir, hash[:2], hash+".cache")); err != nil {
		t.Errorf("Expected sharded cache file: %v", err)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, hash[:2], "tmp-*"))
	if len(leftovers) != 0 {
		t.Errorf("Expected no temp files, found %v", leftovers)
	}
}

func TestDiskCache_Expired(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("depocite:v1:abcd", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	if _, found := c.Get("depocite:v1:abcd"); found {
		t.Error("Expected expired entry to miss")
	}
	if _, err := os.Stat(c.path("depocite:v1:abcd")); !os.IsNotExist(err) {
		t.Error("Expected expired entry file to be removed")
	}
}

func TestDiskCache_DeleteMissingAndClear(t *testing.T) {
	dir := t.TempDir()
	c := NewDiskCache(dir, time.Hour)

	if err := c.Delete("depocite:v1:missing"); err != nil {
		t.Errorf("Expected deleting a missing entry to succeed, got %v", err)
	}

	_ = c.Set("depocite:v1:aa11", []byte("1"), 0)
	_ = c.Set("depocite:v1:bb22", []byte("2"), 0)
	keep := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(keep, []byte("keep"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, found := c.Get("depocite:v1:aa11"); found {
		t.Error("Expected cleared entry to miss")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("Expected Clear to leave unrelated files alone")
	}
}

func TestLayeredCache_PromotesFromDisk(t *testing.T) {
	dir := t.TempDir()
	layered := NewLayeredCache(time.Minute, dir, time.Hour)

	// Written by an earlier process: disk only
	disk := NewDiskCache(dir, time.Hour)
	_ = disk.Set("depocite:v1:cc33", []byte("from disk"), 0)

	got, found := layered.Get("depocite:v1:cc33")
	if !found || string(got) != "from disk" {
		t.Fatalf("Expected disk hit, got %q (found=%v)", got, found)
	}
	if _, found := layered.memory.Get("depocite:v1:cc33"); !found {
		t.Error("Expected entry promoted to memory")
	}

	if err := layered.Delete("depocite:v1:cc33"); err != nil {
		t.Errorf("Delete failed: %v", err)
	}
	if _, found := layered.Get("depocite:v1:cc33"); found {
		t.Error("Expected entry removed from both layers")
	}
}

func TestReportCache_PutGet(t *testing.T) {
	rc := NewReportCache(NewMemoryCache(time.Minute, time.Minute), 0)
	report := &model.Report{
		RunID:        "run-1",
		Subject:      "smith",
		SummaryWords: 42,
		CitationData: []model.CitationEntry{{ID: "citation_1_page_1_page", StartPage: 1, EndPage: 1, IsCited: true}},
	}

	if err := rc.Put("k", report); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, found := rc.Get("k")
	if !found {
		t.Fatal("Expected report hit")
	}
	if got.RunID != "run-1" || got.SummaryWords != 42 || len(got.CitationData) != 1 {
		t.Errorf("Unexpected cached report: %+v", got)
	}
}

func TestReportCache_EvictsCorruptEntry(t *testing.T) {
	store := NewMemoryCache(time.Minute, time.Minute)
	rc := NewReportCache(store, 0)

	_ = store.Set("k", []byte("{not json"), 0)

	if _, found := rc.Get("k"); found {
		t.Error("Expected corrupt entry to miss")
	}
	if _, found := store.Get("k"); found {
		t.Error("Expected corrupt entry to be evicted")
	}
}
