// Package cache stores finished reports so relinking an unchanged
// transcript/summary pair is free.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/depocite/internal/model"
)

// keyPrefix is bumped whenever the report layout changes
const keyPrefix = "depocite:v1:"

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// ReportKey derives a cache key from the raw inputs of a linking run and
// the options that affect its output. Parts are length-prefixed so moving
// bytes between transcript and summary changes the key.
func ReportKey(transcript, summary []byte, options string) string {
	h := sha256.New()
	for _, part := range [][]byte{transcript, summary, []byte(options)} {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(len(part)))
		h.Write(n[:])
		h.Write(part)
	}
	return keyPrefix + hex.EncodeToString(h.Sum(nil))
}

// ReportCache stores reports as JSON in an underlying byte cache
type ReportCache struct {
	store Cache
	ttl   time.Duration
}

// NewReportCache wraps store; a zero ttl defers to the store's default
func NewReportCache(store Cache, ttl time.Duration) *ReportCache {
	return &ReportCache{store: store, ttl: ttl}
}

// Get returns the cached report for key. Undecodable entries are evicted.
func (c *ReportCache) Get(key string) (*model.Report, bool) {
	data, found := c.store.Get(key)
	if !found {
		return nil, false
	}

	var report model.Report
	if err := json.Unmarshal(data, &report); err != nil {
		_ = c.store.Delete(key)
		return nil, false
	}
	return &report, true
}

// Put stores report under key
func (c *ReportCache) Put(key string, report *model.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return c.store.Set(key, data, c.ttl)
}
