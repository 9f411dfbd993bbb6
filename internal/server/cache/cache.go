// Package cache keeps finished reconciliation workbooks in memory so they
// can be downloaded after a JSON run. Entries expire after a TTL; it uses
// patrickmn/go-cache for expiry and janitor cleanup.
package cache

import (
	"time"

	"github.com/agentstation/utc"
	gocache "github.com/patrickmn/go-cache"

	"github.com/agentstation/dnmerge/pkg/report"
)

// Entry is a stored result.
type Entry struct {
	RunID     string         `json:"runId"`
	Filename  string         `json:"filename"`
	Summary   report.Summary `json:"summary"`
	CreatedAt utc.Time       `json:"createdAt"`
	ExpiresAt utc.Time       `json:"expiresAt"`

	// Workbook is the exported XLSX.
	Workbook []byte `json:"-"`
}

// Size returns the workbook size in bytes.
func (e *Entry) Size() int {
	return len(e.Workbook)
}

// Cache stores result entries by run ID.
type Cache struct {
	store *gocache.Cache
	ttl   time.Duration
}

// New creates a cache whose entries live for ttl.
// cleanupInterval is how often expired entries are removed from memory.
func New(ttl, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// TTL returns how long entries are kept.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Put stores e under its run ID and stamps its timestamps.
func (c *Cache) Put(e *Entry) {
	now := utc.Now()
	e.CreatedAt = now
	e.ExpiresAt = now.Add(c.ttl)
	c.store.Set(e.RunID, e, gocache.DefaultExpiration)
}

// Get returns the entry stored for runID.
func (c *Cache) Get(runID string) (*Entry, bool) {
	v, ok := c.store.Get(runID)
	if !ok {
		return nil, false
	}
	e, ok := v.(*Entry)
	return e, ok
}

// Delete removes the entry stored for runID.
func (c *Cache) Delete(runID string) {
	c.store.Delete(runID)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of stored entries, including expired ones
// not yet cleaned up.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// Stats returns cache statistics.
type Stats struct {
	ItemCount int    `json:"item_count"`
	Bytes     int    `json:"bytes"`
	TTL       string `json:"ttl"`
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	stats := Stats{TTL: c.ttl.String()}
	for _, item := range c.store.Items() {
		if e, ok := item.Object.(*Entry); ok {
			stats.ItemCount++
			stats.Bytes += e.Size()
		}
	}
	return stats
}
