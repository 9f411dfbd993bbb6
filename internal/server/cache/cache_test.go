package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/agentstation/dnmerge/pkg/report"
)

// TestCache_New tests cache creation.
func TestCache_New(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)
	if c == nil {
		t.Fatal("New() returned nil")
	}
	if c.store == nil {
		t.Error("cache store not initialized")
	}
	if c.TTL() != 5*time.Minute {
		t.Errorf("expected TTL 5m, got %s", c.TTL())
	}
}

// TestCache_PutGet tests storing and retrieving entries.
func TestCache_PutGet(t *testing.T) {
	c := New(5*time.Minute, 10*time.Minute)

	e := &Entry{
		RunID:    "run-1",
		Filename: "reconciliation_result.xlsx",
		Summary:  report.Summary{Total: 3},
		Workbook: []byte("PK"),
	}
	c.Put(e)

	got, found := c.Get("run-1")
	if !found {
		t.Fatal("expected run-1 to be found")
	}
	if got.Summary.Total != 3 {
		t.Errorf("expected total 3, got %d", got.Summary.Total)
	}
	if got.Size() != 2 {
		t.Errorf("expected size 2, got %d", got.Size())
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not stamped")
	}
	if d := got.ExpiresAt.Sub(got.CreatedAt); d != 5*time.Minute {
		t.Errorf("expected expiry 5m after creation, got %s", d)
	}

	if _, found := c.Get("missing"); found {
		t.Error("expected missing entry to not be found")
	}

	c.Delete("run-1")
	if _, found := c.Get("run-1"); found {
		t.Error("expected run-1 to be deleted")
	}
}

// TestCache_Expiration tests that entries expire after the TTL.
func TestCache_Expiration(t *testing.T) {
	c := New(50*time.Millisecond, 10*time.Millisecond)
	c.Put(&Entry{RunID: "short"})

	if _, found := c.Get("short"); !found {
		t.Fatal("expected entry before expiry")
	}

	time.Sleep(100 * time.Millisecond)

	if _, found := c.Get("short"); found {
		t.Error("expected entry to expire")
	}
}

// TestCache_Stats tests statistics and Clear.
func TestCache_Stats(t *testing.T) {
	c := New(time.Minute, time.Minute)
	c.Put(&Entry{RunID: "a", Workbook: make([]byte, 10)})
	c.Put(&Entry{RunID: "b", Workbook: make([]byte, 5)})

	stats := c.GetStats()
	if stats.ItemCount != 2 {
		t.Errorf("expected 2 items, got %d", stats.ItemCount)
	}
	if stats.Bytes != 15 {
		t.Errorf("expected 15 bytes, got %d", stats.Bytes)
	}
	if stats.TTL != "1m0s" {
		t.Errorf("expected ttl 1m0s, got %s", stats.TTL)
	}

	c.Clear()
	if c.ItemCount() != 0 {
		t.Errorf("expected empty cache, got %d", c.ItemCount())
	}
}

// TestCache_Concurrent tests concurrent access.
func TestCache_Concurrent(t *testing.T) {
	c := New(time.Minute, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			c.Put(&Entry{RunID: id})
			c.Get(id)
		}(i)
	}
	wg.Wait()

	if c.ItemCount() != 26 {
		t.Errorf("expected 26 items, got %d", c.ItemCount())
	}
}
