package cache

import (
	"testing"
	"time"
)

func TestTTLCacheExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newTTLCache[string, int](func() time.Time { return now })

	c.Set("a", 1, time.Minute)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("expected cached value, got %v %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestTTLCachePurge(t *testing.T) {
	c := NewTTLCache[string, string]()
	c.Set("x", "1", 0)
	c.Set("y", "2", time.Hour)
	c.Purge()

	if _, ok := c.Get("x"); ok {
		t.Fatalf("expected purge to drop x")
	}
	if _, ok := c.Get("y"); ok {
		t.Fatalf("expected purge to drop y")
	}
}
