package memory

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := NewCache(10)

	if !c.Set("task_123", map[string]any{"status": "completed"}, time.Minute) {
		t.Fatal("set failed")
	}
	value, ok := c.Get("task_123")
	if !ok {
		t.Fatal("get missed")
	}
	if m := value.(map[string]any); m["status"] != "completed" {
		t.Fatalf("value = %v", m)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("hit on unknown key")
	}
	if c.Set("", 1, time.Minute) {
		t.Fatal("empty key accepted")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(10)
	c.Set("short", 1, 10*time.Millisecond)
	c.Set("long", 2, time.Minute)

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Fatal("expired entry still readable")
	}
	if _, ok := c.Get("long"); !ok {
		t.Fatal("unexpired entry dropped")
	}
}

func TestCacheCleanupExpired(t *testing.T) {
	c := NewCache(10)
	c.Set("a", 1, 10*time.Millisecond)
	c.Set("b", 2, 10*time.Millisecond)
	c.Set("c", 3, time.Minute)

	time.Sleep(20 * time.Millisecond)

	if removed := c.CleanupExpired(); removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if stats := c.GetStats(); stats.Size != 1 {
		t.Fatalf("size = %d, want 1", stats.Size)
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := NewCache(10)
	c.Set("a", 1, time.Minute)

	if !c.Delete("a") {
		t.Fatal("delete missed existing key")
	}
	if c.Delete("a") {
		t.Fatal("delete hit removed key")
	}

	c.Set("b", 2, time.Minute)
	c.Clear()
	if stats := c.GetStats(); stats.Size != 0 {
		t.Fatalf("size after clear = %d", stats.Size)
	}
}

func TestCacheRespectsMaxSize(t *testing.T) {
	c := NewCache(2)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	if c.Set("c", 3, time.Minute) {
		t.Fatal("set beyond max size accepted")
	}
	// Overwriting an existing key is always allowed.
	if !c.Set("a", 10, time.Minute) {
		t.Fatal("overwrite rejected at capacity")
	}

	stats := c.GetStats()
	if stats.Size != 2 || stats.UsagePercent != 100 {
		t.Fatalf("stats = %+v", stats)
	}
}
