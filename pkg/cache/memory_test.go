package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emporiumlabs/emporium/internal/bytesize"
)

func TestMemorySetGet(t *testing.T) {
	c := NewMemory("emporium", 0)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "product:1", `{"id":1}`, 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, "product:1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != `{"id":1}` {
		t.Errorf("Get = %q, want %q", got, `{"id":1}`)
	}
}

func TestMemoryGetMissing(t *testing.T) {
	c := NewMemory("", 0)
	defer c.Close()

	_, err := c.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on missing key = %v, want ErrNotFound", err)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory("", 0)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "ephemeral", "v", 30*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, err := c.Get(ctx, "ephemeral"); err != nil {
		t.Fatalf("Get before expiry failed: %v", err)
	}

	time.Sleep(60 * time.Millisecond)

	if _, err := c.Get(ctx, "ephemeral"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry = %v, want ErrNotFound", err)
	}
	exists, err := c.Exists(ctx, "ephemeral")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Exists reported an expired key as live")
	}
}

func TestMemoryZeroTTLNeverExpires(t *testing.T) {
	c := NewMemory("", 0)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "durable", "v", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := c.Get(ctx, "durable"); err != nil {
		t.Errorf("zero-TTL entry expired: %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemory("", 0)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}

	// Deleting an absent key is not an error.
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func TestMemoryEviction(t *testing.T) {
	// Each entry is exactly 100 bytes: a 6-byte key plus a 94-byte value.
	c := NewMemory("", 1000)
	defer c.Close()
	ctx := context.Background()
	value := strings.Repeat("x", 94)

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("key-%02d", i)
		if err := c.Set(ctx, key, value, 0); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
		time.Sleep(time.Millisecond)
	}

	if _, err := c.Get(ctx, "key-19"); err != nil {
		t.Errorf("newest entry was evicted: %v", err)
	}
	if _, err := c.Get(ctx, "key-00"); !errors.Is(err, ErrNotFound) {
		t.Errorf("oldest entry survived a full budget of newer writes: %v", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Keys >= 20 {
		t.Errorf("expected eviction to shrink the cache, still holds %d keys", stats.Keys)
	}
	if stats.Keys > 10 {
		t.Errorf("cache holds %d keys, budget fits at most 10", stats.Keys)
	}
}

func TestMemoryEvictionKeepsRecentlyRead(t *testing.T) {
	// Budget fits two 100-byte entries; a third write must evict one.
	c := NewMemory("", 250)
	defer c.Close()
	ctx := context.Background()
	value := strings.Repeat("x", 98)

	if err := c.Set(ctx, "k1", value, 0); err != nil {
		t.Fatalf("Set k1 failed: %v", err)
	}
	time.Sleep(time.Millisecond)
	if err := c.Set(ctx, "k2", value, 0); err != nil {
		t.Fatalf("Set k2 failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	// Reading k1 makes k2 the least recently used entry.
	if _, err := c.Get(ctx, "k1"); err != nil {
		t.Fatalf("Get k1 failed: %v", err)
	}
	time.Sleep(time.Millisecond)

	if err := c.Set(ctx, "k3", value, 0); err != nil {
		t.Fatalf("Set k3 failed: %v", err)
	}

	if _, err := c.Get(ctx, "k1"); err != nil {
		t.Errorf("recently read entry was evicted: %v", err)
	}
	if _, err := c.Get(ctx, "k2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("least recently used entry survived: %v", err)
	}
	if _, err := c.Get(ctx, "k3"); err != nil {
		t.Errorf("just-written entry was evicted: %v", err)
	}
}

func TestMemoryOversizedValueNotStored(t *testing.T) {
	c := NewMemory("", 100)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "huge", strings.Repeat("x", 1024), 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := c.Get(ctx, "huge"); !errors.Is(err, ErrNotFound) {
		t.Errorf("oversized value was cached: %v", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Keys != 0 {
		t.Errorf("expected empty cache, got %d keys", stats.Keys)
	}
}

func TestMemoryStats(t *testing.T) {
	c := NewMemory("", 0)
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "a", "1", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set(ctx, "b", "2", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := c.Get(ctx, "a"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := c.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get = %v, want ErrNotFound", err)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Driver != "memory" {
		t.Errorf("Driver = %q, want memory", stats.Driver)
	}
	if stats.Keys != 2 {
		t.Errorf("Keys = %d, want 2", stats.Keys)
	}
	if stats.Hits != 1 {
		t.Errorf("Hits = %d, want 1", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}
	if stats.UsedMemory == "" {
		t.Error("UsedMemory is empty")
	}
}

func TestMemoryClose(t *testing.T) {
	c := NewMemory("", 0)
	ctx := context.Background()

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Set(ctx, "k", "v", 0); err == nil {
		t.Error("Set succeeded on a closed cache")
	}
	if _, err := c.Get(ctx, "k"); err == nil {
		t.Error("Get succeeded on a closed cache")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	c := NewMemory("", 64*1024)
	defer c.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("key-%d", i%10)
				_ = c.Set(ctx, key, strings.Repeat("v", 50), time.Minute)
				_, _ = c.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Keys == 0 {
		t.Error("expected entries to survive concurrent access")
	}
}

func TestCacheConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Driver != "memory" {
		t.Errorf("Driver = %q, want memory", cfg.Driver)
	}
	if cfg.TTL != 5*time.Minute {
		t.Errorf("TTL = %v, want 5m", cfg.TTL)
	}
	if cfg.Memory.MaxBytes != 64*bytesize.MiB {
		t.Errorf("Memory.MaxBytes = %v, want 64Mi", cfg.Memory.MaxBytes)
	}
	if cfg.Redis.Host != "localhost" {
		t.Errorf("Redis.Host = %q, want localhost", cfg.Redis.Host)
	}
	if cfg.Redis.Port != 6379 {
		t.Errorf("Redis.Port = %d, want 6379", cfg.Redis.Port)
	}

	// Explicit settings are preserved.
	cfg = Config{Driver: "redis", TTL: time.Minute}
	cfg.ApplyDefaults()
	if cfg.Driver != "redis" {
		t.Errorf("Driver = %q, want redis", cfg.Driver)
	}
	if cfg.TTL != time.Minute {
		t.Errorf("TTL = %v, want 1m", cfg.TTL)
	}
}
