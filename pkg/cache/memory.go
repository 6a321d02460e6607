package cache

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/emporiumlabs/emporium/internal/bytesize"
)

// evictTargetPercent is where eviction stops, as a share of the byte
// budget. Stopping short of the budget keeps back-to-back writes from
// evicting on every call.
const evictTargetPercent = 90

type memoryEntry struct {
	value     string
	size      int64
	expiresAt time.Time
	noExpire  bool
	lastUsed  time.Time
}

// memoryClient is the in-process driver: a map with per-entry expiry
// and least-recently-used eviction against a byte budget.
type memoryClient struct {
	prefix   string
	maxBytes int64

	mu     sync.Mutex
	data   map[string]*memoryEntry
	used   int64
	hits   int64
	misses int64
	closed bool
}

// NewMemory creates an in-process cache. maxBytes of zero means no
// budget and no eviction.
func NewMemory(prefix string, maxBytes uint64) Client {
	return &memoryClient{
		prefix:   prefix,
		maxBytes: int64(maxBytes),
		data:     make(map[string]*memoryEntry),
	}
}

func (c *memoryClient) key(k string) string {
	if c.prefix == "" {
		return k
	}
	return c.prefix + ":" + k
}

func (c *memoryClient) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", fmt.Errorf("cache is closed")
	}

	k := c.key(key)
	entry, ok := c.data[k]
	if !ok {
		c.misses++
		return "", ErrNotFound
	}

	if !entry.noExpire && time.Now().After(entry.expiresAt) {
		c.used -= entry.size
		delete(c.data, k)
		c.misses++
		return "", ErrNotFound
	}

	entry.lastUsed = time.Now()
	c.hits++
	return entry.value, nil
}

func (c *memoryClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("cache is closed")
	}

	k := c.key(key)
	size := int64(len(k) + len(value))

	// A value that alone exceeds the budget is not cached; storing it
	// would evict everything else for a single entry.
	if c.maxBytes > 0 && size > c.maxBytes {
		return nil
	}

	if old, ok := c.data[k]; ok {
		c.used -= old.size
	}

	entry := &memoryEntry{
		value:    value,
		size:     size,
		noExpire: ttl == 0,
		lastUsed: time.Now(),
	}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}

	c.data[k] = entry
	c.used += size

	if c.maxBytes > 0 && c.used > c.maxBytes {
		c.evict(c.maxBytes * evictTargetPercent / 100)
	}

	return nil
}

// evict removes least recently used entries until used bytes drop to
// target. Caller holds c.mu.
func (c *memoryClient) evict(target int64) {
	type candidate struct {
		key      string
		size     int64
		lastUsed time.Time
	}

	candidates := make([]candidate, 0, len(c.data))
	for k, entry := range c.data {
		candidates = append(candidates, candidate{key: k, size: entry.size, lastUsed: entry.lastUsed})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].lastUsed.Before(candidates[j].lastUsed)
	})

	for _, cand := range candidates {
		if c.used <= target {
			break
		}
		delete(c.data, cand.key)
		c.used -= cand.size
	}
}

func (c *memoryClient) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("cache is closed")
	}

	k := c.key(key)
	if entry, ok := c.data[k]; ok {
		c.used -= entry.size
		delete(c.data, k)
	}
	return nil
}

func (c *memoryClient) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false, fmt.Errorf("cache is closed")
	}

	entry, ok := c.data[c.key(key)]
	if !ok {
		return false, nil
	}
	if !entry.noExpire && time.Now().After(entry.expiresAt) {
		return false, nil
	}
	return true, nil
}

func (c *memoryClient) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (c *memoryClient) Stats(ctx context.Context) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Stats{}, fmt.Errorf("cache is closed")
	}

	var keys int64
	now := time.Now()
	for _, entry := range c.data {
		if entry.noExpire || now.Before(entry.expiresAt) {
			keys++
		}
	}

	return Stats{
		Driver:     "memory",
		Keys:       keys,
		UsedMemory: bytesize.ByteSize(c.used).String(),
		Hits:       c.hits,
		Misses:     c.misses,
	}, nil
}

func (c *memoryClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.data = nil
	c.used = 0
	c.closed = true
	return nil
}
