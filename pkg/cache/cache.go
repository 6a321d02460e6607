// Package cache provides the read-through cache in front of catalog
// queries.
//
// Two drivers are supported: an in-process memory cache with a byte
// budget (the default, suitable for a single instance) and Redis for
// fleets that want a shared cache. Both are reached through the Client
// interface, so handlers never know which driver is configured.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/emporiumlabs/emporium/internal/bytesize"
)

// ErrNotFound is returned by Get when the key does not exist or has
// expired.
var ErrNotFound = errors.New("cache: key not found")

// Client is the operation set shared by all cache drivers.
type Client interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a key. Removing an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Exists reports whether key holds a live value.
	Exists(ctx context.Context, key string) (bool, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Stats returns a point-in-time view of the cache.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

// Stats is a point-in-time view of a cache backend.
type Stats struct {
	Driver     string `json:"driver"`
	Keys       int64  `json:"keys"`
	UsedMemory string `json:"used_memory"`
	Hits       int64  `json:"hits"`
	Misses     int64  `json:"misses"`
}

// MemoryConfig configures the in-process driver.
type MemoryConfig struct {
	// MaxBytes caps the total bytes held by the in-process cache.
	// Writes past the budget evict the least recently used entries.
	// Default: 64Mi
	MaxBytes bytesize.ByteSize `mapstructure:"max_bytes" yaml:"max_bytes"`
}

// RedisConfig configures the Redis driver.
type RedisConfig struct {
	// Host is the Redis server host.
	// Default: localhost
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the Redis server port.
	// Default: 6379
	Port int `mapstructure:"port" yaml:"port" validate:"omitempty,min=1,max=65535"`

	// Password authenticates against the server, if set.
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// DB selects the Redis logical database.
	DB int `mapstructure:"db" yaml:"db"`
}

// Config selects and configures a cache driver.
type Config struct {
	// Driver selects the backend: "memory" or "redis".
	// Default: memory
	Driver string `mapstructure:"driver" yaml:"driver" validate:"omitempty,oneof=memory redis"`

	// TTL is the default lifetime callers give cached entries.
	// Default: 5m
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`

	// Prefix namespaces every key, so one backend can serve several
	// deployments.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`

	Memory MemoryConfig `mapstructure:"memory" yaml:"memory"`
	Redis  RedisConfig  `mapstructure:"redis" yaml:"redis"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = "memory"
	}
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.Memory.MaxBytes == 0 {
		c.Memory.MaxBytes = 64 * bytesize.MiB
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
}
