// Package consumer reads catalog change events from a Redis Stream and
// re-indexes the products they name.
package consumer

import (
	"os"
	"strconv"
	"time"
)

// Config holds consumer configuration.
type Config struct {
	// RedisURL is the Redis connection URL.
	RedisURL string
	// GroupName is the consumer group name.
	GroupName string
	// ConsumerName is this consumer's name within the group.
	ConsumerName string
	// StreamKey is the Redis Stream key to consume from.
	StreamKey string
	// BatchSize is the number of messages to read at once.
	BatchSize int64
	// BlockTimeout is how long to block waiting for messages.
	BlockTimeout time.Duration
	// ClaimIdleTime is how long a failed message stays pending before it is
	// claimed and handled again. Zero disables reclaiming.
	ClaimIdleTime time.Duration
	// Enabled determines if the consumer is active.
	Enabled bool
}

// DefaultConfig returns a default consumer configuration.
func DefaultConfig() Config {
	return Config{
		RedisURL:      "redis://localhost:6379",
		GroupName:     "search-storefront-group",
		ConsumerName:  "search-storefront-1",
		StreamKey:     "storefront:events:products",
		BatchSize:     10,
		BlockTimeout:  5 * time.Second,
		ClaimIdleTime: 30 * time.Second,
		Enabled:       false,
	}
}

// ConfigFromEnv loads consumer configuration from environment variables.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("CATALOG_EVENTS_REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("CATALOG_EVENTS_GROUP"); v != "" {
		cfg.GroupName = v
	}
	if v := os.Getenv("CATALOG_EVENTS_CONSUMER"); v != "" {
		cfg.ConsumerName = v
	} else if host, err := os.Hostname(); err == nil && host != "" {
		cfg.ConsumerName = host
	}
	if v := os.Getenv("CATALOG_EVENTS_STREAM"); v != "" {
		cfg.StreamKey = v
	}
	if v := os.Getenv("CATALOG_EVENTS_BATCH_SIZE"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("CATALOG_EVENTS_CLAIM_IDLE_TIME"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.ClaimIdleTime = d
		}
	}
	if v := os.Getenv("CATALOG_EVENTS_ENABLED"); v != "" {
		cfg.Enabled = v == "true" || v == "1"
	}

	return cfg
}
