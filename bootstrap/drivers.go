package bootstrap

import (
	"context"
	"fmt"
	"time"

	"search-storefront/config"
	"search-storefront/driver"
	"search-storefront/gateway"
	"search-storefront/logger"

	"github.com/cenkalti/backoff/v5"
	"github.com/meilisearch/meilisearch-go"
)

const meilisearchMaxAttempts = 5

// sessionDriver is the storage behind the session gateway.
type sessionDriver interface {
	gateway.SessionDriver
	Close() error
}

// initMeilisearchDriver connects to Meilisearch, waiting for it to become
// healthy with exponential backoff.
func initMeilisearchDriver(ctx context.Context, cfg config.MeilisearchConfig) (*driver.MeilisearchDriver, error) {
	logger.Logger.Info("Connecting to Meilisearch", "host", cfg.Host)

	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))
	msDriver := driver.NewMeilisearchDriver(client, cfg.IndexName, cfg.Timeout)

	bo := newStartupBackoff()
	for attempt := 1; ; attempt++ {
		err := msDriver.Health(ctx)
		if err == nil {
			break
		}
		if attempt == meilisearchMaxAttempts {
			return nil, fmt.Errorf("failed to connect to Meilisearch after %d attempts: %w", attempt, err)
		}

		delay := bo.NextBackOff()
		logger.Logger.Warn("Meilisearch not ready, retrying",
			"attempt", attempt,
			"max", meilisearchMaxAttempts,
			"retry_in", delay,
			"err", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	logger.Logger.Info("Connected to Meilisearch successfully")
	return msDriver, nil
}

// initSessionDriver uses Redis when REDIS_URL is set and an in-process LRU
// otherwise.
func initSessionDriver(ctx context.Context, cfg config.SessionConfig) (sessionDriver, error) {
	if cfg.RedisURL == "" {
		logger.Logger.Info("Using in-memory session store", "size", cfg.MemorySize, "ttl", cfg.TTL)
		return driver.NewMemorySessionDriver(cfg.MemorySize, cfg.TTL), nil
	}

	client, err := driver.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("session store init: %w", err)
	}
	logger.Logger.Info("Using Redis session store", "ttl", cfg.TTL)
	return driver.NewRedisSessionDriver(client, cfg.TTL), nil
}

// initCatalogDriver opens the catalog database pool. The returned func
// closes it.
func initCatalogDriver(ctx context.Context, cfg config.DatabaseConfig) (*driver.DatabaseDriver, func(), error) {
	dbCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	pool, err := driver.NewDatabasePool(dbCtx, cfg.GetDatabaseURL(), 0)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog database init: %w", err)
	}
	return driver.NewDatabaseDriver(pool), pool.Close, nil
}

func newStartupBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 30 * time.Second
	bo.Multiplier = 2
	return bo
}
