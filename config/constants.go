package config

import (
	"os"
	"strconv"
	"time"
)

// Service constants with env var override support.
var (
	HTTPAddr             = stringEnv("HTTP_ADDR", ":9400")
	ShutdownTimeout      = durationEnv("SHUTDOWN_TIMEOUT", 10*time.Second)
	HitsPerPage          = intEnv("HITS_PER_PAGE", 8)
	SessionTTL           = durationEnv("SESSION_TTL", 30*time.Minute)
	SessionMemorySize    = intEnv("SESSION_MEMORY_SIZE", 10000)
	CatalogSyncInterval  = durationEnv("CATALOG_SYNC_INTERVAL", 5*time.Minute)
	CatalogBatchSize     = intEnv("CATALOG_BATCH_SIZE", 200)
	CatalogRetryInterval = durationEnv("CATALOG_RETRY_INTERVAL", 1*time.Minute)
	DBTimeout            = durationEnv("DB_TIMEOUT", 10*time.Second)
	MeiliTimeout         = durationEnv("MEILI_TIMEOUT", 15*time.Second)
)

func stringEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func intEnv(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func durationEnv(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
