package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	Meilisearch MeilisearchConfig
	Session     SessionConfig
	Search      SearchConfig
	Catalog     CatalogConfig
	HTTP        HTTPConfig
}

type MeilisearchConfig struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// SessionConfig selects the session store. An empty RedisURL keeps
// sessions in process memory.
type SessionConfig struct {
	RedisURL   string
	TTL        time.Duration
	MemorySize int
}

type SearchConfig struct {
	PriceAttribute  string
	FacetAttributes []string
	HitsPerPage     int
}

// CatalogConfig controls the optional Postgres to index sync.
type CatalogConfig struct {
	Enabled       bool
	Database      DatabaseConfig
	Interval      time.Duration
	BatchSize     int
	RetryInterval time.Duration
}

// DatabaseConfig holds the catalog connection. URL wins over the discrete fields.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	Timeout  time.Duration
	SSL      SSLConfig
}

type SSLConfig struct {
	Mode     string
	RootCert string
	Cert     string
	Key      string
}

type HTTPConfig struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	SecureCookies     bool
}

func Load() (*Config, error) {
	meiliHost, err := getEnvRequired("MEILISEARCH_HOST")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Meilisearch: MeilisearchConfig{
			Host:      meiliHost,
			APIKey:    getEnvOrDefault("MEILISEARCH_API_KEY", ""),
			IndexName: getEnvOrDefault("MEILISEARCH_INDEX", "products"),
			Timeout:   MeiliTimeout,
		},
		Session: SessionConfig{
			RedisURL:   getEnvOrDefault("REDIS_URL", ""),
			TTL:        SessionTTL,
			MemorySize: SessionMemorySize,
		},
		Search: SearchConfig{
			PriceAttribute:  getEnvOrDefault("PRICE_ATTRIBUTE", "price"),
			FacetAttributes: splitList(getEnvOrDefault("FACET_ATTRIBUTES", "*")),
			HitsPerPage:     HitsPerPage,
		},
		Catalog: CatalogConfig{
			Enabled:       getEnvOrDefault("CATALOG_SYNC_ENABLED", "false") == "true",
			Interval:      CatalogSyncInterval,
			BatchSize:     CatalogBatchSize,
			RetryInterval: CatalogRetryInterval,
		},
		HTTP: HTTPConfig{
			Addr:              HTTPAddr,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   ShutdownTimeout,
			SecureCookies:     getEnvOrDefault("SECURE_COOKIES", "false") == "true",
		},
	}

	if cfg.Catalog.Enabled {
		db, err := loadDatabaseConfig()
		if err != nil {
			return nil, err
		}
		cfg.Catalog.Database = *db
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Configuration loaded",
		"meilisearch_host", cfg.Meilisearch.Host,
		"index", cfg.Meilisearch.IndexName,
		"redis_sessions", cfg.Session.RedisURL != "",
		"catalog_sync", cfg.Catalog.Enabled,
	)

	return cfg, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	db := &DatabaseConfig{
		URL:     getEnvOrDefault("CATALOG_DATABASE_URL", ""),
		Timeout: DBTimeout,
	}
	if db.URL != "" {
		return db, nil
	}

	var err error
	for _, f := range []struct {
		key string
		dst *string
	}{
		{"DB_HOST", &db.Host},
		{"DB_PORT", &db.Port},
		{"DB_NAME", &db.Name},
		{"CATALOG_DB_USER", &db.User},
		{"CATALOG_DB_PASSWORD", &db.Password},
	} {
		if *f.dst, err = getEnvRequired(f.key); err != nil {
			return nil, err
		}
	}

	db.SSL = SSLConfig{
		Mode:     getEnvOrDefault("DB_SSL_MODE", "prefer"),
		RootCert: getEnvOrDefault("DB_SSL_ROOT_CERT", ""),
		Cert:     getEnvOrDefault("DB_SSL_CERT", ""),
		Key:      getEnvOrDefault("DB_SSL_KEY", ""),
	}

	if err := db.ValidateSSLConfig(); err != nil {
		slog.Error("Invalid SSL configuration", "error", err)
		return nil, fmt.Errorf("SSL configuration error: %w", err)
	}

	return db, nil
}

// Validate checks values that would otherwise fail later at request time.
func (c *Config) Validate() error {
	if _, err := url.ParseRequestURI(c.Meilisearch.Host); err != nil {
		return fmt.Errorf("invalid MEILISEARCH_HOST: %w", err)
	}
	if c.Search.HitsPerPage <= 0 {
		return errors.New("HITS_PER_PAGE must be greater than 0")
	}
	if c.Search.PriceAttribute == "" {
		return errors.New("PRICE_ATTRIBUTE must not be empty")
	}
	if len(c.Search.FacetAttributes) == 0 {
		return errors.New("FACET_ATTRIBUTES must list at least one attribute")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Catalog.Enabled && c.Catalog.BatchSize <= 0 {
		return errors.New("CATALOG_BATCH_SIZE must be greater than 0")
	}
	return nil
}

// GetDatabaseURL returns a pgx-compatible connection URL.
func (c *DatabaseConfig) GetDatabaseURL() string {
	if c.URL != "" {
		return c.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   "/" + c.Name,
	}

	params := url.Values{}
	params.Set("sslmode", c.SSL.Mode)
	if c.SSL.RootCert != "" {
		params.Set("sslrootcert", c.SSL.RootCert)
	}
	if c.SSL.Cert != "" {
		params.Set("sslcert", c.SSL.Cert)
	}
	if c.SSL.Key != "" {
		params.Set("sslkey", c.SSL.Key)
	}
	if c.Timeout > 0 {
		params.Set("connect_timeout", fmt.Sprintf("%d", int(c.Timeout.Seconds())))
	}
	u.RawQuery = params.Encode()

	return u.String()
}

func (c *DatabaseConfig) ValidateSSLConfig() error {
	switch c.SSL.Mode {
	case "disable":
		return fmt.Errorf("SSL disable mode is not allowed")
	case "allow", "prefer", "require":
		return nil
	case "verify-ca", "verify-full":
		if c.SSL.RootCert == "" {
			return fmt.Errorf("SSL root certificate required for mode %s", c.SSL.Mode)
		}
		return nil
	default:
		return fmt.Errorf("invalid SSL mode: %s", c.SSL.Mode)
	}
}

func getEnvRequired(key string) (string, error) {
	if value := getEnvOrDefault(key, ""); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("required environment variable %s is not set", key)
}

// getEnvOrDefault reads key, preferring the file named by key_FILE (Docker secrets).
func getEnvOrDefault(key, defaultValue string) string {
	if fileValue := os.Getenv(key + "_FILE"); fileValue != "" {
		content, err := os.ReadFile(fileValue)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
		slog.Warn("failed to read secret file", "key", key+"_FILE", "error", err)
	}

	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
