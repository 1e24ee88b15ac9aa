package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/text/language"

	"github.com/agrilens/dashboard/internal/query"
)

// Data source kinds selected by DATA_SOURCE.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"60s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"45s"`
	AppLocale         string        `envconfig:"APP_LOCALE" default:"en"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	DataSource          string        `envconfig:"DATA_SOURCE" default:"data/companies.json"`
	DataSourceTimeout   time.Duration `envconfig:"DATA_SOURCE_TIMEOUT" default:"10s"`
	DataRefreshInterval time.Duration `envconfig:"DATA_REFRESH_INTERVAL" default:"0s"`

	PGDSN string `envconfig:"PG_DSN"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	ChartCacheTTL time.Duration `envconfig:"CHART_CACHE_TTL" default:"1h"`

	GotenbergURL string `envconfig:"GOTENBERG_URL"`
	SnapshotDir  string `envconfig:"SNAPSHOT_DIR" default:"snapshots"`

	WorkerConcurrency int    `envconfig:"WORKER_CONCURRENCY" default:"5"`
	ChartsWarmupCron  string `envconfig:"CHARTS_WARMUP_CRON" default:"*/30 * * * *"`

	PageSize   int `envconfig:"PAGE_SIZE" default:"20"`
	PageWindow int `envconfig:"PAGE_WINDOW" default:"7"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.PageWindow < 5 || c.PageWindow > 7 || c.PageWindow%2 == 0 {
		c.PageWindow = query.DefaultWindow
	}
	if strings.TrimSpace(c.DataSource) == "" {
		return errors.New("data source must be provided")
	}
	if c.SourceKind() == SourcePostgres && strings.TrimSpace(c.PGDSN) == "" {
		return errors.New("PG_DSN must be provided when DATA_SOURCE=postgres")
	}
	if _, err := language.Parse(c.AppLocale); err != nil {
		return fmt.Errorf("invalid APP_LOCALE %q: %w", c.AppLocale, err)
	}
	if c.GotenbergURL != "" {
		if _, err := url.ParseRequestURI(c.GotenbergURL); err != nil {
			return fmt.Errorf("invalid GOTENBERG_URL: %w", err)
		}
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// SourceKind classifies DATA_SOURCE.
func (c *Config) SourceKind() string {
	src := strings.TrimSpace(c.DataSource)
	switch {
	case strings.EqualFold(src, SourcePostgres):
		return SourcePostgres
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return SourceHTTP
	default:
		return SourceFile
	}
}

// Locale returns the language used for collation and number formatting.
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.AppLocale)
	if err != nil {
		return language.English
	}
	return tag
}

// Paginator returns the configured page size and window.
func (c *Config) Paginator() query.Paginator {
	return query.NewPaginator(c.PageSize, c.PageWindow)
}
