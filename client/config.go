package client

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the API client settings. Values come from the environment via
// pkg/config, with YAML overlay support for deployments that pin endpoint
// tables in a file.
type Config struct {
	BaseURL     string `env:"FLOWGRID_API_URL" envDefault:"http://localhost:8000" yaml:"base_url"`
	WSURL       string `env:"FLOWGRID_WS_URL" envDefault:"ws://localhost:8000" yaml:"ws_url"`
	Environment string `env:"FLOWGRID_APP_ENV" envDefault:"development" yaml:"environment"`

	Timeout    time.Duration `env:"FLOWGRID_API_TIMEOUT" envDefault:"30s" yaml:"timeout"`
	Retries    int           `env:"FLOWGRID_API_RETRIES" envDefault:"3" yaml:"retries"`
	RetryDelay time.Duration `env:"FLOWGRID_API_RETRY_DELAY" envDefault:"1s" yaml:"retry_delay"`

	CacheTTL     time.Duration `env:"FLOWGRID_API_CACHE_TTL" envDefault:"5m" yaml:"cache_ttl"`
	CacheMaxSize int           `env:"FLOWGRID_API_CACHE_MAX_SIZE" envDefault:"100" yaml:"cache_max_size"`

	HealthPath    string        `env:"FLOWGRID_API_HEALTH_PATH" envDefault:"/health" yaml:"health_path"`
	HealthTimeout time.Duration `env:"FLOWGRID_API_HEALTH_TIMEOUT" envDefault:"5s" yaml:"health_timeout"`
}

// DefaultConfig returns the configuration used when no environment overrides
// are set. Mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "http://localhost:8000",
		WSURL:         "ws://localhost:8000",
		Environment:   "development",
		Timeout:       30 * time.Second,
		Retries:       3,
		RetryDelay:    time.Second,
		CacheTTL:      5 * time.Minute,
		CacheMaxSize:  100,
		HealthPath:    "/health",
		HealthTimeout: 5 * time.Second,
	}
}

// Validate checks the configuration once at construction.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("client: invalid base URL %q", c.BaseURL)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("client: timeout must be positive, got %s", c.Timeout)
	}

	if c.Retries < 0 {
		return fmt.Errorf("client: retries cannot be negative, got %d", c.Retries)
	}

	if c.CacheMaxSize <= 0 {
		return fmt.Errorf("client: cache max size must be positive, got %d", c.CacheMaxSize)
	}

	return nil
}

// IsDevelopment reports whether the client runs against a development environment.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}
