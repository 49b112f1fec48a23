// Package config defines dashboard configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers defaults, an optional YAML file, a .env file and env vars.
// - External errors are wrapped with this package's sentinel kinds.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the dashboard listen address, e.g. ":8501".
	Addr string `koanf:"addr" validate:"required"`

	// APIBaseURL is the root address of the transactions API.
	APIBaseURL string `koanf:"api_base_url" validate:"required,http_url"`

	// APIPrefix is prepended to every endpoint path, e.g. "/api".
	APIPrefix string `koanf:"api_prefix" validate:"omitempty,startswith=/"`

	// RequestTimeoutMS bounds a single call to the API.
	RequestTimeoutMS int `koanf:"request_timeout_ms" validate:"min=1,max=300000"`

	// PageTimeoutMS bounds all API calls made while rendering one page.
	// Sections still pending when it runs out render as unreachable.
	PageTimeoutMS int `koanf:"page_timeout_ms" validate:"min=1,max=600000"`

	// HealthTimeoutMS bounds the header health check.
	HealthTimeoutMS int `koanf:"health_timeout_ms" validate:"min=1,max=60000"`

	// MaxSessions caps the number of browser sessions kept in memory.
	MaxSessions int `koanf:"max_sessions" validate:"min=1"`

	// RecentCount is the default length of the recent transactions list.
	RecentCount int `koanf:"recent_count" validate:"min=1,max=100"`

	// TopCount is the default size of the top customers ranking.
	TopCount int `koanf:"top_count" validate:"min=1,max=100"`

	// CustomerRows is the default page size of the customer list.
	CustomerRows int `koanf:"customer_rows" validate:"oneof=10 25 50 100"`

	// SecureCookie marks the session cookie Secure; enable behind TLS.
	SecureCookie bool `koanf:"secure_cookie"`

	// MetricsEnabled exports the dashboard series on /metrics.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsNamespace prefixes every dashboard series.
	MetricsNamespace string `koanf:"metrics_namespace" validate:"required"`

	// MetricsLabels are constant labels added to every dashboard series.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// LatencyBucketsMS are the histogram buckets of the latency series,
	// strictly increasing.
	LatencyBucketsMS []float64 `koanf:"latency_buckets_ms" validate:"required,dive,gt=0"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":8501",
		APIBaseURL:       "http://localhost:8000",
		APIPrefix:        "/api",
		RequestTimeoutMS: 10_000,
		PageTimeoutMS:    30_000,
		HealthTimeoutMS:  2_000,
		MaxSessions:      10_000,
		RecentCount:      10,
		TopCount:         10,
		CustomerRows:     25,
		MetricsEnabled:   true,
		MetricsNamespace: "bankdash",
		LatencyBucketsMS: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// PageTimeout returns PageTimeoutMS as a duration.
func (c *Config) PageTimeout() time.Duration {
	return time.Duration(c.PageTimeoutMS) * time.Millisecond
}

// HealthTimeout returns HealthTimeoutMS as a duration.
func (c *Config) HealthTimeout() time.Duration {
	return time.Duration(c.HealthTimeoutMS) * time.Millisecond
}
