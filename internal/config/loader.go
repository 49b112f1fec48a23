package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// metricName matches Prometheus metric and label names without colons.
var metricName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "BANKDASH_"

// dotenvFiles are tried in order; the first one found is loaded.
var dotenvFiles = []string{".env", "../.env"}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BANKDASH_CONFIG is set
//  3. env (prefix BANKDASH_), seeded from a .env file when present
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// .env never overrides variables already set in the environment.
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err == nil {
			break
		}
	}

	if path := os.Getenv(EnvPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// Map env keys like BANKDASH_API_BASE_URL -> api_base_url (flat keys).
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	// A configured list replaces the default buckets instead of overlaying them.
	if k.Exists("latency_buckets_ms") {
		cfg.LatencyBucketsMS = nil
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.APIPrefix = strings.TrimRight(strings.TrimSpace(cfg.APIPrefix), "/")

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cfg against its validate tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !metricName.MatchString(cfg.MetricsNamespace) {
		return fmt.Errorf("%w: metrics_namespace %q is not a valid metric name", ErrInvalidConfig, cfg.MetricsNamespace)
	}
	for name := range cfg.MetricsLabels {
		if !metricName.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	for i := 1; i < len(cfg.LatencyBucketsMS); i++ {
		if cfg.LatencyBucketsMS[i] <= cfg.LatencyBucketsMS[i-1] {
			return fmt.Errorf("%w: latency_buckets_ms must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
