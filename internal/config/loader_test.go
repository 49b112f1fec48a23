package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/bankdash/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8501")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://localhost:8000")
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 10_000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BANKDASH_ADDR", ":9000")
			_ = os.Setenv("BANKDASH_API_BASE_URL", "http://api.internal:8000/")
			_ = os.Setenv("BANKDASH_API_PREFIX", "/v2/")
			_ = os.Setenv("BANKDASH_REQUEST_TIMEOUT_MS", "2500")
			_ = os.Setenv("BANKDASH_MAX_SESSIONS", "50")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9000")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "http://api.internal:8000")
				convey.So(cfg.APIPrefix, convey.ShouldEqual, "/v2")
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 2500)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 50)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
api_base_url: "https://bank.example.com"
request_timeout_ms: 4000
health_timeout_ms: 500
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BANKDASH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.APIBaseURL, convey.ShouldEqual, "https://bank.example.com")
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 4000)
				convey.So(cfg.HealthTimeoutMS, convey.ShouldEqual, 500)
				convey.So(cfg.APIPrefix, convey.ShouldEqual, "/api") // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":9090"
request_timeout_ms: 4000
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BANKDASH_CONFIG", tmpFile)
			_ = os.Setenv("BANKDASH_ADDR", ":8080") // overrides the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 4000)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BANKDASH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("BANKDASH_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the API base URL is not an http URL", func() {
			_ = os.Setenv("BANKDASH_API_BASE_URL", "localhost-without-scheme")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "APIBaseURL")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the request timeout is zero", func() {
			_ = os.Setenv("BANKDASH_REQUEST_TIMEOUT_MS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "RequestTimeoutMS")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the metrics settings come from the environment", func() {
			_ = os.Setenv("BANKDASH_METRICS_NAMESPACE", "branch_dash")
			_ = os.Setenv("BANKDASH_PAGE_TIMEOUT_MS", "15000")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then they should override the defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "branch_dash")
				convey.So(cfg.PageTimeoutMS, convey.ShouldEqual, 15000)
			})
		})

		convey.Convey("When the YAML file sets latency buckets", func() {
			tmpFile := createTempConfigFile("latency_buckets_ms: [1, 2, 4, 8]\nmetrics_labels:\n  region: eu\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BANKDASH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then the buckets and labels should be loaded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LatencyBucketsMS, convey.ShouldResemble, []float64{1, 2, 4, 8})
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"region": "eu"})
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("BANKDASH_MAX_SESSIONS", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the YAML file empties addr", func() {
			tmpFile := createTempConfigFile("addr: \"\"\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BANKDASH_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return validation error for empty addr", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "Addr (required)")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"BANKDASH_CONFIG",
		"BANKDASH_ADDR",
		"BANKDASH_API_BASE_URL",
		"BANKDASH_API_PREFIX",
		"BANKDASH_REQUEST_TIMEOUT_MS",
		"BANKDASH_HEALTH_TIMEOUT_MS",
		"BANKDASH_MAX_SESSIONS",
		"BANKDASH_LOG_LEVEL",
		"BANKDASH_PAGE_TIMEOUT_MS",
		"BANKDASH_METRICS_NAMESPACE",
		"BANKDASH_LATENCY_BUCKETS_MS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "bankdash-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
