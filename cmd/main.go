package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/bankdash/internal/adapters/http/dashboard"
	"github.com/okian/bankdash/internal/adapters/http/site"
	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/adapters/upstream"
	"github.com/okian/bankdash/internal/config"
	"github.com/okian/bankdash/pkg/logger"
	"github.com/okian/bankdash/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	// rendering and writing a page after its API deadline
	writeTimeoutSlack = 5 * time.Second
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> .env -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	srv, err := newServer(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build server", logger.Error(err))
		return
	}

	go func() {
		log.Info(ctx, "starting dashboard",
			logger.String("addr", cfg.Addr),
			logger.String("api_base_url", cfg.APIBaseURL),
			logger.String("api_prefix", cfg.APIPrefix))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// newServer wires the API client, the session store and the routes.
func newServer(ctx context.Context, cfg *config.Config, log logger.Logger) (*http.Server, error) {
	if _, err := upstream.NormalizeBaseURL(cfg.APIBaseURL); err != nil {
		return nil, err
	}
	metrics.Init(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithHistogramBuckets(cfg.LatencyBucketsMS),
		metrics.WithMetricsEnabled(cfg.MetricsEnabled),
		metrics.WithCustomLabels(cfg.MetricsLabels),
	)
	metrics.RegisterRuntimeCollectors()

	client := upstream.New(cfg.APIBaseURL,
		upstream.WithPrefix(cfg.APIPrefix),
		upstream.WithTimeout(cfg.RequestTimeout()),
		upstream.WithHealthTimeout(cfg.HealthTimeout()),
		upstream.WithLogger(log),
	)
	sessions := session.NewMemoryStore(session.WithMaxSize(cfg.MaxSessions))

	mux := http.NewServeMux()
	site.Register(ctx, mux)
	dashboard.New(client, sessions,
		dashboard.WithLogger(log),
		dashboard.WithRecentCount(cfg.RecentCount),
		dashboard.WithTopCount(cfg.TopCount),
		dashboard.WithCustomerRows(cfg.CustomerRows),
		dashboard.WithSecureCookie(cfg.SecureCookie),
		dashboard.WithPageTimeout(cfg.PageTimeout()),
	).Register(ctx, mux)

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.PageTimeout() + writeTimeoutSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}, nil
}
