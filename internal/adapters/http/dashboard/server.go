// Package dashboard serves the HTML pages of the transactions dashboard.
//
// Every page is a list of sections. A section fetches its own data from the
// API and renders either its content or an error banner, so one failing
// endpoint never takes the rest of the page down.
package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/adapters/upstream"
	"github.com/okian/bankdash/pkg/logger"
	"github.com/okian/bankdash/pkg/metrics"
)

// Server renders dashboard pages backed by an API client and a session store.
type Server struct {
	client   *upstream.Client
	sessions session.Store
	logger   logger.Logger
	pages    *renderer

	recentN      int
	topN         int
	customerRows int
	secureCookie bool
	pageTimeout  time.Duration
}

// New creates a dashboard server.
func New(client *upstream.Client, sessions session.Store, opts ...Option) *Server {
	s := &Server{
		client:       client,
		sessions:     sessions,
		logger:       logger.Nop(),
		recentN:      10,
		topN:         10,
		customerRows: 25,
		pageTimeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pages = mustRenderer()
	return s
}

// Register attaches all dashboard routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.Handle("GET /{$}", s.wrap(pageOverview, s.handleOverview))
	mux.Handle("GET /transactions", s.wrap(pageTransactions, s.handleTransactions))
	mux.Handle("GET /stats", s.wrap(pageStats, s.handleStats))
	mux.Handle("GET /fraud", s.wrap(pageFraud, s.handleFraud))
	mux.Handle("POST /fraud/predict", s.wrap(pageFraud, s.handlePredict))
	mux.Handle("GET /customers", s.wrap(pageCustomers, s.handleCustomers))
	mux.Handle("GET /search", s.wrap(pageSearch, s.handleSearchForm))
	mux.Handle("POST /search", s.wrap(pageSearch, s.handleSearch))
	mux.Handle("GET /tester", s.wrap(pageTester, s.handleTesterForm))
	mux.Handle("POST /tester", s.wrap(pageTester, s.handleTester))
	mux.Handle("GET /settings", s.wrap(pageSettings, s.handleSettingsForm))
	mux.Handle("POST /settings", s.wrap(pageSettings, s.handleSettings))
	mux.Handle("GET /export/{file}", s.wrap("export", s.handleExport))

	mux.HandleFunc("GET /healthz", MetricsMiddleware(handleHealth, "healthz"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
}

// wrap applies the middleware every page shares.
func (s *Server) wrap(page string, h http.HandlerFunc) http.Handler {
	return MetricsMiddleware(s.withRequestID(s.recoverer(s.withDeadline(s.withSession(h)))), page)
}

// clientFor returns the API client for the session, honouring its base URL
// override.
func (s *Server) clientFor(sess *session.Session) *upstream.Client {
	if sess == nil {
		return s.client
	}
	if u := sess.BaseURL(); u != "" {
		return s.client.WithBaseURL(u)
	}
	return s.client
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
