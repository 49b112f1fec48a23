package dashboard

import (
	"time"

	"github.com/okian/bankdash/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecentCount sets how many recent transactions are listed by default.
func WithRecentCount(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.recentN = n
		}
	}
}

// WithTopCount sets the default size of the top customers ranking.
func WithTopCount(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithCustomerRows sets the default page size of the customer list.
func WithCustomerRows(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.customerRows = n
		}
	}
}

// WithSecureCookie marks the session cookie Secure, for TLS deployments.
func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.secureCookie = secure
	}
}

// WithPageTimeout bounds the API calls made while rendering one page.
func WithPageTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pageTimeout = d
		}
	}
}
