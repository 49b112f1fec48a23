package dashboard

import (
	"context"
	"net/http"
	"sync"

	"github.com/okian/bankdash/internal/domain/apierr"
)

// pageState is shared by every API call made while rendering one page.
type pageState struct {
	mu   sync.Mutex
	down error
}

type pageStateKey struct{}

func stateFrom(ctx context.Context) *pageState {
	st, _ := ctx.Value(pageStateKey{}).(*pageState)
	return st
}

// note remembers the first error that found the API unreachable.
func (p *pageState) note(err error) {
	if p == nil || apierr.Classify(err) != apierr.KindUnreachable {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.down == nil {
		p.down = err
	}
}

// unreachable returns the error noted for this page, if any.
func (p *pageState) unreachable() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.down
}

// withDeadline bounds the API work of one page by the page timeout, so a
// hanging API still yields a page before the server's write timeout.
func (s *Server) withDeadline(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.pageTimeout)
		defer cancel()
		ctx = context.WithValue(ctx, pageStateKey{}, &pageState{})
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
