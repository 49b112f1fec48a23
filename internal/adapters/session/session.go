// Package session keeps per-browser UI state: the last submitted forms and
// the tables currently on screen. Sessions live in a bounded in-memory store.
package session

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/okian/bankdash/internal/domain/model"
	"github.com/okian/bankdash/internal/view"
)

// CookieName is the cookie carrying the session id.
const CookieName = "bankdash_sid"

// Session is the state of one browser. All methods are safe for concurrent use.
type Session struct {
	ID string

	mu         sync.Mutex
	lastSeen   time.Time
	baseURL    string
	filter     model.FilterCriteria
	search     *model.FilterCriteria
	prediction model.FraudPredictionRequest
	forms      map[string]url.Values
	tables     map[string]view.Table
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:         id,
		lastSeen:   now,
		filter:     model.DefaultFilter(),
		prediction: model.DefaultPrediction(),
		forms:      make(map[string]url.Values),
		tables:     make(map[string]view.Table),
	}
}

// BaseURL returns the API root override, or "" for the configured default.
func (s *Session) BaseURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseURL
}

// SetBaseURL overrides the API root for this session; "" resets it.
func (s *Session) SetBaseURL(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baseURL = u
}

// Filter returns the last submitted transaction filter.
func (s *Session) Filter() model.FilterCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// SetFilter records a submitted transaction filter.
func (s *Session) SetFilter(f model.FilterCriteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
}

// Search returns the last submitted search, if any.
func (s *Session) Search() (model.FilterCriteria, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.search == nil {
		return model.DefaultFilter(), false
	}
	return *s.search, true
}

// SetSearch records a submitted search.
func (s *Session) SetSearch(f model.FilterCriteria) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = &f
}

// Prediction returns the last submitted prediction input.
func (s *Session) Prediction() model.FraudPredictionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prediction
}

// SetPrediction records a submitted prediction input.
func (s *Session) SetPrediction(p model.FraudPredictionRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prediction = p
}

// Form returns a copy of the last values submitted to the named form.
func (s *Session) Form(name string) url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.forms[name]
	if !ok {
		return url.Values{}
	}
	return cloneValues(v)
}

// SetForm records the values submitted to the named form.
func (s *Session) SetForm(name string, v url.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forms[name] = cloneValues(v)
}

// Table returns the named table as last displayed.
func (s *Session) Table(name string) (view.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[name]
	return t, ok
}

// SetTable remembers a displayed table so it can be exported.
func (s *Session) SetTable(t view.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.Name] = t
}

// DropTable forgets a table that is no longer displayed.
func (s *Session) DropTable(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tables, name)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// LastSeen returns when the session was last used.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

type ctxKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session stored by NewContext.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok && s != nil
}
