package dashboard

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/adapters/upstream"
	"github.com/okian/bankdash/internal/domain/apierr"
	"github.com/okian/bankdash/internal/view"
	"github.com/okian/bankdash/pkg/logger"
	"github.com/okian/bankdash/pkg/metrics"
)

//go:embed templates/*.html templates/pages/*.html
var templateFS embed.FS

// Page names, used for navigation, templates and metric labels.
const (
	pageOverview     = "overview"
	pageTransactions = "transactions"
	pageStats        = "stats"
	pageFraud        = "fraud"
	pageCustomers    = "customers"
	pageSearch       = "search"
	pageTester       = "tester"
	pageSettings     = "settings"
)

// errSectionPanic marks a section whose renderer panicked.
var errSectionPanic = errors.New("section panicked")

type navItem struct {
	Label  string
	URL    string
	Active bool
}

var navigation = []struct{ page, label, url string }{
	{pageOverview, "Overview", "/"},
	{pageTransactions, "Transactions", "/transactions"},
	{pageStats, "Statistics", "/stats"},
	{pageFraud, "Fraud", "/fraud"},
	{pageCustomers, "Customers", "/customers"},
	{pageSearch, "Search", "/search"},
	{pageTester, "Route tester", "/tester"},
	{pageSettings, "Settings", "/settings"},
}

// pages with a form template under templates/pages.
var formPages = []string{pageTransactions, pageFraud, pageCustomers, pageSearch, pageTester, pageSettings}

type header struct {
	BaseURL      string
	DocsURL      string
	RedocURL     string
	Healthy      bool
	HealthDetail string
	Version      string
}

type pageData struct {
	Title     string
	Nav       []navItem
	Header    header
	Banner    *view.Banner
	Form      any
	Sections  []view.Section
	RequestID string
}

type renderer struct {
	byPage map[string]*template.Template
}

var funcs = template.FuncMap{
	"f1": func(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) },
}

func mustRenderer() *renderer {
	base := template.Must(template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	r := &renderer{byPage: make(map[string]*template.Template)}
	for _, n := range navigation {
		r.byPage[n.page] = template.Must(base.Clone())
	}
	for _, p := range formPages {
		r.byPage[p] = template.Must(template.Must(base.Clone()).ParseFS(templateFS, "templates/pages/"+p+".html"))
	}
	return r
}

// render writes page as HTML. Output is buffered so a template error still
// yields a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page, title string, data pageData) {
	ctx := r.Context()
	tpl, ok := s.pages.byPage[page]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}
	data.Title = title
	data.RequestID = logger.RequestID(ctx)
	data.Nav = make([]navItem, 0, len(navigation))
	for _, n := range navigation {
		data.Nav = append(data.Nav, navItem{Label: n.label, URL: n.url, Active: n.page == page})
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error(ctx, "render page", logger.String("page", page), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// apiHeader asks the API for the indicator shown on every page. Failures
// only change the indicator.
func (s *Server) apiHeader(ctx context.Context, c *upstream.Client) header {
	h := header{
		BaseURL:  c.BaseURL(),
		DocsURL:  c.BaseURL() + "/docs",
		RedocURL: c.BaseURL() + "/redoc",
		Version:  "unknown",
	}
	if err := c.Health(ctx); err != nil {
		h.HealthDetail = view.BannerFor(err).Title
		return h
	}
	h.Healthy = true
	h.HealthDetail = "API reachable"
	if meta, err := c.Metadata(ctx); err == nil && meta.Version != "" {
		h.Version = meta.Version
	}
	return h
}

// section runs fill and turns any error or panic into the section's banner.
// tables names the exports fill may store; they are dropped from the session
// when the section fails so a stale table cannot be downloaded.
// Once an earlier call of the same page found the API unreachable, fill is
// not run and the section fails with that error.
func (s *Server) section(ctx context.Context, page, id, title string, fill func(ctx context.Context, sec *view.Section) error, tables ...string) (sec view.Section) {
	sec = view.Section{ID: id, Title: title}
	if err := stateFrom(ctx).unreachable(); err != nil {
		s.fail(ctx, page, &sec, err, tables)
		return sec
	}
	defer func() {
		if rec := recover(); rec != nil {
			s.fail(ctx, page, &sec, fmt.Errorf("%w: %v", errSectionPanic, rec), tables)
		}
	}()
	if err := fill(ctx, &sec); err != nil {
		stateFrom(ctx).note(err)
		s.fail(ctx, page, &sec, err, tables)
	}
	return sec
}

// skipped is a section that was not fetched because its input is invalid.
func (s *Server) skipped(ctx context.Context, page, id, title string, err error, tables ...string) view.Section {
	sec := view.Section{ID: id, Title: title}
	s.fail(ctx, page, &sec, err, tables)
	return sec
}

func (s *Server) fail(ctx context.Context, page string, sec *view.Section, err error, tables []string) {
	kind := apierr.Classify(err)
	sec.Banner = view.BannerFor(err)
	if sess, ok := session.FromContext(ctx); ok {
		for _, name := range tables {
			sess.DropTable(name)
		}
		for _, t := range sec.Tables {
			sess.DropTable(t.Name)
		}
	}
	sec.KPIs, sec.Tables, sec.Charts, sec.Items, sec.Code, sec.Alert, sec.Exports = nil, nil, nil, nil, "", nil, nil
	metrics.RecordSectionError(page, sec.ID, kind)
	s.logger.Warn(ctx, "section failed",
		logger.String("page", page),
		logger.String("section", sec.ID),
		logger.String("kind", kind),
		logger.Error(err))
}

// keep stores t in the session for export and attaches it to sec.
func keep(sess *session.Session, sec *view.Section, t view.Table) {
	sec.Tables = append(sec.Tables, t)
	if sess == nil {
		return
	}
	sess.SetTable(t)
	sec.Exports = append(sec.Exports, view.Export{
		Label: "Download " + t.Name + ".csv",
		URL:   "/export/" + t.Name + ".csv",
		Rows:  t.Len(),
	})
}

// option is an entry of a select element.
type option struct {
	Value    string
	Label    string
	Selected bool
}

func options(values, labels []string, selected string) []option {
	out := make([]option, 0, len(values))
	for i, v := range values {
		label := v
		if i < len(labels) && labels[i] != "" {
			label = labels[i]
		}
		out = append(out, option{Value: v, Label: label, Selected: v == selected})
	}
	return out
}
