package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/adapters/upstream"
	"github.com/okian/bankdash/internal/domain/apierr"
	"github.com/okian/bankdash/internal/view"
)

const formTester = "tester"

var errInvalidJSON = errors.New("invalid JSON parameters")

// route is a catalog entry of the route tester.
type route struct {
	Key      string
	Category string
	Method   string
	Path     string
	Summary  string
	Params   string
}

var catalog = []route{
	{"transactions", "Transactions", http.MethodGet, "transactions", "Paged list with filters", `{"page": 1, "limit": 10}`},
	{"transaction-types", "Transactions", http.MethodGet, "transactions/types", "Distinct transaction types", ""},
	{"recent", "Transactions", http.MethodGet, "transactions/recent", "Most recent transactions", `{"n": 10}`},
	{"search", "Transactions", http.MethodPost, "transactions/search", "Multi-criteria search", `{"type": "TRANSFER", "isFraud": 1, "amount_range": [0, 100000]}`},
	{"transaction", "Transactions", http.MethodGet, "transactions/1", "One transaction by id", ""},
	{"by-customer", "Transactions", http.MethodGet, "transactions/by-customer/C1231006815", "Sent by a customer", ""},
	{"to-customer", "Transactions", http.MethodGet, "transactions/to-customer/M1979787155", "Received by a customer", ""},
	{"overview", "Statistics", http.MethodGet, "stats/overview", "Headline KPIs", ""},
	{"distribution", "Statistics", http.MethodGet, "stats/amount-distribution", "Amount histogram", ""},
	{"stats-by-type", "Statistics", http.MethodGet, "stats/by-type", "Aggregates per type", ""},
	{"daily", "Statistics", http.MethodGet, "stats/daily", "Aggregates per day", ""},
	{"fraud-summary", "Fraud", http.MethodGet, "fraud/summary", "Detection summary", ""},
	{"fraud-by-type", "Fraud", http.MethodGet, "fraud/by-type", "Fraud rate per type", ""},
	{"predict", "Fraud", http.MethodPost, "fraud/predict", "Score one transaction", `{"type": "PAYMENT", "amount": 1000, "oldbalanceOrg": 5000, "newbalanceOrig": 4000}`},
	{"customers", "Customers", http.MethodGet, "customers", "Paged customer ids", `{"page": 1, "limit": 10}`},
	{"top-customers", "Customers", http.MethodGet, "customers/top", "Largest customers", `{"n": 10, "by": "volume"}`},
	{"customer", "Customers", http.MethodGet, "customers/C1231006815", "One customer profile", ""},
	{"health", "System", http.MethodGet, "system/health", "Liveness", ""},
	{"metadata", "System", http.MethodGet, "system/metadata", "Version information", ""},
}

type routeGroup struct {
	Category string
	Routes   []route
}

type testerForm struct {
	Groups  []routeGroup
	Methods []option
	Path    string
	Params  string
}

func newTesterForm(v url.Values) testerForm {
	form := testerForm{
		Methods: options([]string{http.MethodGet, http.MethodPost}, nil, strings.ToUpper(v.Get("method"))),
		Path:    v.Get("path"),
		Params:  v.Get("params"),
	}
	for _, r := range catalog {
		if n := len(form.Groups); n == 0 || form.Groups[n-1].Category != r.Category {
			form.Groups = append(form.Groups, routeGroup{Category: r.Category})
		}
		g := &form.Groups[len(form.Groups)-1]
		g.Routes = append(g.Routes, r)
	}
	return form
}

func presetValues(key string) (url.Values, bool) {
	for _, r := range catalog {
		if r.Key == key {
			return url.Values{"method": {r.Method}, "path": {r.Path}, "params": {r.Params}}, true
		}
	}
	return nil, false
}

// testerRequest turns the tester form into an API request. GET parameters
// must be a JSON object and become the query string; POST parameters are
// sent as the body.
func testerRequest(v url.Values) (upstream.Request, error) {
	const op = "dashboard.tester_request"
	req := upstream.Request{Method: strings.ToUpper(strings.TrimSpace(v.Get("method"))), Endpoint: "tester"}
	if req.Method != http.MethodGet && req.Method != http.MethodPost {
		return req, apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("method must be GET or POST"))
	}
	path, err := upstream.CleanPath(v.Get("path"))
	if err != nil {
		return req, err
	}
	req.Path = path

	raw := strings.TrimSpace(v.Get("params"))
	if raw == "" {
		return req, nil
	}
	if !json.Valid([]byte(raw)) {
		return req, apierr.WrapKind(op, apierr.ErrInvalidRequest, errInvalidJSON)
	}
	if req.Method == http.MethodPost {
		req.Body = json.RawMessage(raw)
		return req, nil
	}
	req.Query, err = queryFromJSON(raw)
	if err != nil {
		return req, apierr.WrapKind(op, apierr.ErrInvalidRequest, err)
	}
	return req, nil
}

func queryFromJSON(raw string) (url.Values, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: GET parameters must be a JSON object", errInvalidJSON)
	}
	q := url.Values{}
	for k, v := range obj {
		items := []any{v}
		if arr, ok := v.([]any); ok {
			items = arr
		}
		for _, it := range items {
			s, err := scalar(it)
			if err != nil {
				return nil, fmt.Errorf("%w: parameter %q: %w", errInvalidJSON, k, err)
			}
			if s != nil {
				q.Add(k, *s)
			}
		}
	}
	return q, nil
}

func scalar(v any) (*string, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		s = t
	case json.Number:
		s = t.String()
	case bool:
		s = strconv.FormatBool(t)
	default:
		return nil, fmt.Errorf("nested objects cannot be sent as query parameters")
	}
	return &s, nil
}

func (s *Server) handleTesterForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)

	values := sess.Form(formTester)
	if preset, ok := presetValues(r.URL.Query().Get("preset")); ok {
		values = preset
	}
	data := pageData{Header: s.apiHeader(ctx, c), Form: newTesterForm(values)}
	s.render(w, r, pageTester, "Route tester", data)
}

func (s *Server) handleTester(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)
	data := pageData{Header: s.apiHeader(ctx, c)}

	if err := r.ParseForm(); err != nil {
		err = apierr.WrapKind("dashboard.tester", apierr.ErrInvalidRequest, err)
		data.Form = newTesterForm(nil)
		data.Sections = []view.Section{s.skipped(ctx, pageTester, "response", "Response", err)}
		s.render(w, r, pageTester, "Route tester", data)
		return
	}
	sess.SetForm(formTester, r.PostForm)
	data.Form = newTesterForm(r.PostForm)

	req, err := testerRequest(r.PostForm)
	if err != nil {
		data.Sections = []view.Section{s.skipped(ctx, pageTester, "response", "Response", err)}
		s.render(w, r, pageTester, "Route tester", data)
		return
	}

	data.Sections = []view.Section{s.section(ctx, pageTester, "response", req.Method+" "+c.APIURL()+"/"+req.Path, func(ctx context.Context, sec *view.Section) error {
		resp, err := c.Fetch(ctx, req)
		if err != nil {
			return err
		}
		sec.KPIs = []view.KPI{
			{Label: "Status", Value: strconv.Itoa(resp.StatusCode)},
			{Label: "Duration", Value: strconv.FormatInt(resp.Duration.Milliseconds(), 10) + " ms"},
			{Label: "Size", Value: view.Count(int64(len(resp.Body))) + " bytes"},
		}
		if len(bytes.TrimSpace(resp.Body)) == 0 {
			sec.Note = "Empty response body."
			return nil
		}
		sec.Code = prettyJSON(resp.Body)
		return nil
	})}
	s.render(w, r, pageTester, "Route tester", data)
}
