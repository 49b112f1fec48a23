package dashboard

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/adapters/upstream"
	"github.com/okian/bankdash/internal/domain/model"
	"github.com/okian/bankdash/internal/view"
	"github.com/okian/bankdash/pkg/logger"
)

const (
	tableTransactions = "transactions"
	tableRecent       = "recent"
	maxListCount      = 100
)

var filterKeys = []string{"type", "fraud", "min_amount", "max_amount", "page", "limit"}

type filterForm struct {
	Types     []option
	Fraud     []option
	Limits    []option
	MinAmount string
	MaxAmount string
	RecentN   int
	Page      int
	PrevURL   string
	NextURL   string
}

func newFilterForm(types []string, v url.Values) filterForm {
	limits := make([]string, len(model.PageSizes))
	for i, n := range model.PageSizes {
		limits[i] = strconv.Itoa(n)
	}
	page, _ := strconv.Atoi(v.Get("page"))
	selected := strings.ToUpper(v.Get("type"))
	values := append([]string{""}, types...)
	if !knownType(types, selected) {
		values = append(values, selected)
	}
	return filterForm{
		Types:     options(values, []string{"All types"}, selected),
		Fraud:     options([]string{string(model.FraudAny), string(model.FraudOnly), string(model.FraudLegit)}, []string{"All", "Fraud only", "Legitimate only"}, v.Get("fraud")),
		Limits:    options(limits, nil, v.Get("limit")),
		MinAmount: v.Get("min_amount"),
		MaxAmount: v.Get("max_amount"),
		Page:      max(page, 1),
	}
}

// submitted reports whether any of keys is present in v.
func submitted(v url.Values, keys ...string) bool {
	for _, k := range keys {
		if v.Has(k) {
			return true
		}
	}
	return false
}

// positiveInt parses a count in [1, hi], falling back to def.
func positiveInt(raw string, def, hi int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return min(n, hi)
}

// types returns the transaction types offered by the API, or the dataset
// defaults when the API cannot be asked.
func (s *Server) types(ctx context.Context, c *upstream.Client) []string {
	st := stateFrom(ctx)
	if st.unreachable() != nil {
		return model.TransactionTypes
	}
	types, err := c.TransactionTypes(ctx)
	if err != nil || len(types) == 0 {
		if err != nil {
			st.note(err)
			s.logger.Warn(ctx, "transaction types unavailable, using defaults", logger.Error(err))
		}
		return model.TransactionTypes
	}
	return types
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)
	q := r.URL.Query()

	data := pageData{Header: s.apiHeader(ctx, c)}

	f := sess.Filter()
	formValues := f.FormValues()
	var filterErr error
	if submitted(q, filterKeys...) {
		formValues = q
		if f, filterErr = model.ParseFilter(q); filterErr == nil {
			sess.SetFilter(f)
			formValues = f.FormValues()
		} else {
			data.Banner = view.BannerFor(filterErr)
		}
	}

	recentForm := sess.Form(tableRecent)
	if q.Has("recent") {
		recentForm = url.Values{"n": {q.Get("recent")}}
		sess.SetForm(tableRecent, recentForm)
	}
	recentN := positiveInt(recentForm.Get("n"), s.recentN, maxListCount)

	form := newFilterForm(s.types(ctx, c), formValues)
	form.RecentN = recentN

	var results view.Section
	if filterErr != nil {
		results = s.skipped(ctx, pageTransactions, "results", "Matching transactions", filterErr, tableTransactions)
	} else {
		results = s.section(ctx, pageTransactions, "results", "Matching transactions", func(ctx context.Context, sec *view.Section) error {
			page, err := c.Transactions(ctx, f)
			if err != nil {
				return err
			}
			sec.KPIs = []view.KPI{
				{Label: "Total transactions", Value: view.Count(page.Total)},
				{Label: "Shown", Value: view.Count(int64(len(page.Transactions)))},
				{Label: "Page", Value: strconv.Itoa(f.Page)},
			}
			keep(sess, sec, view.TransactionsTable(tableTransactions, "", page.Transactions))
			if f.Page > 1 {
				prev := f
				prev.Page--
				form.PrevURL = "/transactions?" + prev.FormValues().Encode()
			}
			if int64(f.Page)*int64(f.Limit) < page.Total {
				next := f
				next.Page++
				form.NextURL = "/transactions?" + next.FormValues().Encode()
			}
			return nil
		}, tableTransactions)
	}

	recent := s.section(ctx, pageTransactions, "recent", "Most recent transactions", func(ctx context.Context, sec *view.Section) error {
		recs, err := c.RecentTransactions(ctx, recentN)
		if err != nil {
			return err
		}
		keep(sess, sec, view.TransactionsTable(tableRecent, "", recs))
		return nil
	}, tableRecent)

	data.Form = form
	data.Sections = []view.Section{results, recent}
	s.render(w, r, pageTransactions, "Transactions", data)
}

// sumAmounts totals the amounts of recs.
func sumAmounts(recs []model.TransactionRecord) (total float64, amounts []float64) {
	amounts = make([]float64, len(recs))
	for i, rec := range recs {
		amounts[i] = rec.Amount
		total += rec.Amount
	}
	return total, amounts
}

// knownType reports whether t is one of types; used to keep a submitted type
// selectable even when the API no longer lists it.
func knownType(types []string, t string) bool {
	return t == "" || slices.Contains(types, t)
}
