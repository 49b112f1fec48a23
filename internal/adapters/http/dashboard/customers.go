package dashboard

import (
	"context"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/domain/model"
	"github.com/okian/bankdash/internal/view"
)

const (
	formCustomers = "customers"
	dirSent       = "sent"
	dirReceived   = "received"

	tableCustomers            = "customers"
	tableTopCustomers         = "top-customers"
	tableCustomerTransactions = "customer-transactions"
)

var customerKeys = []string{"page", "limit", "n", "by", "id", "dir"}

type customersForm struct {
	Page       int
	Limits     []option
	TopN       int
	By         []option
	CustomerID string
	Dir        []option
}

// customerQuery is the normalized customers form.
type customerQuery struct {
	page, limit int
	topN        int
	by          model.TopBy
	id          string
	dir         string
}

func (s *Server) parseCustomerQuery(v url.Values) customerQuery {
	q := customerQuery{
		page:  positiveInt(v.Get("page"), 1, math.MaxInt32),
		limit: s.customerRows,
		topN:  positiveInt(v.Get("n"), s.topN, maxListCount),
		by:    model.TopByVolume,
		id:    strings.TrimSpace(v.Get("id")),
		dir:   dirSent,
	}
	if n, err := strconv.Atoi(v.Get("limit")); err == nil && slices.Contains(model.PageSizes, n) {
		q.limit = n
	}
	if model.TopBy(v.Get("by")) == model.TopByCount {
		q.by = model.TopByCount
	}
	if v.Get("dir") == dirReceived {
		q.dir = dirReceived
	}
	return q
}

func (q customerQuery) form() customersForm {
	limits := make([]string, len(model.PageSizes))
	for i, n := range model.PageSizes {
		limits[i] = strconv.Itoa(n)
	}
	return customersForm{
		Page:       q.page,
		Limits:     options(limits, nil, strconv.Itoa(q.limit)),
		TopN:       q.topN,
		By:         options([]string{string(model.TopByVolume), string(model.TopByCount)}, []string{"Volume", "Transaction count"}, string(q.by)),
		CustomerID: q.id,
		Dir:        options([]string{dirSent, dirReceived}, []string{"Sent", "Received"}, q.dir),
	}
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)

	values := r.URL.Query()
	if submitted(values, customerKeys...) {
		sess.SetForm(formCustomers, values)
	} else {
		values = sess.Form(formCustomers)
	}
	q := s.parseCustomerQuery(values)

	data := pageData{Header: s.apiHeader(ctx, c), Form: q.form()}

	data.Sections = append(data.Sections, s.section(ctx, pageCustomers, "list", "Customers", func(ctx context.Context, sec *view.Section) error {
		page, err := c.Customers(ctx, q.page, q.limit)
		if err != nil {
			return err
		}
		sec.KPIs = []view.KPI{
			{Label: "Total customers", Value: view.Count(page.Total)},
			{Label: "Page", Value: strconv.Itoa(q.page)},
		}
		keep(sess, sec, view.CustomersTable(tableCustomers, page.Customers))
		return nil
	}, tableCustomers))

	data.Sections = append(data.Sections, s.section(ctx, pageCustomers, "top", "Top customers", func(ctx context.Context, sec *view.Section) error {
		rows, err := c.TopCustomers(ctx, q.topN, q.by)
		if err != nil {
			return err
		}
		labels := make([]string, len(rows))
		series := make([]float64, len(rows))
		title := "Total amount per customer"
		for i, r := range rows {
			labels[i] = r.CustomerID
			if q.by == model.TopByCount {
				series[i] = float64(r.TransactionCount)
			} else {
				series[i] = r.TotalAmount
			}
		}
		if q.by == model.TopByCount {
			title = "Transactions per customer"
		}
		sec.Charts = append(sec.Charts, view.BarChart(title, labels, series))
		keep(sess, sec, view.TopCustomersTable(tableTopCustomers, rows))
		return nil
	}, tableTopCustomers))

	if q.id != "" {
		data.Sections = append(data.Sections, s.section(ctx, pageCustomers, "profile", "Customer "+q.id, func(ctx context.Context, sec *view.Section) error {
			p, err := c.Customer(ctx, q.id)
			if err != nil {
				return err
			}
			fraud := "No"
			if p.Fraudulent {
				fraud = "Yes"
			}
			sec.KPIs = []view.KPI{
				{Label: "Transactions", Value: view.Count(p.TransactionsCount)},
				{Label: "Total amount", Value: view.Money(p.TotalAmount)},
				{Label: "Average amount", Value: view.Money(p.AvgAmount)},
				{Label: "Fraudulent", Value: fraud, Hint: view.Count(p.FraudCount) + " fraud transactions"},
			}
			return nil
		}))

		title := "Transactions sent"
		fetch := c.TransactionsByCustomer
		if q.dir == dirReceived {
			title = "Transactions received"
			fetch = c.TransactionsToCustomer
		}
		data.Sections = append(data.Sections, s.section(ctx, pageCustomers, "profile-transactions", title, func(ctx context.Context, sec *view.Section) error {
			recs, err := fetch(ctx, q.id)
			if err != nil {
				return err
			}
			keep(sess, sec, view.TransactionsTable(tableCustomerTransactions, "", recs))
			return nil
		}, tableCustomerTransactions))
	} else if sess != nil {
		// no profile on screen
		sess.DropTable(tableCustomerTransactions)
	}

	s.render(w, r, pageCustomers, "Customers", data)
}
