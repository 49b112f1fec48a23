package dashboard

import (
	"context"
	"net/http"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/domain/apierr"
	"github.com/okian/bankdash/internal/domain/model"
	"github.com/okian/bankdash/internal/view"
)

const tableSearch = "search"

func (s *Server) handleSearchForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)

	f, _ := sess.Search()
	data := pageData{
		Header: s.apiHeader(ctx, c),
		Form:   newFilterForm(s.types(ctx, c), f.FormValues()),
	}
	s.render(w, r, pageSearch, "Search", data)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)
	data := pageData{Header: s.apiHeader(ctx, c)}

	if err := r.ParseForm(); err != nil {
		err = apierr.WrapKind("dashboard.search", apierr.ErrInvalidRequest, err)
		data.Banner = view.BannerFor(err)
		data.Form = newFilterForm(s.types(ctx, c), nil)
		data.Sections = []view.Section{s.skipped(ctx, pageSearch, "results", "Search results", err, tableSearch)}
		s.render(w, r, pageSearch, "Search", data)
		return
	}

	f, err := model.ParseFilter(r.PostForm)
	if err != nil {
		data.Banner = view.BannerFor(err)
		data.Form = newFilterForm(s.types(ctx, c), r.PostForm)
		data.Sections = []view.Section{s.skipped(ctx, pageSearch, "results", "Search results", err, tableSearch)}
		s.render(w, r, pageSearch, "Search", data)
		return
	}
	sess.SetSearch(f)
	data.Form = newFilterForm(s.types(ctx, c), f.FormValues())

	data.Sections = []view.Section{s.section(ctx, pageSearch, "results", "Search results", func(ctx context.Context, sec *view.Section) error {
		res, err := c.SearchTransactions(ctx, f)
		if err != nil {
			return err
		}
		total, amounts := sumAmounts(res.Transactions)
		sec.KPIs = []view.KPI{
			{Label: "Matching transactions", Value: view.Count(res.Count)},
			{Label: "Total amount", Value: view.Money(total)},
			{Label: "Mean amount", Value: view.Money(view.Mean(amounts))},
		}
		if int64(len(res.Transactions)) < res.Count {
			sec.Note = "Showing " + view.Count(int64(len(res.Transactions))) + " of " + view.Count(res.Count) + " matches; totals cover the rows shown."
		}
		keep(sess, sec, view.TransactionsTable(tableSearch, "", res.Transactions))
		return nil
	}, tableSearch)}
	s.render(w, r, pageSearch, "Search", data)
}
