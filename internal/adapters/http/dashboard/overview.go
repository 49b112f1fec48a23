package dashboard

import (
	"context"
	"net/http"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/view"
)

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)

	data := pageData{Header: s.apiHeader(ctx, c)}
	data.Sections = []view.Section{
		s.section(ctx, pageOverview, "kpis", "Key figures", func(ctx context.Context, sec *view.Section) error {
			ov, err := c.Overview(ctx)
			if err != nil {
				return err
			}
			sec.KPIs = []view.KPI{
				{Label: "Total transactions", Value: view.Count(ov.TotalTransactions)},
				{Label: "Fraud rate", Value: view.Percent(ov.FraudRate)},
				{Label: "Average amount", Value: view.Money(ov.AvgAmount)},
				{Label: "Most common type", Value: ov.MostCommonType},
			}
			return nil
		}),
		s.section(ctx, pageOverview, "distribution", "Amount distribution", func(ctx context.Context, sec *view.Section) error {
			d, err := c.AmountDistribution(ctx)
			if err != nil {
				return err
			}
			sec.Charts = append(sec.Charts, view.Histogram("Transactions per amount bin", d.Bins, d.Counts))
			return nil
		}),
		s.section(ctx, pageOverview, "types", "Transactions by type", func(ctx context.Context, sec *view.Section) error {
			rows, err := c.StatsByType(ctx)
			if err != nil {
				return err
			}
			labels := make([]string, len(rows))
			counts := make([]float64, len(rows))
			for i, r := range rows {
				labels[i], counts[i] = r.Type, float64(r.Count)
			}
			sec.Charts = append(sec.Charts, view.BarChart("Count per type", labels, counts))
			return nil
		}),
		s.section(ctx, pageOverview, "fraud-by-type", "Fraud rate by type", func(ctx context.Context, sec *view.Section) error {
			rows, err := c.FraudByType(ctx)
			if err != nil {
				return err
			}
			labels := make([]string, len(rows))
			rates := make([]float64, len(rows))
			for i, r := range rows {
				labels[i], rates[i] = r.Type, r.FraudRate
			}
			sec.Charts = append(sec.Charts, view.BarChart("Fraud rate (%) per type", labels, rates))
			return nil
		}),
	}
	s.render(w, r, pageOverview, "Overview", data)
}
