package dashboard

import (
	"context"
	"net/http"
	"strconv"

	"github.com/okian/bankdash/internal/adapters/session"
	"github.com/okian/bankdash/internal/view"
)

const (
	tableStatsByType       = "stats-by-type"
	tableStatsDaily        = "stats-daily"
	tableStatsDistribution = "stats-distribution"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess, _ := session.FromContext(ctx)
	c := s.clientFor(sess)

	data := pageData{Header: s.apiHeader(ctx, c)}
	data.Sections = []view.Section{
		s.section(ctx, pageStats, "by-type", "By transaction type", func(ctx context.Context, sec *view.Section) error {
			rows, err := c.StatsByType(ctx)
			if err != nil {
				return err
			}
			labels := make([]string, len(rows))
			totals := make([]float64, len(rows))
			for i, r := range rows {
				labels[i], totals[i] = r.Type, r.TotalAmount
			}
			sec.Charts = append(sec.Charts, view.BarChart("Total amount per type", labels, totals))
			keep(sess, sec, view.TypeStatsTable(tableStatsByType, rows))
			return nil
		}, tableStatsByType),
		s.section(ctx, pageStats, "daily", "Daily activity", func(ctx context.Context, sec *view.Section) error {
			rows, err := c.StatsDaily(ctx)
			if err != nil {
				return err
			}
			labels := make([]string, len(rows))
			counts := make([]float64, len(rows))
			for i, r := range rows {
				labels[i], counts[i] = strconv.Itoa(r.Day), float64(r.Count)
			}
			sec.Charts = append(sec.Charts, view.LineChart("Transactions per day", labels, counts))
			keep(sess, sec, view.DailyStatsTable(tableStatsDaily, rows))
			return nil
		}, tableStatsDaily),
		s.section(ctx, pageStats, "distribution", "Amount distribution", func(ctx context.Context, sec *view.Section) error {
			d, err := c.AmountDistribution(ctx)
			if err != nil {
				return err
			}
			sec.Charts = append(sec.Charts, view.Histogram("Transactions per amount bin", d.Bins, d.Counts))
			keep(sess, sec, view.DistributionTable(tableStatsDistribution, d))
			return nil
		}, tableStatsDistribution),
	}
	s.render(w, r, pageStats, "Statistics", data)
}
