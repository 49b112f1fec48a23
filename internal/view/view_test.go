package view

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/bankdash/internal/domain/apierr"
	"github.com/okian/bankdash/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatting(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"count groups thousands", Count(6362620), "6,362,620"},
		{"count small", Count(7), "7"},
		{"money", Money(1234.5), "$1,234.50"},
		{"money negative", Money(-12), "-$12.00"},
		{"amount", Amount(179861.903), "179,861.90"},
		{"percent from ratio", Percent(0.00129), "0.13%"},
		{"percent points", PercentPoints(12.3), "12.30%"},
		{"raw keeps digits", Raw(1234.5), "1234.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.InDelta(t, 2.0, Mean([]float64{1, 2, 3}), 1e-9)
	assert.Zero(t, Mean(nil))
}

func TestTransactionsTable(t *testing.T) {
	recs := []model.TransactionRecord{
		{ID: "1", Step: 1, Type: "TRANSFER", Amount: 181, NameOrig: "C1", NameDest: "C2", IsFraud: true},
		{ID: "2", Step: 3, Type: "PAYMENT", Amount: 9.99},
	}
	tbl := TransactionsTable("transactions", "Results", recs)

	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, TransactionColumns, tbl.Columns)
	assert.Equal(t, []string{"1", "1", "TRANSFER", "181.00", "C1", "0.00", "0.00", "C2", "0.00", "0.00", "1", "0"}, tbl.Rows[0])
	for _, row := range tbl.Rows {
		assert.Len(t, row, len(tbl.Columns))
	}
	assert.True(t, TransactionsTable("x", "", nil).Empty())
}

func TestAggregateTables(t *testing.T) {
	dist := DistributionTable("dist", model.AmountDistribution{Bins: []string{"0-1k", "1k-10k"}, Counts: []int64{5, 2}})
	assert.Equal(t, [][]string{{"0-1k", "5"}, {"1k-10k", "2"}}, dist.Rows)

	fraud := FraudByTypeTable("fraud", []model.FraudByType{{Type: "TRANSFER", TotalTransactions: 100, FraudCount: 1, FraudRate: 1}})
	assert.Equal(t, []string{"TRANSFER", "100", "1", "1.0000"}, fraud.Rows[0])

	top := TopCustomersTable("top", []model.TopCustomer{{CustomerID: "C9", TransactionCount: 3, TotalAmount: 30, AvgAmount: 10, Fraudulent: true}})
	assert.Equal(t, "true", top.Rows[0][5])

	assert.Equal(t, 3, CustomersTable("c", []string{"a", "b", "c"}).Len())
	assert.Equal(t, "4", DailyStatsTable("d", []model.DailyStats{{Day: 4, Count: 1}}).Rows[0][0])
	assert.Equal(t, "CASH_IN", TypeStatsTable("t", []model.TypeStats{{Type: "CASH_IN"}}).Rows[0][0])
}

func TestCharts(t *testing.T) {
	t.Run("bar chart keeps bars inside the plot", func(t *testing.T) {
		c := BarChart("Counts", []string{"A", "B", "C"}, []float64{10, 40, 0})
		require.Len(t, c.Bars, 3)
		assert.False(t, c.Empty())
		for _, b := range c.Bars {
			assert.GreaterOrEqual(t, b.X, c.Left)
			assert.LessOrEqual(t, b.X+b.W, c.Right+0.001)
			assert.GreaterOrEqual(t, b.Y, c.Top)
			assert.InDelta(t, c.Bottom, b.Y+b.H, 0.001)
		}
		assert.Greater(t, c.Bars[1].H, c.Bars[0].H)
		assert.Zero(t, c.Bars[2].H)
		assert.Len(t, c.YLabels, yTicks+1)
		assert.Equal(t, "50", c.YLabels[yTicks].Text)
	})

	t.Run("histogram thins labels", func(t *testing.T) {
		bins := make([]string, 30)
		counts := make([]int64, 30)
		for i := range bins {
			bins[i] = strings.Repeat("x", i+1)
			counts[i] = int64(i)
		}
		c := Histogram("Amounts", bins, counts)
		assert.Equal(t, ChartHistogram, c.Kind)
		assert.Len(t, c.Bars, 30)
		assert.LessOrEqual(t, len(c.XLabels), maxXLabels)
	})

	t.Run("line chart has one point per value", func(t *testing.T) {
		c := LineChart("Daily", []string{"1", "2", "3", "4"}, []float64{1, 5e6, 2e6, 3})
		assert.Len(t, strings.Fields(c.Points), 4)
		assert.Len(t, c.Dots, 4)
		assert.Equal(t, "5M", c.YLabels[yTicks].Text)
	})

	t.Run("empty series draws nothing", func(t *testing.T) {
		assert.True(t, BarChart("none", nil, nil).Empty())
		assert.True(t, LineChart("none", []string{"a"}, nil).Empty())
	})
}

func TestBannerFor(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		title string
		kind  BannerKind
	}{
		{"unreachable", apierr.WrapKind("op", apierr.ErrUnreachable, errors.New("dial tcp")), "API unreachable", BannerError},
		{"status", apierr.Wrap("op", &apierr.StatusError{StatusCode: 500, Message: "boom"}), "API returned 500", BannerError},
		{"malformed", apierr.NewKind("op", apierr.ErrMalformed), "Could not parse the API response", BannerError},
		{"invalid request", apierr.NewKind("op", apierr.ErrInvalidRequest), "Invalid input", BannerWarning},
		{"invalid filter", model.ErrInvalidFilter, "Invalid input", BannerWarning},
		{"other", errors.New("nil map"), "Something went wrong", BannerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BannerFor(tt.err)
			require.NotNil(t, b)
			assert.Equal(t, tt.title, b.Title)
			assert.Equal(t, tt.kind, b.Kind)
		})
	}
	assert.Nil(t, BannerFor(nil))

	s := Section{Banner: BannerFor(apierr.Wrap("op", &apierr.StatusError{StatusCode: 404, Message: "Not Found"}))}
	assert.True(t, s.Failed())
	assert.Equal(t, "Not Found", s.Banner.Detail)
}
