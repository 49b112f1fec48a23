package view

import (
	"strconv"

	"github.com/okian/bankdash/internal/domain/model"
)

// Table is a rendered grid. Cells hold plain strings so that the same rows
// are shown on the page and written to an export.
type Table struct {
	// Name identifies the table in export URLs.
	Name    string
	Title   string
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// TransactionColumns are the dataset columns in their schema order.
var TransactionColumns = []string{
	"id", "step", "type", "amount",
	"nameOrig", "oldbalanceOrg", "newbalanceOrig",
	"nameDest", "oldbalanceDest", "newbalanceDest",
	"isFraud", "isFlaggedFraud",
}

// TransactionsTable renders transaction records.
func TransactionsTable(name, title string, recs []model.TransactionRecord) Table {
	t := Table{Name: name, Title: title, Columns: TransactionColumns, Rows: make([][]string, 0, len(recs))}
	for _, r := range recs {
		t.Rows = append(t.Rows, []string{
			string(r.ID),
			r.StepLabel(),
			r.Type,
			Raw(r.Amount),
			r.NameOrig,
			Raw(r.OldBalanceOrg),
			Raw(r.NewBalanceOrig),
			r.NameDest,
			Raw(r.OldBalanceDest),
			Raw(r.NewBalanceDest),
			r.IsFraud.FraudLabel(),
			r.IsFlaggedFraud.FraudLabel(),
		})
	}
	return t
}

// TypeStatsTable renders per-type statistics.
func TypeStatsTable(name string, rows []model.TypeStats) Table {
	t := Table{Name: name, Title: "By transaction type", Columns: []string{"type", "count", "avg_amount", "total_amount"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{r.Type, strconv.FormatInt(r.Count, 10), Raw(r.AvgAmount), Raw(r.TotalAmount)})
	}
	return t
}

// DailyStatsTable renders per-day statistics.
func DailyStatsTable(name string, rows []model.DailyStats) Table {
	t := Table{Name: name, Title: "Daily activity", Columns: []string{"day", "count", "avg_amount", "total_amount"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{strconv.Itoa(r.Day), strconv.FormatInt(r.Count, 10), Raw(r.AvgAmount), Raw(r.TotalAmount)})
	}
	return t
}

// DistributionTable renders histogram bins and their counts.
func DistributionTable(name string, d model.AmountDistribution) Table {
	t := Table{Name: name, Title: "Amount distribution", Columns: []string{"bin", "count"}}
	for i, b := range d.Bins {
		if i >= len(d.Counts) {
			break
		}
		t.Rows = append(t.Rows, []string{b, strconv.FormatInt(d.Counts[i], 10)})
	}
	return t
}

// FraudByTypeTable renders fraud counts per type. Rates are in percent.
func FraudByTypeTable(name string, rows []model.FraudByType) Table {
	t := Table{Name: name, Title: "Fraud by type", Columns: []string{"type", "total_transactions", "fraud_count", "fraud_rate"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.Type,
			strconv.FormatInt(r.TotalTransactions, 10),
			strconv.FormatInt(r.FraudCount, 10),
			strconv.FormatFloat(r.FraudRate, 'f', 4, 64),
		})
	}
	return t
}

// TopCustomersTable renders the customer ranking.
func TopCustomersTable(name string, rows []model.TopCustomer) Table {
	t := Table{Name: name, Title: "Top customers", Columns: []string{"customer_id", "transaction_count", "total_amount", "avg_amount", "fraud_count", "fraudulent"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, []string{
			r.CustomerID,
			strconv.FormatInt(r.TransactionCount, 10),
			Raw(r.TotalAmount),
			Raw(r.AvgAmount),
			strconv.FormatInt(r.FraudCount, 10),
			strconv.FormatBool(r.Fraudulent),
		})
	}
	return t
}

// CustomersTable renders one page of customer ids.
func CustomersTable(name string, ids []string) Table {
	t := Table{Name: name, Title: "Customers", Columns: []string{"customer_id"}}
	for _, id := range ids {
		t.Rows = append(t.Rows, []string{id})
	}
	return t
}
