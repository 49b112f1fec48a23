package upstream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/okian/bankdash/internal/domain/apierr"
	"github.com/okian/bankdash/internal/domain/model"
)

// Health calls system/health with the short health timeout. Any 2xx is healthy.
func (c *Client) Health(ctx context.Context) error {
	const op = "upstream.health"
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()
	_, err := c.Fetch(ctx, Request{Method: http.MethodGet, Path: "system/health", Endpoint: "system/health"})
	return apierr.Wrap(op, err)
}

// Metadata returns the API version information.
func (c *Client) Metadata(ctx context.Context) (model.Metadata, error) {
	var out model.Metadata
	err := c.getJSON(ctx, "upstream.metadata", "system/metadata", "system/metadata", nil, &out)
	return out, err
}

// Overview returns the headline KPIs.
func (c *Client) Overview(ctx context.Context) (model.Overview, error) {
	var out model.Overview
	err := c.getJSON(ctx, "upstream.overview", "stats/overview", "stats/overview", nil, &out)
	return out, err
}

// AmountDistribution returns the amount histogram.
func (c *Client) AmountDistribution(ctx context.Context) (model.AmountDistribution, error) {
	var out model.AmountDistribution
	err := c.getJSON(ctx, "upstream.amount_distribution", "stats/amount-distribution", "stats/amount-distribution", nil, &out)
	return out, err
}

// StatsByType returns count and amounts per transaction type.
func (c *Client) StatsByType(ctx context.Context) ([]model.TypeStats, error) {
	var out []model.TypeStats
	err := c.getJSON(ctx, "upstream.stats_by_type", "stats/by-type", "stats/by-type", nil, &out)
	return out, err
}

// StatsDaily returns count and amounts per dataset day.
func (c *Client) StatsDaily(ctx context.Context) ([]model.DailyStats, error) {
	var out []model.DailyStats
	err := c.getJSON(ctx, "upstream.stats_daily", "stats/daily", "stats/daily", nil, &out)
	return out, err
}

// FraudSummary returns the detector's headline numbers.
func (c *Client) FraudSummary(ctx context.Context) (model.FraudSummary, error) {
	var out model.FraudSummary
	err := c.getJSON(ctx, "upstream.fraud_summary", "fraud/summary", "fraud/summary", nil, &out)
	return out, err
}

// FraudByType returns the fraud rate per transaction type.
func (c *Client) FraudByType(ctx context.Context) ([]model.FraudByType, error) {
	var out []model.FraudByType
	err := c.getJSON(ctx, "upstream.fraud_by_type", "fraud/by-type", "fraud/by-type", nil, &out)
	return out, err
}

// PredictFraud submits one transaction for scoring. The request is validated
// before anything is sent.
func (c *Client) PredictFraud(ctx context.Context, req model.FraudPredictionRequest) (model.FraudPredictionResponse, error) {
	const op = "upstream.predict_fraud"
	var out model.FraudPredictionResponse
	if err := model.Validate(&req); err != nil {
		return out, apierr.WrapKind(op, apierr.ErrInvalidRequest, err)
	}
	raw, err := c.postJSON(ctx, op, "fraud/predict", "fraud/predict", req, &out)
	out.Raw = raw
	return out, err
}

// TransactionTypes lists the operation types present in the dataset.
func (c *Client) TransactionTypes(ctx context.Context) ([]string, error) {
	var out model.TypeList
	err := c.getJSON(ctx, "upstream.transaction_types", "transactions/types", "transactions/types", nil, &out)
	return out.Types, err
}

// Transactions returns one page of transactions matching f.
func (c *Client) Transactions(ctx context.Context, f model.FilterCriteria) (model.TransactionPage, error) {
	var out model.TransactionPage
	err := c.getJSON(ctx, "upstream.transactions", "transactions", "transactions", f.Query(), &out)
	return out, err
}

// RecentTransactions returns the n most recent transactions.
func (c *Client) RecentTransactions(ctx context.Context, n int) ([]model.TransactionRecord, error) {
	const op = "upstream.recent_transactions"
	if n < 1 {
		return nil, apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("n must be positive, got %d", n))
	}
	var out model.TransactionList
	err := c.getJSON(ctx, op, "transactions/recent", "transactions/recent", url.Values{"n": {strconv.Itoa(n)}}, &out)
	return out.Transactions, err
}

// SearchTransactions runs a multi-criteria search; paging in f is ignored.
func (c *Client) SearchTransactions(ctx context.Context, f model.FilterCriteria) (model.SearchResult, error) {
	var out model.SearchResult
	_, err := c.postJSON(ctx, "upstream.search_transactions", "transactions/search", "transactions/search", f.SearchBody(), &out)
	return out, err
}

// Transaction returns a single transaction by id.
func (c *Client) Transaction(ctx context.Context, id string) (model.TransactionRecord, error) {
	const op = "upstream.transaction"
	var out model.TransactionRecord
	seg, err := pathID(op, id)
	if err != nil {
		return out, err
	}
	err = c.getJSON(ctx, op, "transactions/{id}", "transactions/"+seg, nil, &out)
	return out, err
}

// TransactionsByCustomer returns the transactions a customer sent.
func (c *Client) TransactionsByCustomer(ctx context.Context, customerID string) ([]model.TransactionRecord, error) {
	return c.customerTransactions(ctx, "upstream.transactions_by_customer", "transactions/by-customer", customerID)
}

// TransactionsToCustomer returns the transactions a customer received.
func (c *Client) TransactionsToCustomer(ctx context.Context, customerID string) ([]model.TransactionRecord, error) {
	return c.customerTransactions(ctx, "upstream.transactions_to_customer", "transactions/to-customer", customerID)
}

func (c *Client) customerTransactions(ctx context.Context, op, base, customerID string) ([]model.TransactionRecord, error) {
	seg, err := pathID(op, customerID)
	if err != nil {
		return nil, err
	}
	var out model.TransactionList
	err = c.getJSON(ctx, op, base+"/{id}", base+"/"+seg, nil, &out)
	return out.Transactions, err
}

// Customers returns one page of customer ids.
func (c *Client) Customers(ctx context.Context, page, limit int) (model.CustomerPage, error) {
	const op = "upstream.customers"
	var out model.CustomerPage
	if page < 1 || limit < 1 {
		return out, apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("page and limit must be positive"))
	}
	q := url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}
	err := c.getJSON(ctx, op, "customers", "customers", q, &out)
	return out, err
}

// TopCustomers returns the n largest customers ranked by volume or count.
func (c *Client) TopCustomers(ctx context.Context, n int, by model.TopBy) ([]model.TopCustomer, error) {
	const op = "upstream.top_customers"
	if n < 1 {
		return nil, apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("n must be positive, got %d", n))
	}
	if by != model.TopByVolume && by != model.TopByCount {
		return nil, apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("unknown ranking %q", by))
	}
	var out []model.TopCustomer
	q := url.Values{"n": {strconv.Itoa(n)}, "by": {string(by)}}
	err := c.getJSON(ctx, op, "customers/top", "customers/top", q, &out)
	return out, err
}

// Customer returns the aggregate profile of one customer.
func (c *Client) Customer(ctx context.Context, customerID string) (model.CustomerProfile, error) {
	const op = "upstream.customer"
	var out model.CustomerProfile
	seg, err := pathID(op, customerID)
	if err != nil {
		return out, err
	}
	err = c.getJSON(ctx, op, "customers/{id}", "customers/"+seg, nil, &out)
	if err == nil && out.CustomerID == "" {
		out.CustomerID = customerID
	}
	return out, err
}

func pathID(op, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", apierr.WrapKind(op, apierr.ErrInvalidRequest, fmt.Errorf("id must not be empty"))
	}
	return url.PathEscape(id), nil
}
