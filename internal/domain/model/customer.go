package model

// CustomerPage is the response of GET /customers.
type CustomerPage struct {
	Page      int      `json:"page"`
	Limit     int      `json:"limit"`
	Total     int64    `json:"total" validate:"gte=0"`
	Customers []string `json:"customers"`
}

// TopCustomer is one row of GET /customers/top.
type TopCustomer struct {
	CustomerID       string  `json:"customer_id" validate:"required"`
	TransactionCount int64   `json:"transaction_count" validate:"gte=0"`
	TotalAmount      float64 `json:"total_amount" validate:"gte=0"`
	AvgAmount        float64 `json:"avg_amount" validate:"gte=0"`
	FraudCount       int64   `json:"fraud_count" validate:"gte=0"`
	Fraudulent       bool    `json:"fraudulent"`
}

// CustomerProfile is the response of GET /customers/{id}.
type CustomerProfile struct {
	CustomerID        string  `json:"customer_id"`
	TransactionsCount int64   `json:"transactions_count" validate:"gte=0"`
	TotalAmount       float64 `json:"total_amount" validate:"gte=0"`
	AvgAmount         float64 `json:"avg_amount" validate:"gte=0"`
	Fraudulent        bool    `json:"fraudulent"`
	FraudCount        int64   `json:"fraud_count" validate:"gte=0"`
}

// TopBy selects the ranking of GET /customers/top.
type TopBy string

const (
	TopByVolume TopBy = "volume"
	TopByCount  TopBy = "count"
)
