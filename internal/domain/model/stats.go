package model

import "fmt"

// Overview is the response of GET /stats/overview. FraudRate is a ratio.
type Overview struct {
	TotalTransactions int64   `json:"total_transactions" validate:"gte=0"`
	FraudRate         float64 `json:"fraud_rate" validate:"gte=0,lte=1"`
	AvgAmount         float64 `json:"avg_amount" validate:"gte=0"`
	MostCommonType    string  `json:"most_common_type"`
}

// TypeStats is one row of GET /stats/by-type.
type TypeStats struct {
	Type        string  `json:"type" validate:"required"`
	Count       int64   `json:"count" validate:"gte=0"`
	AvgAmount   float64 `json:"avg_amount" validate:"gte=0"`
	TotalAmount float64 `json:"total_amount" validate:"gte=0"`
}

// DailyStats is one row of GET /stats/daily; Day is the dataset step bucket.
type DailyStats struct {
	Day         int     `json:"day" validate:"gte=0"`
	Count       int64   `json:"count" validate:"gte=0"`
	AvgAmount   float64 `json:"avg_amount" validate:"gte=0"`
	TotalAmount float64 `json:"total_amount" validate:"gte=0"`
}

// AmountDistribution is the response of GET /stats/amount-distribution.
type AmountDistribution struct {
	Bins   []string `json:"bins" validate:"required"`
	Counts []int64  `json:"counts" validate:"required,dive,gte=0"`
}

// Check enforces that every bin has a count.
func (d AmountDistribution) Check() error {
	if len(d.Bins) != len(d.Counts) {
		return fmt.Errorf("amount distribution: %d bins but %d counts", len(d.Bins), len(d.Counts))
	}
	return nil
}
