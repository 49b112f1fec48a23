package model

import "encoding/json"

// FraudPredictionRequest is the body of POST /fraud/predict.
type FraudPredictionRequest struct {
	Type           string  `json:"type" validate:"required,oneof=PAYMENT TRANSFER CASH_OUT DEBIT CASH_IN"`
	Amount         float64 `json:"amount" validate:"gte=0"`
	OldBalanceOrg  float64 `json:"oldbalanceOrg" validate:"gte=0"`
	NewBalanceOrig float64 `json:"newbalanceOrig" validate:"gte=0"`
}

// DefaultPrediction holds the values the prediction form starts with.
func DefaultPrediction() FraudPredictionRequest {
	return FraudPredictionRequest{
		Type:           "PAYMENT",
		Amount:         1000,
		OldBalanceOrg:  5000,
		NewBalanceOrig: 4000,
	}
}

// FraudPredictionResponse is the verdict returned by the scoring service.
type FraudPredictionResponse struct {
	IsFraud     FraudFlag `json:"isFraud"`
	Probability float64   `json:"probability" validate:"gte=0,lte=1"`
	Reasons     []string  `json:"reasons"`

	// Raw keeps the response body as received.
	Raw json.RawMessage `json:"-"`
}

// FraudSummary is the response of GET /fraud/summary.
type FraudSummary struct {
	TotalFrauds int64   `json:"total_frauds" validate:"gte=0"`
	Flagged     int64   `json:"flagged" validate:"gte=0"`
	Precision   float64 `json:"precision" validate:"gte=0,lte=1"`
	Recall      float64 `json:"recall" validate:"gte=0,lte=1"`
}

// FraudByType is one row of GET /fraud/by-type. FraudRate is in percent.
type FraudByType struct {
	Type              string  `json:"type" validate:"required"`
	TotalTransactions int64   `json:"total_transactions" validate:"gte=0"`
	FraudCount        int64   `json:"fraud_count" validate:"gte=0"`
	FraudRate         float64 `json:"fraud_rate" validate:"gte=0,lte=100"`
}
