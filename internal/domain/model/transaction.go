// Package model contains the request and response shapes exchanged with the
// transactions API, plus the filter state built from dashboard forms.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// TransactionTypes are the operation types known to the dataset.
var TransactionTypes = []string{"PAYMENT", "TRANSFER", "CASH_OUT", "DEBIT", "CASH_IN"}

// FraudFlag decodes either a JSON boolean or a 0/1 number.
type FraudFlag bool

// UnmarshalJSON implements json.Unmarshaler.
func (f *FraudFlag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch string(b) {
	case "true", "1", `"1"`, `"true"`:
		*f = true
		return nil
	case "false", "0", `"0"`, `"false"`, "null":
		*f = false
		return nil
	}
	return fmt.Errorf("fraud flag: unexpected value %s", b)
}

// MarshalJSON writes the flag as a boolean.
func (f FraudFlag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// RecordID decodes a JSON string or number into its string form.
type RecordID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *RecordID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("record id: %w", err)
	}
	*id = RecordID(n.String())
	return nil
}

// TransactionRecord mirrors one row of the transactions dataset.
// Step is the dataset clock: hours since the start of the simulation.
type TransactionRecord struct {
	ID             RecordID  `json:"id"`
	Step           int       `json:"step" validate:"gte=0"`
	Type           string    `json:"type" validate:"required"`
	Amount         float64   `json:"amount" validate:"gte=0"`
	NameOrig       string    `json:"nameOrig"`
	OldBalanceOrg  float64   `json:"oldbalanceOrg"`
	NewBalanceOrig float64   `json:"newbalanceOrig"`
	NameDest       string    `json:"nameDest"`
	OldBalanceDest float64   `json:"oldbalanceDest"`
	NewBalanceDest float64   `json:"newbalanceDest"`
	IsFraud        FraudFlag `json:"isFraud"`
	IsFlaggedFraud FraudFlag `json:"isFlaggedFraud"`
}

// TransactionPage is the response of GET /transactions.
type TransactionPage struct {
	Page         int                 `json:"page"`
	Limit        int                 `json:"limit"`
	Total        int64               `json:"total" validate:"gte=0"`
	Transactions []TransactionRecord `json:"transactions" validate:"dive"`
}

// TransactionList is returned by the recent and per-customer listings.
type TransactionList struct {
	Transactions []TransactionRecord `json:"transactions" validate:"dive"`
}

// SearchRequest is the body of POST /transactions/search.
type SearchRequest struct {
	Type        string    `json:"type,omitempty"`
	IsFraud     *int      `json:"isFraud,omitempty"`
	AmountRange []float64 `json:"amount_range,omitempty"`
}

// SearchResult is the response of POST /transactions/search.
type SearchResult struct {
	Count        int64               `json:"count" validate:"gte=0"`
	Transactions []TransactionRecord `json:"transactions" validate:"dive"`
}

// TypeList is the response of GET /transactions/types.
type TypeList struct {
	Types []string `json:"types" validate:"dive,required"`
}

// FraudLabel renders the flag the way the dataset stores it.
func (f FraudFlag) FraudLabel() string {
	if f {
		return "1"
	}
	return "0"
}

// StepLabel formats the dataset step.
func (t TransactionRecord) StepLabel() string {
	return strconv.Itoa(t.Step)
}
