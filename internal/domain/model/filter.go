package model

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidFilter is returned when form input cannot form a FilterCriteria.
var ErrInvalidFilter = errors.New("invalid filter")

// FraudFilter narrows a listing on the fraud flag.
type FraudFilter string

const (
	FraudAny   FraudFilter = ""
	FraudOnly  FraudFilter = "fraud"
	FraudLegit FraudFilter = "legit"
)

// PageSizes are the page sizes offered by the transactions form.
var PageSizes = []int{10, 25, 50, 100}

// searchAmountCeiling stands in for an open upper bound in search bodies.
const searchAmountCeiling = 999999999

// FilterCriteria is the set of query parameters a user selects to narrow the
// transaction list. A zero amount means the bound is not set.
type FilterCriteria struct {
	Type      string
	Fraud     FraudFilter
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	Page      int
	Limit     int
}

// DefaultFilter is the filter shown before anything was submitted.
func DefaultFilter() FilterCriteria {
	return FilterCriteria{Page: 1, Limit: PageSizes[0]}
}

// ParseFilter builds a FilterCriteria from submitted form values.
func ParseFilter(values url.Values) (FilterCriteria, error) {
	f := DefaultFilter()

	f.Type = strings.ToUpper(strings.TrimSpace(values.Get("type")))
	if f.Type != "" && !validType(f.Type) {
		return f, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidFilter, f.Type)
	}

	switch FraudFilter(strings.TrimSpace(values.Get("fraud"))) {
	case FraudAny:
	case FraudOnly:
		f.Fraud = FraudOnly
	case FraudLegit:
		f.Fraud = FraudLegit
	default:
		return f, fmt.Errorf("%w: fraud must be empty, %q or %q", ErrInvalidFilter, FraudOnly, FraudLegit)
	}

	var err error
	if f.MinAmount, err = parseAmount(values.Get("min_amount"), "min_amount"); err != nil {
		return f, err
	}
	if f.MaxAmount, err = parseAmount(values.Get("max_amount"), "max_amount"); err != nil {
		return f, err
	}
	if f.HasMax() && f.MinAmount.GreaterThan(f.MaxAmount) {
		return f, fmt.Errorf("%w: min_amount %s is greater than max_amount %s", ErrInvalidFilter, f.MinAmount, f.MaxAmount)
	}

	if s := strings.TrimSpace(values.Get("page")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return f, fmt.Errorf("%w: page must be a positive integer", ErrInvalidFilter)
		}
		f.Page = n
	}
	if s := strings.TrimSpace(values.Get("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || !slices.Contains(PageSizes, n) {
			return f, fmt.Errorf("%w: limit must be one of %v", ErrInvalidFilter, PageSizes)
		}
		f.Limit = n
	}
	return f, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a number", ErrInvalidFilter, field)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s must not be negative", ErrInvalidFilter, field)
	}
	return d, nil
}

func validType(t string) bool {
	// The API may expose more types than the dataset defaults; accept any
	// upper-case identifier.
	for _, r := range t {
		if (r < 'A' || r > 'Z') && r != '_' {
			return false
		}
	}
	return true
}

// HasMin reports whether a lower amount bound is set.
func (f FilterCriteria) HasMin() bool { return f.MinAmount.IsPositive() }

// HasMax reports whether an upper amount bound is set.
func (f FilterCriteria) HasMax() bool { return f.MaxAmount.IsPositive() }

// Query renders the filter as GET /transactions query parameters.
func (f FilterCriteria) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(f.Page, 1)))
	q.Set("limit", strconv.Itoa(max(f.Limit, 1)))
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	switch f.Fraud {
	case FraudOnly:
		q.Set("isFraud", "1")
	case FraudLegit:
		q.Set("isFraud", "0")
	}
	if f.HasMin() {
		q.Set("min_amount", f.MinAmount.String())
	}
	if f.HasMax() {
		q.Set("max_amount", f.MaxAmount.String())
	}
	return q
}

// SearchBody renders the filter as a POST /transactions/search body. Paging
// is not part of a search.
func (f FilterCriteria) SearchBody() SearchRequest {
	var body SearchRequest
	body.Type = f.Type
	switch f.Fraud {
	case FraudOnly:
		one := 1
		body.IsFraud = &one
	case FraudLegit:
		zero := 0
		body.IsFraud = &zero
	}
	if f.HasMin() || f.HasMax() {
		hi := float64(searchAmountCeiling)
		if f.HasMax() {
			hi = f.MaxAmount.InexactFloat64()
		}
		body.AmountRange = []float64{f.MinAmount.InexactFloat64(), hi}
	}
	return body
}

// FormValues renders the filter back into form fields so the page shows the
// last submitted values.
func (f FilterCriteria) FormValues() url.Values {
	v := url.Values{}
	v.Set("type", f.Type)
	v.Set("fraud", string(f.Fraud))
	v.Set("min_amount", "")
	v.Set("max_amount", "")
	if f.HasMin() {
		v.Set("min_amount", f.MinAmount.String())
	}
	if f.HasMax() {
		v.Set("max_amount", f.MaxAmount.String())
	}
	v.Set("page", strconv.Itoa(max(f.Page, 1)))
	v.Set("limit", strconv.Itoa(max(f.Limit, 1)))
	return v
}
