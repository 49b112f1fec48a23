// Package view turns API responses into display values: formatted numbers,
// tables, SVG chart geometry, KPI callouts and error banners. It performs no
// I/O and no aggregation.
package view

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Count formats an integer with thousands separators.
func Count(n int64) string {
	return printer.Sprintf("%d", n)
}

// Amount formats a value with thousands separators and two decimals.
func Amount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return printer.Sprintf("%.2f", v)
}

// Money formats a value as dollars with two decimals.
func Money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	if v < 0 {
		return "-$" + printer.Sprintf("%.2f", -v)
	}
	return "$" + printer.Sprintf("%.2f", v)
}

// Percent formats a ratio in [0,1] as a percentage.
func Percent(ratio float64) string {
	return PercentPoints(ratio * 100)
}

// PercentPoints formats a value that is already in percent.
func PercentPoints(pct float64) string {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return "n/a"
	}
	return strconv.FormatFloat(pct, 'f', 2, 64) + "%"
}

// Raw formats a value for tables and exports: plain digits, two decimals.
func Raw(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Mean returns the average of values, or zero for none.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
