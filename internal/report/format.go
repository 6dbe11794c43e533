package report

import "github.com/shopspring/decimal"

// formatValue rounds v to precision decimals for display only; stored and
// published reports keep full float64 precision.
func formatValue(v float64, precision int32) string {
	return decimal.NewFromFloat(v).Round(precision).String()
}

// formatDollars renders an EV as a dollar amount for a $1 bet.
func formatDollars(v float64) string {
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}
