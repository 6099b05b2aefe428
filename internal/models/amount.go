package models

import (
	"github.com/shopspring/decimal"
)

// RoundAmount rounds a monetary amount to 2 decimal places. Rounding happens
// at mutation points and when a balance is recomputed, never inside the merge
// set operations themselves.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
