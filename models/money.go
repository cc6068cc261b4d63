package models

import "github.com/shopspring/decimal"

func init() {
	// Amounts are rendered as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// SplitFee splits amount into the platform fee and the remainder credited to
// the recipient. fee + net always equals amount.
func SplitFee(amount, rate decimal.Decimal) (fee decimal.Decimal, net decimal.Decimal) {
	fee = amount.Mul(rate)
	net = amount.Sub(fee)
	return fee, net
}
