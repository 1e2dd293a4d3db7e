package model

import "github.com/shopspring/decimal"

// VATRate is the fixed tax rate applied to sales and bills.
var VATRate = decimal.New(20, -2) // 0.20

// SplitTolerance is the maximum absolute difference allowed between a split
// payment (cash + card) and the bill total.
var SplitTolerance = decimal.New(1, -2) // 0.01

// LineTotal computes quantity × unitPrice − discount, rounded to two decimals
// and floored at zero. A discount can never push a line negative.
func LineTotal(quantity int, unitPrice, discount decimal.Decimal) decimal.Decimal {
	total := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total.Round(2)
}

// VATOf returns the tax due on a subtotal, rounded to two decimals.
func VATOf(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(VATRate).Round(2)
}
