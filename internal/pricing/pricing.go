// Package pricing derives sale prices from base prices and percentage
// discounts. Derived prices are never accepted as authoritative input;
// every create or update path that touches price or discount recomputes
// them here.
package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FinalPrice returns price scaled by (1 - discountPercent/100), rounded
// to 2 decimal places half-up. A zero discount yields the price
// unchanged. Range validation of discountPercent is the caller's
// responsibility; values outside [0,100] are passed through as-is.
func FinalPrice(price, discountPercent float64) float64 {
	p := decimal.NewFromFloat(price)
	d := decimal.NewFromFloat(discountPercent)

	final := p.Mul(hundred.Sub(d)).Div(hundred).Round(2)
	f, _ := final.Float64()
	return f
}
