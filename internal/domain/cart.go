package domain

import "github.com/shopspring/decimal"

// CartLine is one purchasable item held in a browser cart.
type CartLine struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Total returns UnitPrice × Quantity.
func (l CartLine) Total() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
