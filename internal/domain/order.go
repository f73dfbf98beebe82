package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Source names the integration that produced an order row.
type Source string

const (
	SourceStripe      Source = "stripe"
	SourceMarketplace Source = "marketplace"
)

// LineShape tags which line item sequence of an order is authoritative.
type LineShape string

const (
	LineShapeUnknown LineShape = ""
	LineShapeModern  LineShape = "modern"
	LineShapeLegacy  LineShape = "legacy"
	LineShapeNone    LineShape = "none"
)

// Order is the persisted result of a completed payment. SessionID is the
// idempotency key: repeated deliveries for the same session update one row.
type Order struct {
	ID                 string           `json:"id"`
	SessionID          string           `json:"sessionId"`
	Source             Source           `json:"source"`
	CustomerID         *string          `json:"customerId,omitempty"`
	CustomerEmail      string           `json:"customerEmail,omitempty"`
	Currency           string           `json:"currency"`
	AmountTotalMinor   *int64           `json:"amountTotal,omitempty"`
	TotalAmountMajor   *decimal.Decimal `json:"totalAmount,omitempty"`
	ShippingCostMinor  *int64           `json:"shippingCost,omitempty"`
	Status             string           `json:"status,omitempty"`
	PaymentStatus      string           `json:"paymentStatus,omitempty"`
	MarketplaceOrderID string           `json:"marketplaceOrderId,omitempty"`
	LineShape          LineShape        `json:"lineShape"`
	LineItems          []LineItem       `json:"lineItems,omitempty"`
	LegacyItems        []LegacyItem     `json:"legacyItems,omitempty"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt"`
}

// LineItem is a provider line in minor units.
type LineItem struct {
	Description string     `json:"description"`
	Quantity    *int64     `json:"quantity,omitempty"`
	AmountTotal *int64     `json:"amount_total,omitempty"`
	Price       *LinePrice `json:"price,omitempty"`
}

type LinePrice struct {
	UnitAmount *int64 `json:"unit_amount,omitempty"`
}

// UnitAmount returns price.unit_amount when present.
func (l LineItem) UnitAmount() *int64 {
	if l.Price == nil {
		return nil
	}
	return l.Price.UnitAmount
}

// LegacyItem is a marketplace line in major units. Older exports use name instead of title.
type LegacyItem struct {
	Title    string           `json:"title,omitempty"`
	Name     string           `json:"name,omitempty"`
	Quantity *int64           `json:"quantity,omitempty"`
	Price    *decimal.Decimal `json:"price,omitempty"`
}

// DisplayTitle prefers title over name.
func (l LegacyItem) DisplayTitle() string {
	if l.Title != "" {
		return l.Title
	}
	return l.Name
}

// ClassifyLines decides which sequence is authoritative. The modern sequence
// wins whenever it is non-empty; the two are never merged.
func ClassifyLines(modern []LineItem, legacy []LegacyItem) LineShape {
	switch {
	case len(modern) > 0:
		return LineShapeModern
	case len(legacy) > 0:
		return LineShapeLegacy
	default:
		return LineShapeNone
	}
}

// Tag stamps the line shape on o. Rows are tagged once when ingested.
func (o *Order) Tag() {
	o.LineShape = ClassifyLines(o.LineItems, o.LegacyItems)
}

// Shape returns the stored tag, classifying untagged rows written before tagging existed.
func (o Order) Shape() LineShape {
	if o.LineShape == LineShapeUnknown {
		return ClassifyLines(o.LineItems, o.LegacyItems)
	}
	return o.LineShape
}
