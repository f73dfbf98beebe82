// Package reconcile turns a stored order of either provenance into one
// display view for the account pages.
package reconcile

import (
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/money"
)

const (
	FreeShippingLabel = "Gratis Versand"
	NoItemsLabel      = "Keine Artikelinformationen verfügbar"
	QuantityLabel     = "Menge"
	untitledItem      = "Artikel"
)

// View is the normalised, display-ready form of an order. Nil pointers mean
// the corresponding line or badge is omitted.
type View struct {
	SessionID    string        `json:"sessionId"`
	Source       domain.Source `json:"source"`
	CreatedAt    time.Time     `json:"createdAt"`
	Currency     string        `json:"currency"`
	TotalDisplay string        `json:"total"`
	Shipping     *string       `json:"shipping,omitempty"`
	Status       *string       `json:"status,omitempty"`
	Reference    *string       `json:"reference,omitempty"`
	Lines        []LineView    `json:"lines"`
	Placeholder  string        `json:"placeholder,omitempty"`
}

// LineView is one rendered line item.
type LineView struct {
	Title   string `json:"title"`
	Detail  string `json:"detail,omitempty"`
	Total   string `json:"total,omitempty"`
	Display string `json:"display"`
}

// Order reconciles o into a View.
func Order(o domain.Order) View {
	currency := strings.ToUpper(strings.TrimSpace(o.Currency))
	v := View{
		SessionID:    o.SessionID,
		Source:       o.Source,
		CreatedAt:    o.CreatedAt,
		Currency:     currency,
		TotalDisplay: money.Format(currency, Total(o)),
		Shipping:     shippingLine(currency, o.ShippingCostMinor),
		Status:       firstNonEmpty(o.Status, o.PaymentStatus),
		Reference:    firstNonEmpty(o.MarketplaceOrderID, o.SessionID),
		Lines:        []LineView{},
	}

	switch o.Shape() {
	case domain.LineShapeModern:
		for _, li := range o.LineItems {
			v.Lines = append(v.Lines, renderLine(currency, li.Description, li.Quantity,
				money.FromMinor(li.UnitAmount()), money.FromMinor(li.AmountTotal)))
		}
	case domain.LineShapeLegacy:
		for _, li := range o.LegacyItems {
			v.Lines = append(v.Lines, renderLine(currency, li.DisplayTitle(), li.Quantity,
				money.FromMajor(li.Price), money.None()))
		}
	}
	if len(v.Lines) == 0 {
		v.Placeholder = NoItemsLabel
	}
	return v
}

// Total resolves the order total: the legacy major-unit field first, then the
// minor-unit field, else absent.
func Total(o domain.Order) money.Money {
	if o.TotalAmountMajor != nil {
		return money.FromMajor(o.TotalAmountMajor)
	}
	return money.FromMinor(o.AmountTotalMinor)
}

// Views reconciles a list preserving order.
func Views(orders []domain.Order) []View {
	out := make([]View, 0, len(orders))
	for _, o := range orders {
		out = append(out, Order(o))
	}
	return out
}

func shippingLine(currency string, cents *int64) *string {
	amount := money.MinorToMajor(cents)
	if amount == nil {
		return nil
	}
	if amount.IsZero() {
		label := FreeShippingLabel
		return &label
	}
	label := money.Format(currency, money.MajorUnits(*amount))
	return &label
}

func renderLine(currency, title string, qty *int64, unit, total money.Money) LineView {
	title = strings.TrimSpace(title)
	if title == "" {
		title = untitledItem
	}
	lv := LineView{Title: title}

	switch {
	case qty != nil && !unit.IsAbsent():
		lv.Detail = fmt.Sprintf("%d × %s", *qty, money.Format(currency, unit))
	case qty != nil:
		lv.Detail = fmt.Sprintf("%s: %d", QuantityLabel, *qty)
	}
	if !total.IsAbsent() {
		lv.Total = money.Format(currency, total)
	}

	lv.Display = lv.Title
	if lv.Detail != "" {
		lv.Display += ", " + lv.Detail
	}
	if lv.Total != "" {
		lv.Display += " (" + lv.Total + ")"
	}
	return lv
}

func firstNonEmpty(values ...string) *string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return &s
		}
	}
	return nil
}
