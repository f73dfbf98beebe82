// Package seed writes demo orders for manual testing of the account pages.
package seed

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// DemoCustomerID owns every seeded order.
const DemoCustomerID = "demo-customer"

type OrderWriter interface {
	Upsert(ctx context.Context, o domain.Order) (*domain.Order, error)
}

// Apply upserts one order of each provenance. It is idempotent via the
// session id.
func Apply(ctx context.Context, orders OrderWriter) error {
	for _, o := range demoOrders() {
		if _, err := orders.Upsert(ctx, o); err != nil {
			return fmt.Errorf("upsert order %s: %w", o.SessionID, err)
		}
	}
	return nil
}

func demoOrders() []domain.Order {
	customer := DemoCustomerID
	unit := int64(4990)
	qty := int64(2)
	total := unit * qty
	shipping := int64(0)

	hosted := domain.Order{
		SessionID:         "cs_demo_1",
		Source:            domain.SourceStripe,
		CustomerID:        &customer,
		CustomerEmail:     "demo@example.ch",
		Currency:          "chf",
		AmountTotalMinor:  &total,
		ShippingCostMinor: &shipping,
		Status:            "complete",
		PaymentStatus:     "paid",
		LineItems: []domain.LineItem{{
			Description: "Demo Kopfhörer",
			Quantity:    &qty,
			AmountTotal: &total,
			Price:       &domain.LinePrice{UnitAmount: &unit},
		}},
	}
	hosted.Tag()

	legacyTotal := decimal.RequireFromString("35.50")
	bookPrice := decimal.RequireFromString("17.75")
	bookQty := int64(2)
	legacy := domain.Order{
		SessionID:          "mp_demo_1",
		Source:             domain.SourceMarketplace,
		CustomerID:         &customer,
		CustomerEmail:      "demo@example.ch",
		Currency:           "chf",
		TotalAmountMajor:   &legacyTotal,
		Status:             "shipped",
		MarketplaceOrderID: "demo_1",
		LegacyItems: []domain.LegacyItem{
			{Title: "Demo Buch", Quantity: &bookQty, Price: &bookPrice},
			{Name: "Lesezeichen"},
		},
		CreatedAt: time.Date(2021, 5, 4, 9, 30, 0, 0, time.UTC),
	}
	legacy.Tag()

	return []domain.Order{hosted, legacy}
}
