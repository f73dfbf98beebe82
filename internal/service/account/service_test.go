package account

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"

	"github.com/shopspring/decimal"
)

func int64Ptr(v int64) *int64 {
	return &v
}

type failingLister struct{}

func (failingLister) ListByCustomer(_ context.Context, _ string) ([]domain.Order, error) {
	return nil, errors.New("db down")
}

func TestListOrders_ReconcilesBothProvenances(t *testing.T) {
	repo := orderrepo.NewMemory()
	customer := "cust-7"
	total := decimal.RequireFromString("35.5")
	price := decimal.RequireFromString("17.75")

	legacy := domain.Order{
		SessionID:          "mp_881",
		Source:             domain.SourceMarketplace,
		CustomerID:         &customer,
		Currency:           "chf",
		TotalAmountMajor:   &total,
		MarketplaceOrderID: "881",
		LegacyItems:        []domain.LegacyItem{{Name: "Buch", Quantity: int64Ptr(2), Price: &price}},
	}
	legacy.Tag()
	modern := domain.Order{
		SessionID:        "cs_1",
		Source:           domain.SourceStripe,
		CustomerID:       &customer,
		Currency:         "chf",
		AmountTotalMinor: int64Ptr(4990),
		LineItems:        []domain.LineItem{{Description: "Kopfhörer", Quantity: int64Ptr(1), AmountTotal: int64Ptr(4990)}},
	}
	modern.Tag()
	for _, o := range []domain.Order{legacy, modern} {
		if _, err := repo.Upsert(context.Background(), o); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	views, err := New(repo, nil).ListOrders(context.Background(), " cust-7 ")
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	totals := map[string]string{}
	for _, v := range views {
		totals[v.SessionID] = v.TotalDisplay
	}
	if totals["mp_881"] != "CHF 35.50" || totals["cs_1"] != "CHF 49.90" {
		t.Fatalf("unexpected totals %v", totals)
	}
}

func TestListOrders_RequiresCustomer(t *testing.T) {
	var ve *domain.ValidationError
	if _, err := New(orderrepo.NewMemory(), nil).ListOrders(context.Background(), ""); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListOrders_StoreFailure(t *testing.T) {
	if _, err := New(failingLister{}, nil).ListOrders(context.Background(), "cust-7"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestListOrders_Empty(t *testing.T) {
	views, err := New(orderrepo.NewMemory(), nil).ListOrders(context.Background(), "nobody")
	if err != nil || len(views) != 0 {
		t.Fatalf("expected no views, got %v %v", views, err)
	}
}
