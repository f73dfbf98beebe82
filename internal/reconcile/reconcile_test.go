package reconcile

import (
	"strings"
	"testing"

	"storefront/internal/domain"

	"github.com/shopspring/decimal"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func modernLine(desc string, qty, unit, total int64) domain.LineItem {
	return domain.LineItem{
		Description: desc,
		Quantity:    int64Ptr(qty),
		AmountTotal: int64Ptr(total),
		Price:       &domain.LinePrice{UnitAmount: int64Ptr(unit)},
	}
}

func TestTotal_PrefersLegacyMajor(t *testing.T) {
	o := domain.Order{Currency: "chf", TotalAmountMajor: decPtr("120"), AmountTotalMinor: int64Ptr(999)}
	if got := Order(o).TotalDisplay; got != "CHF 120.00" {
		t.Fatalf("unexpected total %q", got)
	}
}

func TestTotal_FallsBackToMinor(t *testing.T) {
	o := domain.Order{Currency: "chf", AmountTotalMinor: int64Ptr(4990)}
	if got := Order(o).TotalDisplay; got != "CHF 49.90" {
		t.Fatalf("unexpected total %q", got)
	}
}

func TestTotal_Absent(t *testing.T) {
	if got := Order(domain.Order{Currency: "chf"}).TotalDisplay; got != "-" {
		t.Fatalf("unexpected total %q", got)
	}
}

func TestShipping_NullVersusZero(t *testing.T) {
	if v := Order(domain.Order{Currency: "chf"}); v.Shipping != nil {
		t.Fatalf("expected no shipping line, got %q", *v.Shipping)
	}

	free := Order(domain.Order{Currency: "chf", ShippingCostMinor: int64Ptr(0)})
	if free.Shipping == nil || *free.Shipping != FreeShippingLabel {
		t.Fatalf("expected free shipping label, got %v", free.Shipping)
	}

	paid := Order(domain.Order{Currency: "chf", ShippingCostMinor: int64Ptr(500)})
	if paid.Shipping == nil || !strings.Contains(*paid.Shipping, "5.00") {
		t.Fatalf("expected formatted shipping, got %v", paid.Shipping)
	}
}

func TestStatusAndReference(t *testing.T) {
	v := Order(domain.Order{SessionID: "cs_1", PaymentStatus: "paid"})
	if v.Status == nil || *v.Status != "paid" {
		t.Fatalf("expected payment status fallback, got %v", v.Status)
	}
	if v.Reference == nil || *v.Reference != "cs_1" {
		t.Fatalf("expected session reference, got %v", v.Reference)
	}

	v = Order(domain.Order{SessionID: "mp_9", MarketplaceOrderID: "9", Status: "shipped", PaymentStatus: "paid"})
	if *v.Status != "shipped" || *v.Reference != "9" {
		t.Fatalf("unexpected status/reference %q %q", *v.Status, *v.Reference)
	}

	v = Order(domain.Order{})
	if v.Status != nil || v.Reference != nil {
		t.Fatalf("expected omitted badges")
	}
}

func TestLines_ModernShape(t *testing.T) {
	o := domain.Order{Currency: "chf", LineItems: []domain.LineItem{modernLine("Kopfhörer", 2, 4990, 9980)}}
	o.Tag()
	v := Order(o)
	if len(v.Lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(v.Lines))
	}
	if got := v.Lines[0].Display; got != "Kopfhörer, 2 × CHF 49.90 (CHF 99.80)" {
		t.Fatalf("unexpected display %q", got)
	}
	if v.Placeholder != "" {
		t.Fatalf("unexpected placeholder")
	}
}

func TestLines_LegacyShape(t *testing.T) {
	o := domain.Order{
		Currency: "chf",
		LegacyItems: []domain.LegacyItem{
			{Title: "Ladegerät", Quantity: int64Ptr(1), Price: decPtr("29.9")},
			{Name: "Kabel", Quantity: int64Ptr(3)},
			{Name: "Hülle"},
		},
	}
	o.Tag()
	v := Order(o)
	want := []string{"Ladegerät, 1 × CHF 29.90", "Kabel, Menge: 3", "Hülle"}
	if len(v.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(v.Lines))
	}
	for i, w := range want {
		if v.Lines[i].Display != w {
			t.Fatalf("line %d: expected %q, got %q", i, w, v.Lines[i].Display)
		}
	}
}

func TestLines_ShapeExclusivity(t *testing.T) {
	o := domain.Order{
		Currency:    "chf",
		LineItems:   []domain.LineItem{modernLine("Modern", 1, 100, 100)},
		LegacyItems: []domain.LegacyItem{{Title: "Legacy", Quantity: int64Ptr(1), Price: decPtr("1")}},
	}
	o.Tag()
	if o.LineShape != domain.LineShapeModern {
		t.Fatalf("expected modern tag, got %q", o.LineShape)
	}
	v := Order(o)
	if len(v.Lines) != 1 || v.Lines[0].Title != "Modern" {
		t.Fatalf("expected only modern lines, got %+v", v.Lines)
	}

	// untagged rows are classified the same way
	o.LineShape = domain.LineShapeUnknown
	v = Order(o)
	if len(v.Lines) != 1 || v.Lines[0].Title != "Modern" {
		t.Fatalf("expected only modern lines for untagged row, got %+v", v.Lines)
	}
}

func TestLines_Placeholder(t *testing.T) {
	o := domain.Order{Currency: "chf"}
	o.Tag()
	v := Order(o)
	if v.Placeholder != NoItemsLabel || len(v.Lines) != 0 {
		t.Fatalf("expected placeholder, got %+v", v)
	}
}

func TestLines_TotalWithoutUnitPrice(t *testing.T) {
	o := domain.Order{Currency: "chf", LineItems: []domain.LineItem{{Description: "Gutschein", Quantity: int64Ptr(1), AmountTotal: int64Ptr(2000)}}}
	o.Tag()
	v := Order(o)
	if got := v.Lines[0].Display; got != "Gutschein, Menge: 1 (CHF 20.00)" {
		t.Fatalf("unexpected display %q", got)
	}

	o = domain.Order{Currency: "chf", LineItems: []domain.LineItem{{Description: "Service", AmountTotal: int64Ptr(0)}}}
	o.Tag()
	if got := Order(o).Lines[0].Display; got != "Service (CHF 0.00)" {
		t.Fatalf("unexpected display %q", got)
	}
}
