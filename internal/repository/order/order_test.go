package order

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/migrate"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

func int64Ptr(v int64) *int64 {
	return &v
}

func strPtr(v string) *string {
	return &v
}

func sampleOrder(sessionID, customerID string, qty int64) domain.Order {
	o := domain.Order{
		SessionID:         sessionID,
		Source:            domain.SourceStripe,
		CustomerID:        strPtr(customerID),
		CustomerEmail:     "kunde@example.ch",
		Currency:          "chf",
		AmountTotalMinor:  int64Ptr(4990 * qty),
		ShippingCostMinor: int64Ptr(0),
		Status:            "complete",
		PaymentStatus:     "paid",
		LineItems: []domain.LineItem{{
			Description: "Kopfhörer",
			Quantity:    int64Ptr(qty),
			AmountTotal: int64Ptr(4990 * qty),
			Price:       &domain.LinePrice{UnitAmount: int64Ptr(4990)},
		}},
	}
	o.Tag()
	return o
}

// exerciseRepository runs the shared contract against any Repository.
func exerciseRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	first, err := repo.Upsert(ctx, sampleOrder("cs_test_1", "cust-1", 1))
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	second, err := repo.Upsert(ctx, sampleOrder("cs_test_1", "cust-1", 2))
	if err != nil {
		t.Fatalf("Upsert replay: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("replay must update in place: %s vs %s", first.ID, second.ID)
	}
	if !first.CreatedAt.Equal(second.CreatedAt) {
		t.Fatalf("replay must keep created_at")
	}

	got, err := repo.GetBySessionID(ctx, "cs_test_1")
	if err != nil {
		t.Fatalf("GetBySessionID: %v", err)
	}
	if *got.AmountTotalMinor != 9980 || len(got.LineItems) != 1 || *got.LineItems[0].Quantity != 2 {
		t.Fatalf("expected second delivery to overwrite, got %+v", got)
	}
	if got.LineShape != domain.LineShapeModern || got.ShippingCostMinor == nil || *got.ShippingCostMinor != 0 {
		t.Fatalf("unexpected stored fields %+v", got)
	}

	list, err := repo.ListByCustomer(ctx, "cust-1")
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected exactly one row for the session, got %d", len(list))
	}

	if _, err := repo.GetBySessionID(ctx, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Upsert(ctx, domain.Order{}); err == nil {
		t.Fatalf("expected error for empty session id")
	}
}

func TestMemory_Contract(t *testing.T) {
	exerciseRepository(t, NewMemory())
}

func TestMemory_ListNewestFirst(t *testing.T) {
	repo := NewMemory().(*memoryRepo)
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, sampleOrder("cs_old", "cust-1", 1)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	clock = clock.Add(time.Hour)
	if _, err := repo.Upsert(ctx, sampleOrder("cs_new", "cust-1", 1)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := repo.Upsert(ctx, sampleOrder("cs_other", "cust-2", 1)); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	list, err := repo.ListByCustomer(ctx, "cust-1")
	if err != nil {
		t.Fatalf("ListByCustomer: %v", err)
	}
	if len(list) != 2 || list[0].SessionID != "cs_new" || list[1].SessionID != "cs_old" {
		t.Fatalf("unexpected order %+v", list)
	}
}

func TestMemory_KeepsImportedCreatedAt(t *testing.T) {
	repo := NewMemory()
	placed := time.Date(2021, 5, 4, 9, 30, 0, 0, time.UTC)
	o := sampleOrder("mp_1", "cust-1", 1)
	o.CreatedAt = placed

	saved, err := repo.Upsert(context.Background(), o)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !saved.CreatedAt.Equal(placed) {
		t.Fatalf("expected imported created_at, got %v", saved.CreatedAt)
	}

	o.CreatedAt = time.Time{}
	again, err := repo.Upsert(context.Background(), o)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !again.CreatedAt.Equal(placed) {
		t.Fatalf("replay must keep created_at, got %v", again.CreatedAt)
	}
}

func TestPostgres_Contract(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	exerciseRepository(t, NewPostgres(pool, nil))
}

func TestPostgres_LegacyRoundTrip(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool, nil); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	total := decimal.RequireFromString("129.90")
	price := decimal.RequireFromString("64.95")
	o := domain.Order{
		SessionID:          "mp_1001",
		Source:             domain.SourceMarketplace,
		CustomerID:         strPtr("cust-9"),
		Currency:           "chf",
		TotalAmountMajor:   &total,
		MarketplaceOrderID: "1001",
		LegacyItems:        []domain.LegacyItem{{Name: "Powerbank", Quantity: int64Ptr(2), Price: &price}},
	}
	o.Tag()

	repo := NewPostgres(pool, nil)
	if _, err := repo.Upsert(ctx, o); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := repo.GetBySessionID(ctx, "mp_1001")
	if err != nil {
		t.Fatalf("GetBySessionID: %v", err)
	}
	if got.TotalAmountMajor == nil || !got.TotalAmountMajor.Equal(total) || got.AmountTotalMinor != nil {
		t.Fatalf("unexpected totals %+v", got)
	}
	if got.ShippingCostMinor != nil {
		t.Fatalf("null shipping must stay null")
	}
	if len(got.LegacyItems) != 1 || got.LegacyItems[0].DisplayTitle() != "Powerbank" || !got.LegacyItems[0].Price.Equal(price) {
		t.Fatalf("unexpected legacy items %+v", got.LegacyItems)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE orders RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
