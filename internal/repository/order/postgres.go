package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *zap.Logger) Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const orderColumns = `id::text, session_id, source, customer_id, customer_email, currency,
amount_total_minor, total_amount_major::text, shipping_cost_minor, status, payment_status,
marketplace_order_id, line_shape, line_items, legacy_items, created_at, updated_at`

func (r *postgresRepo) Upsert(ctx context.Context, o domain.Order) (*domain.Order, error) {
	if strings.TrimSpace(o.SessionID) == "" {
		return nil, errors.New("order repo: session id required")
	}
	lineItems, err := marshalList(o.LineItems)
	if err != nil {
		return nil, fmt.Errorf("order repo: encode line items: %w", err)
	}
	legacyItems, err := marshalList(o.LegacyItems)
	if err != nil {
		return nil, fmt.Errorf("order repo: encode legacy items: %w", err)
	}
	var major *string
	if o.TotalAmountMajor != nil {
		s := o.TotalAmountMajor.String()
		major = &s
	}
	var createdAt *time.Time
	if !o.CreatedAt.IsZero() {
		createdAt = &o.CreatedAt
	}

	q := `
INSERT INTO orders (session_id, source, customer_id, customer_email, currency,
    amount_total_minor, total_amount_major, shipping_cost_minor, status, payment_status,
    marketplace_order_id, line_shape, line_items, legacy_items, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric, $8, $9, $10, $11, $12, $13::jsonb, $14::jsonb, COALESCE($15, now()))
ON CONFLICT (session_id) DO UPDATE SET
    source = EXCLUDED.source,
    customer_id = EXCLUDED.customer_id,
    customer_email = EXCLUDED.customer_email,
    currency = EXCLUDED.currency,
    amount_total_minor = EXCLUDED.amount_total_minor,
    total_amount_major = EXCLUDED.total_amount_major,
    shipping_cost_minor = EXCLUDED.shipping_cost_minor,
    status = EXCLUDED.status,
    payment_status = EXCLUDED.payment_status,
    marketplace_order_id = EXCLUDED.marketplace_order_id,
    line_shape = EXCLUDED.line_shape,
    line_items = EXCLUDED.line_items,
    legacy_items = EXCLUDED.legacy_items,
    updated_at = now()
RETURNING ` + orderColumns

	row := r.pool.QueryRow(ctx, q,
		o.SessionID,
		string(o.Source),
		o.CustomerID,
		o.CustomerEmail,
		o.Currency,
		o.AmountTotalMinor,
		major,
		o.ShippingCostMinor,
		o.Status,
		o.PaymentStatus,
		o.MarketplaceOrderID,
		string(o.LineShape),
		string(lineItems),
		string(legacyItems),
		createdAt,
	)
	saved, err := scanOrder(row)
	if err != nil {
		r.logger.Error("order repo: upsert failed", zap.String("session_id", o.SessionID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("order repo: upserted",
		zap.String("session_id", saved.SessionID),
		zap.String("id", saved.ID),
		zap.String("source", string(saved.Source)))
	return saved, nil
}

func (r *postgresRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE session_id = $1`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("order repo: get failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error) {
	q := `SELECT ` + orderColumns + `
FROM orders
WHERE customer_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, q, customerID)
	if err != nil {
		r.logger.Error("order repo: list failed", zap.String("customer_id", customerID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logger.Debug("order repo: listed", zap.String("customer_id", customerID), zap.Int("count", len(result)))
	return result, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o           domain.Order
		source      string
		lineShape   string
		major       *string
		lineItems   []byte
		legacyItems []byte
	)
	if err := row.Scan(
		&o.ID,
		&o.SessionID,
		&source,
		&o.CustomerID,
		&o.CustomerEmail,
		&o.Currency,
		&o.AmountTotalMinor,
		&major,
		&o.ShippingCostMinor,
		&o.Status,
		&o.PaymentStatus,
		&o.MarketplaceOrderID,
		&lineShape,
		&lineItems,
		&legacyItems,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, err
	}
	o.Source = domain.Source(source)
	o.LineShape = domain.LineShape(lineShape)
	if major != nil {
		d, err := decimal.NewFromString(*major)
		if err != nil {
			return nil, fmt.Errorf("order repo: parse total_amount_major %q: %w", *major, err)
		}
		o.TotalAmountMajor = &d
	}
	if len(lineItems) > 0 {
		if err := json.Unmarshal(lineItems, &o.LineItems); err != nil {
			return nil, fmt.Errorf("order repo: decode line items: %w", err)
		}
	}
	if len(legacyItems) > 0 {
		if err := json.Unmarshal(legacyItems, &o.LegacyItems); err != nil {
			return nil, fmt.Errorf("order repo: decode legacy items: %w", err)
		}
	}
	return &o, nil
}

func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.Marshal(items)
}
