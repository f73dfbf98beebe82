package order

import (
	"context"

	"storefront/internal/domain"
)

// Repository is the durable order store. Upsert is keyed by SessionID: a
// second write for the same session replaces every field of the first and
// keeps its CreatedAt. A CreatedAt set on the first write is kept (imports);
// otherwise the store assigns it.
type Repository interface {
	Upsert(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}
