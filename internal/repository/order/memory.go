package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/google/uuid"
)

// memoryRepo backs the dev mode without DB_DSN and the service tests.
type memoryRepo struct {
	mu        sync.Mutex
	bySession map[string]domain.Order
	now       func() time.Time
}

func NewMemory() Repository {
	return &memoryRepo{bySession: make(map[string]domain.Order), now: time.Now}
}

func (r *memoryRepo) Upsert(_ context.Context, o domain.Order) (*domain.Order, error) {
	if strings.TrimSpace(o.SessionID) == "" {
		return nil, errors.New("order repo: session id required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if existing, ok := r.bySession[o.SessionID]; ok {
		o.ID = existing.ID
		o.CreatedAt = existing.CreatedAt
	} else {
		o.ID = uuid.NewString()
		if o.CreatedAt.IsZero() {
			o.CreatedAt = now
		}
	}
	o.UpdatedAt = now
	stored := cloneOrder(o)
	r.bySession[o.SessionID] = stored
	out := cloneOrder(stored)
	return &out, nil
}

func (r *memoryRepo) GetBySessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.bySession[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneOrder(o)
	return &out, nil
}

func (r *memoryRepo) ListByCustomer(_ context.Context, customerID string) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Order
	for _, o := range r.bySession {
		if o.CustomerID != nil && *o.CustomerID == customerID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneOrder(o domain.Order) domain.Order {
	clone := o
	if o.LineItems != nil {
		clone.LineItems = append([]domain.LineItem(nil), o.LineItems...)
	}
	if o.LegacyItems != nil {
		clone.LegacyItems = append([]domain.LegacyItem(nil), o.LegacyItems...)
	}
	return clone
}
