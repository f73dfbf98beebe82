// Package account serves a signed-in customer's order history.
package account

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/reconcile"

	"go.uber.org/zap"
)

type orderLister interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Order, error)
}

// Service serves the account order history as display-ready views.
type Service struct {
	orders orderLister
	logger *zap.Logger
}

func New(orders orderLister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{orders: orders, logger: logger}
}

// ListOrders returns the customer's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, customerID string) ([]reconcile.View, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, domain.NewValidation("customer", "required")
	}
	orders, err := s.orders.ListByCustomer(ctx, customerID)
	if err != nil {
		s.logger.Error("account: list orders failed", zap.Error(err))
		return nil, err
	}
	return reconcile.Views(orders), nil
}
