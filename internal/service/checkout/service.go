// Package checkout turns a cart into a hosted payment session. Prices are
// always re-resolved from the catalog; submitted prices are ignored.
package checkout

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/domain"
	"storefront/internal/money"
	"storefront/internal/payment"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type catalogLookup interface {
	Lookup(ctx context.Context, ids []string) (map[string]catalog.Item, error)
}

type gateway interface {
	CreateSession(ctx context.Context, req payment.SessionRequest) (string, error)
	SessionStatus(ctx context.Context, sessionID string) (payment.SessionStatus, error)
}

// Options configures redirect targets and the fallback currency.
type Options struct {
	SuccessURL string
	CancelURL  string
	Currency   string
}

type Service struct {
	catalog catalogLookup
	gateway gateway
	opts    Options
	newRef  func() string
	logger  *zap.Logger
}

func New(c catalogLookup, g gateway, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog: c,
		gateway: g,
		opts:    opts,
		newRef:  func() string { return uuid.NewString() },
		logger:  logger,
	}
}

type InitiateInput struct {
	Lines         []domain.CartLine
	CustomerID    string
	CustomerEmail string
}

// Initiate validates and re-prices lines and returns the hosted payment page URL.
func (s *Service) Initiate(ctx context.Context, in InitiateInput) (string, error) {
	merged, err := validate(in.Lines)
	if err != nil {
		return "", err
	}

	ids := make([]string, 0, len(merged))
	for _, l := range merged {
		ids = append(ids, l.ID)
	}
	items, err := s.catalog.Lookup(ctx, ids)
	if err != nil {
		return "", err
	}

	currency := ""
	lines := make([]payment.SessionLine, 0, len(merged))
	for _, l := range merged {
		item, ok := items[l.ID]
		if !ok {
			return "", &domain.NotFoundError{ID: l.ID}
		}
		if !item.UnitPrice.IsPositive() {
			return "", domain.NewValidation("lines."+l.ID, "item has no purchasable price")
		}
		if currency == "" {
			currency = item.Currency
		} else if item.Currency != "" && item.Currency != currency {
			return "", domain.NewValidation("currency", fmt.Sprintf("items priced in %s and %s", currency, item.Currency))
		}
		title := item.Title
		if title == "" {
			title = l.Title
		}
		lines = append(lines, payment.SessionLine{
			ID:         l.ID,
			Title:      title,
			Quantity:   int64(l.Quantity),
			UnitAmount: money.MajorToMinor(item.UnitPrice),
		})
	}
	if currency == "" {
		currency = s.opts.Currency
	}

	ref := s.newRef()
	req := payment.SessionRequest{
		Currency:      currency,
		Lines:         lines,
		SuccessURL:    s.opts.SuccessURL,
		CancelURL:     s.opts.CancelURL,
		CustomerEmail: in.CustomerEmail,
		Metadata:      map[string]string{"checkout_ref": ref},
	}
	if in.CustomerID != "" {
		req.ClientReferenceID = in.CustomerID
		req.Metadata["customer_id"] = in.CustomerID
	} else {
		req.ClientReferenceID = ref
	}

	url, err := s.gateway.CreateSession(ctx, req)
	if err != nil {
		s.logger.Warn("checkout: initiation failed", zap.String("checkout_ref", ref), zap.Error(err))
		return "", err
	}
	s.logger.Info("checkout: session initiated",
		zap.String("checkout_ref", ref),
		zap.Int("lines", len(lines)),
		zap.String("currency", currency))
	return url, nil
}

// ConfirmSuccess reports whether the session the shopper returned from is
// paid and belongs to them. A session started by a linked customer is only
// confirmed for that customer.
func (s *Service) ConfirmSuccess(ctx context.Context, sessionID, customerID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, domain.NewValidation("session_id", "required")
	}
	st, err := s.gateway.SessionStatus(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if st.CustomerID != "" && st.CustomerID != customerID {
		s.logger.Warn("checkout: success return from another customer", zap.String("session_id", sessionID))
		return false, nil
	}
	return st.Paid, nil
}

// validate checks every line and merges duplicate ids, keeping first-seen order.
func validate(lines []domain.CartLine) ([]domain.CartLine, error) {
	if len(lines) == 0 {
		return nil, domain.NewValidation("lines", "cart is empty")
	}
	out := make([]domain.CartLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for i, l := range lines {
		id := strings.TrimSpace(l.ID)
		if id == "" {
			return nil, domain.NewValidation(fmt.Sprintf("lines[%d].id", i), "required")
		}
		if l.Quantity < 1 {
			return nil, domain.NewValidation(fmt.Sprintf("lines[%d].quantity", i), "must be a positive integer")
		}
		if j, ok := index[id]; ok {
			out[j].Quantity += l.Quantity
			continue
		}
		l.ID = id
		index[id] = len(out)
		out = append(out, l)
	}
	return out, nil
}
