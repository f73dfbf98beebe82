// Package webhook ingests payment provider events into the order store.
//
// A delivery moves RECEIVED -> VERIFIED -> (relevant | ignored) -> PERSISTED
// -> ACKED, or stops at REJECTED when the signature does not verify. Any error
// returned from Handle must be answered with a non-2xx status so the provider
// redelivers; persistence is an upsert by session id so redelivery converges.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storefront/internal/domain"

	"go.uber.org/zap"
)

// EventCheckoutCompleted is the only event type that writes an order.
const EventCheckoutCompleted = "checkout.session.completed"

type State string

const (
	StateReceived  State = "RECEIVED"
	StateVerified  State = "VERIFIED"
	StateRejected  State = "REJECTED"
	StateIgnored   State = "EVENT_IGNORED"
	StateRelevant  State = "EVENT_RELEVANT"
	StatePersisted State = "PERSISTED"
	StateAcked     State = "ACKED"
)

// Ack reports how far a delivery progressed.
type Ack struct {
	EventID   string
	EventType string
	SessionID string
	State     State
	Trail     []State
}

func (a *Ack) move(s State) {
	a.State = s
	a.Trail = append(a.Trail, s)
}

type verifier interface {
	Verify(payload []byte, signatureHeader string) error
}

type lineItemSource interface {
	SessionLineItems(ctx context.Context, sessionID string) ([]domain.LineItem, error)
}

type orderWriter interface {
	Upsert(ctx context.Context, o domain.Order) (*domain.Order, error)
}

type notifier interface {
	OrderConfirmed(ctx context.Context, o domain.Order) error
}

type Service struct {
	verifier verifier
	lines    lineItemSource
	orders   orderWriter
	notifier notifier
	logger   *zap.Logger
}

func New(v verifier, lines lineItemSource, orders orderWriter, n notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{verifier: v, lines: lines, orders: orders, notifier: n, logger: logger}
}

type event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type completedSession struct {
	ID                string `json:"id"`
	ClientReferenceID string `json:"client_reference_id"`
	CustomerEmail     string `json:"customer_email"`
	CustomerDetails   *struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Currency     string `json:"currency"`
	AmountTotal  *int64 `json:"amount_total"`
	ShippingCost *struct {
		AmountTotal *int64 `json:"amount_total"`
	} `json:"shipping_cost"`
	Status        string            `json:"status"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// Handle verifies, filters and persists one delivery.
func (s *Service) Handle(ctx context.Context, raw []byte, signature string) (Ack, error) {
	ack := Ack{}
	ack.move(StateReceived)

	if err := s.verifier.Verify(raw, signature); err != nil {
		ack.move(StateRejected)
		s.logger.Warn("webhook: rejected", zap.Error(err))
		return ack, err
	}
	ack.move(StateVerified)

	var evt event
	if err := json.Unmarshal(raw, &evt); err != nil || evt.Type == "" {
		s.logger.Warn("webhook: undecodable event", zap.Error(err))
		return ack, fmt.Errorf("%w: envelope", domain.ErrMalformedEvent)
	}
	ack.EventID = evt.ID
	ack.EventType = evt.Type

	if evt.Type != EventCheckoutCompleted {
		ack.move(StateIgnored)
		ack.move(StateAcked)
		s.logger.Debug("webhook: ignored event", zap.String("event_id", evt.ID), zap.String("type", evt.Type))
		return ack, nil
	}
	ack.move(StateRelevant)

	var sess completedSession
	if err := json.Unmarshal(evt.Data.Object, &sess); err != nil || strings.TrimSpace(sess.ID) == "" {
		s.logger.Warn("webhook: undecodable session", zap.String("event_id", evt.ID), zap.Error(err))
		return ack, fmt.Errorf("%w: session object", domain.ErrMalformedEvent)
	}
	ack.SessionID = sess.ID

	items, err := s.lines.SessionLineItems(ctx, sess.ID)
	if err != nil {
		s.logger.Error("webhook: fetch line items failed", zap.String("session_id", sess.ID), zap.Error(err))
		return ack, fmt.Errorf("webhook: line items for %s: %w", sess.ID, err)
	}

	stored, err := s.orders.Upsert(ctx, orderFromSession(sess, items))
	if err != nil {
		s.logger.Error("webhook: persist failed", zap.String("session_id", sess.ID), zap.Error(err))
		return ack, fmt.Errorf("webhook: persist %s: %w", sess.ID, err)
	}
	ack.move(StatePersisted)
	s.logger.Info("webhook: order stored",
		zap.String("event_id", evt.ID),
		zap.String("session_id", sess.ID),
		zap.String("order_id", stored.ID),
		zap.Int("lines", len(items)))

	if s.notifier != nil {
		if err := s.notifier.OrderConfirmed(ctx, *stored); err != nil {
			s.logger.Warn("webhook: confirmation not sent", zap.String("session_id", sess.ID), zap.Error(err))
		}
	}

	ack.move(StateAcked)
	return ack, nil
}

func orderFromSession(sess completedSession, items []domain.LineItem) domain.Order {
	o := domain.Order{
		SessionID:        sess.ID,
		Source:           domain.SourceStripe,
		CustomerEmail:    sess.CustomerEmail,
		Currency:         strings.ToLower(sess.Currency),
		AmountTotalMinor: sess.AmountTotal,
		Status:           sess.Status,
		PaymentStatus:    sess.PaymentStatus,
		LineItems:        items,
	}
	if o.CustomerEmail == "" && sess.CustomerDetails != nil {
		o.CustomerEmail = sess.CustomerDetails.Email
	}
	if sess.ShippingCost != nil {
		o.ShippingCostMinor = sess.ShippingCost.AmountTotal
	}
	if id := sess.Metadata["customer_id"]; id != "" {
		o.CustomerID = &id
	}
	o.Tag()
	return o
}
