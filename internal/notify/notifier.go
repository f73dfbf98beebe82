// Package notify emits order confirmation messages for the mail worker.
// Delivery is best-effort: callers log failures and move on.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain"
	"storefront/internal/reconcile"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Confirmation is the message body consumed by the mail worker.
type Confirmation struct {
	Type          string    `json:"type"`
	SessionID     string    `json:"sessionId"`
	CustomerEmail string    `json:"customerEmail"`
	Currency      string    `json:"currency"`
	Total         string    `json:"total"`
	Shipping      *string   `json:"shipping,omitempty"`
	Lines         []string  `json:"lines"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewConfirmation renders o the way the account pages show it.
func NewConfirmation(o domain.Order, now time.Time) Confirmation {
	view := reconcile.Order(o)
	lines := make([]string, 0, len(view.Lines))
	for _, l := range view.Lines {
		lines = append(lines, l.Display)
	}
	if len(lines) == 0 {
		lines = append(lines, view.Placeholder)
	}
	return Confirmation{
		Type:          "order.confirmed",
		SessionID:     o.SessionID,
		CustomerEmail: o.CustomerEmail,
		Currency:      view.Currency,
		Total:         view.TotalDisplay,
		Shipping:      view.Shipping,
		Lines:         lines,
		OccurredAt:    now.UTC(),
	}
}

// Publisher publishes confirmations to a durable queue.
type Publisher struct {
	pool      *ChannelPool
	queueName string
	timeout   time.Duration
	logger    *zap.Logger
}

func NewPublisher(pool *ChannelPool, queueName string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{pool: pool, queueName: queueName, timeout: 5 * time.Second, logger: logger}
}

// OrderConfirmed publishes a persistent confirmation message for o.
func (p *Publisher) OrderConfirmed(ctx context.Context, o domain.Order) error {
	if o.CustomerEmail == "" {
		p.logger.Info("notify: no customer email, skipping", zap.String("session_id", o.SessionID))
		return nil
	}
	body, err := json.Marshal(NewConfirmation(o, time.Now()))
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}

	ch, err := p.pool.Get()
	if err != nil {
		return err
	}
	defer p.pool.Put(ch)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, "", p.queueName, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    o.SessionID,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	p.logger.Info("notify: confirmation published", zap.String("session_id", o.SessionID))
	return nil
}

// LogNotifier records confirmations in the log when no broker is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) OrderConfirmed(_ context.Context, o domain.Order) error {
	c := NewConfirmation(o, time.Now())
	n.logger.Info("notify: confirmation (log only)",
		zap.String("session_id", c.SessionID),
		zap.String("total", c.Total),
		zap.Int("lines", len(c.Lines)))
	return nil
}
