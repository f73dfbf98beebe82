// Package payment adapts the hosted payment provider (Stripe Checkout):
// session creation, line item retrieval and webhook signature checks.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/domain"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// SessionLine is one re-priced line sent to the provider. UnitAmount is in minor units.
type SessionLine struct {
	ID         string
	Title      string
	Quantity   int64
	UnitAmount int64
}

// SessionRequest describes a hosted checkout session.
type SessionRequest struct {
	Currency          string
	Lines             []SessionLine
	SuccessURL        string
	CancelURL         string
	ClientReferenceID string
	CustomerEmail     string
	Metadata          map[string]string
}

// Stripe talks to the Stripe API with a secret key.
type Stripe struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

func NewStripe(secretKey, webhookSecret string, logger *zap.Logger) *Stripe {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stripe{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

// CreateSession creates a hosted checkout session and returns its redirect URL.
func (s *Stripe) CreateSession(ctx context.Context, req SessionRequest) (string, error) {
	params := sessionParams(req)
	params.Context = ctx

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		s.logger.Warn("payment: create session failed", zap.Int("lines", len(req.Lines)), zap.Error(err))
		return "", mapError(err)
	}
	if sess.URL == "" {
		return "", fmt.Errorf("payment: %w: session %s has no url", domain.ErrUpstreamTransport, sess.ID)
	}
	s.logger.Info("payment: session created", zap.String("session_id", sess.ID))
	return sess.URL, nil
}

// SessionLineItems fetches the finalised line items of a session.
func (s *Stripe) SessionLineItems(ctx context.Context, sessionID string) ([]domain.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{Session: stripe.String(sessionID)}
	params.Context = ctx

	var out []domain.LineItem
	it := s.api.CheckoutSessions.ListLineItems(params)
	for it.Next() {
		out = append(out, lineItemFromStripe(it.LineItem()))
	}
	if err := it.Err(); err != nil {
		s.logger.Warn("payment: list line items failed", zap.String("session_id", sessionID), zap.Error(err))
		return nil, fmt.Errorf("payment: %w: list line items: %v", domain.ErrUpstreamTransport, err)
	}
	return out, nil
}

// SessionStatus is the part of a retrieved session the success return needs.
type SessionStatus struct {
	Paid              bool
	ClientReferenceID string
	CustomerID        string
}

// SessionStatus retrieves a session's payment state and owner.
func (s *Stripe) SessionStatus(ctx context.Context, sessionID string) (SessionStatus, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	sess, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound {
			return SessionStatus{}, domain.ErrNotFound
		}
		return SessionStatus{}, mapError(err)
	}
	return statusFromStripe(sess), nil
}

func statusFromStripe(sess *stripe.CheckoutSession) SessionStatus {
	return SessionStatus{
		Paid:              sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
		ClientReferenceID: sess.ClientReferenceID,
		CustomerID:        sess.Metadata["customer_id"],
	}
}

// Verify checks the Stripe-Signature header against the shared webhook secret.
func (s *Stripe) Verify(payload []byte, signatureHeader string) error {
	if s.webhookSecret == "" {
		return fmt.Errorf("%w: webhook secret not configured", domain.ErrAuthenticity)
	}
	if err := webhook.ValidatePayload(payload, signatureHeader, s.webhookSecret); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuthenticity, err)
	}
	return nil
}

func sessionParams(req SessionRequest) *stripe.CheckoutSessionParams {
	currency := strings.ToLower(req.Currency)
	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	if req.ClientReferenceID != "" {
		params.ClientReferenceID = stripe.String(req.ClientReferenceID)
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	for _, l := range req.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(l.Quantity),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(l.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:     stripe.String(l.Title),
					Metadata: map[string]string{"variant_id": l.ID},
				},
			},
		})
	}
	return params
}

func lineItemFromStripe(li *stripe.LineItem) domain.LineItem {
	qty := li.Quantity
	total := li.AmountTotal
	out := domain.LineItem{
		Description: li.Description,
		Quantity:    &qty,
		AmountTotal: &total,
	}
	if li.Price != nil {
		unit := li.Price.UnitAmount
		out.Price = &domain.LinePrice{UnitAmount: &unit}
	}
	return out
}

// configParams are request parameters set from server configuration. Errors
// naming them describe deployment problems, not the shopper's cart.
var configParams = map[string]bool{
	"mode":        true,
	"success_url": true,
	"cancel_url":  true,
}

// mapError surfaces 400 invalid-request errors about the submitted cart
// verbatim. Everything else, including auth failures and errors on
// configured parameters, is hidden behind domain.ErrUpstreamTransport.
func mapError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) &&
		se.Type == stripe.ErrorTypeInvalidRequest &&
		se.HTTPStatusCode == http.StatusBadRequest &&
		se.Msg != "" &&
		!configParams[se.Param] {
		return &domain.UpstreamValidationError{Messages: []string{se.Msg}}
	}
	return fmt.Errorf("payment: %w: %v", domain.ErrUpstreamTransport, err)
}
