package httpserver

import (
	"context"
	"errors"
	"time"

	"storefront/internal/reconcile"
	"storefront/internal/service/checkout"
	"storefront/internal/service/webhook"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type CheckoutService interface {
	Initiate(ctx context.Context, in checkout.InitiateInput) (string, error)
	ConfirmSuccess(ctx context.Context, sessionID, customerID string) (bool, error)
}

type WebhookService interface {
	Handle(ctx context.Context, raw []byte, signature string) (webhook.Ack, error)
}

type AccountService interface {
	ListOrders(ctx context.Context, customerID string) ([]reconcile.View, error)
}

// Deps are the services behind the API routes.
type Deps struct {
	Checkout CheckoutService
	Webhook  WebhookService
	Account  AccountService
}

// Options tune the browser-facing surface.
type Options struct {
	CORSOrigins      []string
	CartCookieName   string
	CartCookieSecure bool
	Currency         string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps, opts Options) (*gin.Engine, error) {
	if deps.Checkout == nil || deps.Webhook == nil || deps.Account == nil {
		return nil, errors.New("httpserver: checkout, webhook and account services are required")
	}
	if opts.CartCookieName == "" {
		opts.CartCookieName = "cart"
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestIDMiddleware(), gin.LoggerWithWriter(zap.NewStdLog(logger).Writer()), gin.Recovery())
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", requestIDHeader, customerIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, opts: opts, logger: logger}
	api := router.Group("/api")

	api.GET("/cart", h.getCart)
	api.POST("/cart/items", h.addCartItem)
	api.PUT("/cart/items/*id", h.setCartItemQuantity)
	api.DELETE("/cart/items/*id", h.removeCartItem)
	api.DELETE("/cart", h.clearCart)

	api.POST("/checkout", h.initiateCheckout)
	api.GET("/checkout/success", h.checkoutSuccess)

	api.POST("/webhooks/stripe", h.stripeWebhook)

	api.GET("/account/orders", h.accountOrders)

	return router, nil
}

type handlers struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
}
