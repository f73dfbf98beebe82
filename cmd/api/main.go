package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/migrate"
	"storefront/internal/notify"
	"storefront/internal/payment"
	orderrepo "storefront/internal/repository/order"
	accountsvc "storefront/internal/service/account"
	checkoutsvc "storefront/internal/service/checkout"
	webhooksvc "storefront/internal/service/webhook"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type confirmationNotifier interface {
	OrderConfirmed(ctx context.Context, o domain.Order) error
}

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel, "api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	var (
		dbpool *pgxpool.Pool
		orders orderrepo.Repository
	)
	if cfg.DBConnString != "" {
		dbpool, err = db.Connect(ctx, cfg.DBConnString, logger)
		if err != nil {
			logger.Fatal("connect to db", zap.Error(err))
		}
		defer dbpool.Close()
		if err := migrate.Apply(ctx, dbpool, logger); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		orders = orderrepo.NewPostgres(dbpool, logger)
	} else {
		logger.Warn("DB_DSN not set, orders are kept in memory")
		orders = orderrepo.NewMemory()
	}

	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		logger.Warn("stripe keys incomplete, checkout or webhooks will fail")
	}
	gateway := payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret, logger)
	catalogClient := catalog.NewClient(cfg.CatalogEndpoint, cfg.CatalogToken, cfg.CatalogTimeout, logger)

	var notifier confirmationNotifier = notify.NewLogNotifier(logger)
	if cfg.RabbitMQURL != "" {
		pool, err := notify.NewChannelPool(cfg.RabbitMQURL, cfg.RabbitMQQueue, cfg.ChannelPoolSize, logger)
		if err != nil {
			logger.Fatal("connect to rabbitmq", zap.Error(err))
		}
		defer pool.Close()
		notifier = notify.NewPublisher(pool, cfg.RabbitMQQueue, logger)
	}

	checkoutService := checkoutsvc.New(catalogClient, gateway, checkoutsvc.Options{
		SuccessURL: cfg.CheckoutSuccessURL,
		CancelURL:  cfg.CheckoutCancelURL,
		Currency:   cfg.Currency,
	}, logger)
	webhookService := webhooksvc.New(gateway, gateway, orders, notifier, logger)
	accountService := accountsvc.New(orders, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Checkout: checkoutService,
		Webhook:  webhookService,
		Account:  accountService,
	}, httpserver.Options{
		CORSOrigins:      cfg.CORSOrigins,
		CartCookieName:   cfg.CartCookieName,
		CartCookieSecure: cfg.CartCookieSecure,
		Currency:         cfg.Currency,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}
