package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds runtime configuration parsed from environment variables.
type Config struct {
	HTTPAddr        string
	DBConnString    string
	ShutdownTimeout time.Duration
	LogLevel        string

	Currency string

	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	CatalogEndpoint string
	CatalogToken    string
	CatalogTimeout  time.Duration

	RabbitMQURL     string
	RabbitMQQueue   string
	ChannelPoolSize int

	CORSOrigins      []string
	CartCookieName   string
	CartCookieSecure bool
}

// FromEnv builds Config with defaults, overridden by environment variables.
// An empty DB_DSN selects the in-memory order store.
func FromEnv() Config {
	return Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		DBConnString:    os.Getenv("DB_DSN"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT_SECONDS", 10*time.Second),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),

		Currency: strings.ToLower(envOrDefault("STORE_CURRENCY", "chf")),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CheckoutSuccessURL:  envOrDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CheckoutCancelURL:   envOrDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/warenkorb"),

		CatalogEndpoint: os.Getenv("CATALOG_ENDPOINT"),
		CatalogToken:    os.Getenv("CATALOG_TOKEN"),
		CatalogTimeout:  envDuration("CATALOG_TIMEOUT_SECONDS", 10*time.Second),

		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
		RabbitMQQueue:   envOrDefault("RABBITMQ_QUEUE", "order_confirmations"),
		ChannelPoolSize: envInt("CHANNEL_POOL_SIZE", 4),

		CORSOrigins:      envList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		CartCookieName:   envOrDefault("CART_COOKIE_NAME", "cart"),
		CartCookieSecure: envBool("CART_COOKIE_SECURE", false),
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		seconds, err := strconv.Atoi(v)
		if err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func envList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
