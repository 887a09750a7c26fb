package config

import (
	"os"
	"strconv"
	"time"

	"go.uber.org/fx"
)

// Config carries every runtime setting for the payments service. Values come
// from the environment; sensible defaults keep a local run working with zero
// setup apart from provider credentials.
type Config struct {
	Environment string
	HTTPAddr    string
	DatabaseDSN string

	// StoreURL is the public storefront base used for wallet redirect
	// back-URLs.
	StoreURL string

	// RemoteTimeout bounds every outbound provider call.
	RemoteTimeout time.Duration

	LogLevel string

	Tracing TracingConfig

	PayU        PayUConfig
	MercadoPago MercadoPagoConfig
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	SampleRatio float64
}

// PayUConfig configures the card gateway. AccountID scopes transactions to a
// single country account. APIURL overrides the sandbox/production host the
// TestMode flag would otherwise select.
type PayUConfig struct {
	APIKey     string
	APILogin   string
	MerchantID string
	AccountID  string
	APIURL     string
	TestMode   bool
}

// MercadoPagoConfig configures the wallet gateway.
type MercadoPagoConfig struct {
	AccessToken   string
	PublicKey     string
	WebhookSecret string
	TestMode      bool
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Environment:   envOr("ENVIRONMENT", "development"),
		HTTPAddr:      envOr("HTTP_ADDR", ":8080"),
		DatabaseDSN:   envOr("DATABASE_DSN", "file:payments.db?_pragma=busy_timeout(5000)"),
		StoreURL:      envOr("STORE_URL", "http://localhost:8000"),
		RemoteTimeout: envDuration("PAYMENT_REMOTE_TIMEOUT", 15*time.Second),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		Tracing: TracingConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			Endpoint:    envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: envOr("OTEL_SERVICE_NAME", "store-payments"),
			SampleRatio: envFloat("OTEL_SAMPLE_RATIO", 1.0),
		},
		PayU: PayUConfig{
			APIKey:     os.Getenv("PAYU_API_KEY"),
			APILogin:   os.Getenv("PAYU_API_LOGIN"),
			MerchantID: os.Getenv("PAYU_MERCHANT_ID"),
			AccountID:  os.Getenv("PAYU_ACCOUNT_ID"),
			APIURL:     os.Getenv("PAYU_API_URL"),
			TestMode:   envBool("PAYU_TEST_MODE", true),
		},
		MercadoPago: MercadoPagoConfig{
			AccessToken:   os.Getenv("MERCADOPAGO_ACCESS_TOKEN"),
			PublicKey:     os.Getenv("MERCADOPAGO_PUBLIC_KEY"),
			WebhookSecret: os.Getenv("MERCADOPAGO_WEBHOOK_SECRET"),
			TestMode:      envBool("MERCADOPAGO_TEST_MODE", true),
		},
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

var Module = fx.Module("config",
	fx.Provide(Load),
)
