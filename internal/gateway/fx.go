package gateway

import (
	"net/http"

	"github.com/SeredDEV/store-payments/internal/config"
	"github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/SeredDEV/store-payments/internal/gateway/mercadopago"
	"github.com/SeredDEV/store-payments/internal/gateway/payu"
	"github.com/SeredDEV/store-payments/internal/observability/tracing"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("gateway",
	fx.Provide(newProviderClient),
	fx.Provide(newRegistry),
)

// newProviderClient builds the shared outbound HTTP client. The timeout here
// is the single source of truth for how long any provider call may take.
func newProviderClient(cfg config.Config) *http.Client {
	return tracing.WrapHTTPClient(&http.Client{Timeout: cfg.RemoteTimeout})
}

func newRegistry(cfg config.Config, httpClient *http.Client, log *zap.Logger) *Registry {
	var adapters []domain.Adapter

	if cfg.PayU.APIKey != "" {
		adapters = append(adapters, payu.New(payu.Options{
			APIKey:     cfg.PayU.APIKey,
			APILogin:   cfg.PayU.APILogin,
			MerchantID: cfg.PayU.MerchantID,
			AccountID:  cfg.PayU.AccountID,
			APIURL:     cfg.PayU.APIURL,
			TestMode:   cfg.PayU.TestMode,
		}, httpClient, log))
	}

	if cfg.MercadoPago.AccessToken != "" {
		adapters = append(adapters, mercadopago.New(mercadopago.Options{
			AccessToken:   cfg.MercadoPago.AccessToken,
			PublicKey:     cfg.MercadoPago.PublicKey,
			WebhookSecret: cfg.MercadoPago.WebhookSecret,
			StoreURL:      cfg.StoreURL,
			TestMode:      cfg.MercadoPago.TestMode,
		}, httpClient, log))
	}

	if len(adapters) == 0 {
		log.Warn("no payment providers configured")
	}
	return NewRegistry(adapters...)
}
