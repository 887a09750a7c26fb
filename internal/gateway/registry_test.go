package gateway

import (
	"errors"
	"net/http"
	"testing"
	"time"

	gatewaydomain "github.com/SeredDEV/store-payments/internal/gateway/domain"
	"github.com/SeredDEV/store-payments/internal/gateway/mercadopago"
	"github.com/SeredDEV/store-payments/internal/gateway/payu"
	"go.uber.org/zap"
)

func TestRegistryResolvesProviders(t *testing.T) {
	httpClient := &http.Client{Timeout: time.Second}
	registry := NewRegistry(
		payu.New(payu.Options{APIKey: "k", MerchantID: "m", AccountID: "a", TestMode: true}, httpClient, zap.NewNop()),
		mercadopago.New(mercadopago.Options{AccessToken: "t", TestMode: true}, httpClient, zap.NewNop()),
	)

	adapter, err := registry.Get("payu")
	if err != nil {
		t.Fatalf("get payu: %v", err)
	}
	if adapter.CaptureMode() != gatewaydomain.CaptureModeAutomatic {
		t.Fatal("card gateway should capture automatically")
	}

	adapter, err = registry.Get("mercadopago")
	if err != nil {
		t.Fatalf("get mercadopago: %v", err)
	}
	if adapter.CaptureMode() != gatewaydomain.CaptureModeManual {
		t.Fatal("wallet gateway should capture manually")
	}

	if _, err := registry.Get("stripe"); !errors.Is(err, gatewaydomain.ErrProviderNotFound) {
		t.Fatalf("expected provider_not_found, got %v", err)
	}

	providers := registry.Providers()
	if len(providers) != 2 || providers[0] != "mercadopago" || providers[1] != "payu" {
		t.Fatalf("unexpected provider list: %v", providers)
	}
}
