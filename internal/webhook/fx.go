package webhook

import (
	"github.com/SeredDEV/store-payments/internal/webhook/repository"
	"github.com/SeredDEV/store-payments/internal/webhook/service"
	"go.uber.org/fx"
)

var Module = fx.Module("webhook.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
