package tracing

import (
	"github.com/SeredDEV/store-payments/internal/config"
	"go.uber.org/fx"
)

var version = "dev"

var Module = fx.Module("tracing",
	fx.Provide(func(cfg config.Config) Config {
		return Config{
			Enabled:          cfg.Tracing.Enabled,
			ServiceName:      cfg.Tracing.ServiceName,
			ServiceVersion:   version,
			ExporterEndpoint: cfg.Tracing.Endpoint,
			SamplingRatio:    cfg.Tracing.SampleRatio,
		}
	}),
	fx.Invoke(NewProvider),
)
