package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// setPropagator installs W3C tracecontext + baggage globally so traces
// survive the hop between the storefront, this service, and the payment
// providers.
func setPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// injectHeaders stamps the active trace onto an outbound provider request.
func injectHeaders(ctx context.Context, header http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}

// ExtractHeaders picks trace headers off an inbound request, tying webhook
// spans to the provider's delivery attempt when the sender propagates one.
func ExtractHeaders(ctx context.Context, header http.Header) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.HeaderCarrier(header))
}
