package gateway

import (
	"sort"

	"github.com/SeredDEV/store-payments/internal/gateway/domain"
)

// Registry resolves a provider identifier to its adapter. Adapters are
// registered once at startup; lookups afterwards are read-only, so no lock is
// needed.
type Registry struct {
	adapters map[string]domain.Adapter
}

func NewRegistry(adapters ...domain.Adapter) *Registry {
	r := &Registry{adapters: make(map[string]domain.Adapter, len(adapters))}
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		r.adapters[adapter.Provider()] = adapter
	}
	return r
}

// Get returns the adapter for provider, or ErrProviderNotFound when no
// adapter is registered under that identifier.
func (r *Registry) Get(provider string) (domain.Adapter, error) {
	adapter, ok := r.adapters[provider]
	if !ok {
		return nil, domain.ErrProviderNotFound
	}
	return adapter, nil
}

// Providers lists the registered provider identifiers in stable order.
func (r *Registry) Providers() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
