package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/seenimoa/findata/pkg/identifier"
)

// Registry is a thread-safe registry of markets, keyed by country code, and
// of the providers backing them.
type Registry struct {
	mu        sync.RWMutex
	markets   map[identifier.CountryCode]*Market
	providers map[string]Provider
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		markets:   make(map[identifier.CountryCode]*Market),
		providers: make(map[string]Provider),
	}
}

// Register adds a market. Duplicate registrations overwrite the previous
// entry.
func (r *Registry) Register(m *Market) error {
	if m == nil {
		return fmt.Errorf("market cannot be nil")
	}
	code, err := identifier.ResolveCountryCode(string(m.Country))
	if err != nil {
		return err
	}
	if m.Resolver == nil {
		return fmt.Errorf("market %s has no identifier resolver", code)
	}
	m.Country = code

	r.mu.Lock()
	defer r.mu.Unlock()

	r.markets[code] = m
	for _, p := range m.Providers {
		r.providers[p.Info().Name] = p
	}
	return nil
}

// Unregister removes a market. Providers shared with other markets stay.
func (r *Registry) Unregister(country identifier.CountryCode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.markets, country)

	inUse := map[string]bool{}
	for _, m := range r.markets {
		for _, p := range m.Providers {
			inUse[p.Info().Name] = true
		}
	}
	for name := range r.providers {
		if !inUse[name] {
			delete(r.providers, name)
		}
	}
}

// Market validates raw as a country code and returns its market.
func (r *Registry) Market(raw string) (*Market, error) {
	code, err := identifier.ResolveCountryCode(raw)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.markets[code]
	if !ok {
		return nil, &ErrMarketNotSupported{Country: string(code)}
	}
	return m, nil
}

// Countries returns the registered country codes, sorted.
func (r *Registry) Countries() []identifier.CountryCode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]identifier.CountryCode, 0, len(r.markets))
	for c := range r.markets {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Provider returns a provider by name.
func (r *Registry) Provider(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns info about all registered providers, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// PingResult is the outcome of pinging one provider.
type PingResult struct {
	Provider string `json:"provider"`
	Err      error  `json:"-"`
}

// OK reports whether the ping succeeded.
func (p PingResult) OK() bool { return p.Err == nil }

// PingAll pings every registered provider concurrently. Results are sorted
// by provider name.
func (r *Registry) PingAll(ctx context.Context) []PingResult {
	r.mu.RLock()
	providers := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}
	r.mu.RUnlock()

	results := make([]PingResult, len(providers))
	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			results[i] = PingResult{Provider: p.Info().Name, Err: p.Ping(ctx)}
		}(i, p)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Provider < results[j].Provider })
	return results
}
