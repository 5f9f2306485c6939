package provider

import (
	"strings"

	"github.com/seenimoa/findata/internal/filings"
	"github.com/seenimoa/findata/pkg/identifier"
)

// Market bundles the collaborators that serve one country. Nil fields mean
// the capability is unavailable there.
type Market struct {
	Country     identifier.CountryCode
	Name        string
	Resolver    *identifier.Resolver
	Filings     filings.IndexSource
	Facts       FactsSource
	Documents   DocumentSource
	Prices      PriceSource
	Feed        FeedSource
	PriceSuffix string // appended to symbols sent to Prices, e.g. ".KS"
	Providers   []Provider
}

// Scheme returns how the market identifies companies.
func (m *Market) Scheme() identifier.Scheme {
	return m.Resolver.Scheme()
}

// Capabilities lists what the market can serve, in a fixed order.
func (m *Market) Capabilities() []Capability {
	var caps []Capability
	if m.Resolver != nil {
		caps = append(caps, CapDirectory)
	}
	if m.Filings != nil {
		caps = append(caps, CapFilingIndex)
	}
	if m.Documents != nil {
		caps = append(caps, CapDocuments)
	}
	if m.Facts != nil {
		caps = append(caps, CapCompanyFacts)
	}
	if m.Prices != nil {
		caps = append(caps, CapPrices)
	}
	if m.Feed != nil {
		caps = append(caps, CapFeed)
	}
	return caps
}

// Supports reports whether the market serves c.
func (m *Market) Supports(c Capability) bool {
	for _, have := range m.Capabilities() {
		if have == c {
			return true
		}
	}
	return false
}

// Require returns ErrCapabilityNotSupported unless the market serves every
// capability in caps.
func (m *Market) Require(caps ...Capability) error {
	for _, c := range caps {
		if !m.Supports(c) {
			return &ErrCapabilityNotSupported{Country: string(m.Country), Capability: c}
		}
	}
	return nil
}

// PriceSymbol converts a resolved identifier into the symbol the price
// source expects.
func (m *Market) PriceSymbol(id string) string {
	if m.PriceSuffix == "" || strings.HasSuffix(strings.ToUpper(id), strings.ToUpper(m.PriceSuffix)) {
		return id
	}
	return id + m.PriceSuffix
}
