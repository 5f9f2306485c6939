// Package provider defines the upstream collaborators findata fetches from
// and a registry that routes a country code to the market serving it.
package provider

import (
	"context"
	"fmt"

	"github.com/seenimoa/findata/pkg/models"
)

// Capability names one kind of data a provider can serve.
type Capability string

const (
	CapDirectory    Capability = "directory"
	CapFilingIndex  Capability = "filing_index"
	CapDocuments    Capability = "documents"
	CapCompanyFacts Capability = "company_facts"
	CapPrices       Capability = "prices"
	CapFeed         Capability = "feed"
)

// ProviderInfo holds metadata about a provider.
type ProviderInfo struct {
	Name         string       `json:"name"`        // e.g., "sec", "yfinance"
	Description  string       `json:"description"` // human-readable description
	Website      string       `json:"website"`
	Capabilities []Capability `json:"capabilities"`
}

// Provider is implemented by every upstream data source.
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Ping verifies the provider is reachable.
	Ping(ctx context.Context) error
}

// DocumentSource fetches a filing document (R-file, FilingSummary.xml) by URL.
type DocumentSource interface {
	FetchDocument(ctx context.Context, url string) ([]byte, error)
}

// FactsSource fetches the XBRL company-facts payload for a 10-digit CIK.
type FactsSource interface {
	FetchCompanyFacts(ctx context.Context, cik string) ([]byte, error)
}

// PriceSource fetches daily bars for symbol in [start, end), both epoch
// seconds.
type PriceSource interface {
	FetchPriceSeries(ctx context.Context, symbol string, start, end int64) ([]models.OHLCV, error)
}

// FeedSource fetches the recent-filings feed for a CIK, optionally limited
// to one form type.
type FeedSource interface {
	FetchFilingFeed(ctx context.Context, cik, form string) ([]models.CompanyFiling, error)
}

// --- Errors ---

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrMarketNotSupported is returned when no market is registered for a
// country code.
type ErrMarketNotSupported struct {
	Country string
}

func (e *ErrMarketNotSupported) Error() string {
	return fmt.Sprintf("market %q is not supported", e.Country)
}

// ErrCapabilityNotSupported is returned when a market has no provider for a
// capability, e.g. filings for KOR.
type ErrCapabilityNotSupported struct {
	Country    string
	Capability Capability
}

func (e *ErrCapabilityNotSupported) Error() string {
	return fmt.Sprintf("market %q does not support %s", e.Country, e.Capability)
}
