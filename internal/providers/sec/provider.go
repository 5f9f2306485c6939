// Package sec implements the SEC EDGAR data provider.
// EDGAR serves the company ticker directory, per-company submission indexes,
// XBRL company facts, rendered filing documents and Atom filing feeds.
//
// No API key required. Must include a User-Agent naming a contact per SEC
// policy. Docs: https://www.sec.gov/edgar/sec-api-documentation
// Rate limit: 10 requests/second per user-agent.
package sec

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/findata/internal/infra"
	"github.com/seenimoa/findata/internal/provider"
)

const providerName = "sec"

// pingCIK is Apple's CIK, used as a known-good submissions lookup.
const pingCIK = "0000320193"

// Config holds the endpoints and identity used against EDGAR.
type Config struct {
	UserAgent string
	DataURL   string // JSON data API, e.g. https://data.sec.gov
	WWWURL    string // www host for files and feeds, e.g. https://www.sec.gov
	RateLimit int    // requests per second
	CacheTTL  time.Duration
}

// DefaultConfig returns the public EDGAR endpoints.
func DefaultConfig() Config {
	return Config{
		UserAgent: infra.DefaultUserAgent,
		DataURL:   "https://data.sec.gov",
		WWWURL:    "https://www.sec.gov",
		RateLimit: 10,
		CacheTTL:  time.Hour,
	}
}

// Provider implements the SEC-backed market collaborators: identifier.Loader,
// filings.IndexSource, provider.FactsSource, provider.DocumentSource and
// provider.FeedSource.
type Provider struct {
	provider.Base
	cfg    Config
	parser *gofeed.Parser
}

// New creates a SEC provider. Zero fields in cfg take DefaultConfig values.
func New(cfg Config) *Provider {
	def := DefaultConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.DataURL == "" {
		cfg.DataURL = def.DataURL
	}
	if cfg.WWWURL == "" {
		cfg.WWWURL = def.WWWURL
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	cfg.DataURL = strings.TrimRight(cfg.DataURL, "/")
	cfg.WWWURL = strings.TrimRight(cfg.WWWURL, "/")

	return &Provider{
		Base: provider.NewBaseWithOpts(
			provider.ProviderInfo{
				Name:        providerName,
				Description: "SEC EDGAR - US company directory, filings and XBRL facts",
				Website:     "https://www.sec.gov/edgar",
				Capabilities: []provider.Capability{
					provider.CapDirectory,
					provider.CapFilingIndex,
					provider.CapDocuments,
					provider.CapCompanyFacts,
					provider.CapFeed,
				},
			},
			cfg.CacheTTL, cfg.RateLimit, time.Second,
		),
		cfg:    cfg,
		parser: gofeed.NewParser(),
	}
}

// Ping checks connectivity to SEC EDGAR.
func (p *Provider) Ping(ctx context.Context) error {
	url := fmt.Sprintf("%s/submissions/CIK%s.json", p.cfg.DataURL, pingCIK)
	body, _, err := infra.DoGet(ctx, url, p.headers())
	if err != nil {
		return fmt.Errorf("sec ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func (p *Provider) headers() map[string]string {
	return map[string]string{
		"User-Agent": p.cfg.UserAgent,
	}
}

// fetchSECRaw GETs url through the provider's cache and rate limiter.
func (p *Provider) fetchSECRaw(ctx context.Context, key, url string) ([]byte, error) {
	return p.Fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		return infra.GetBytes(ctx, url, p.headers())
	})
}
