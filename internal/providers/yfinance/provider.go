// Package yfinance implements the Yahoo Finance price provider on top of the
// public v8 chart API. No API key required.
package yfinance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/seenimoa/findata/internal/infra"
	"github.com/seenimoa/findata/internal/provider"
)

const providerName = "yfinance"

// Config holds the chart endpoint and client limits.
type Config struct {
	ChartURL  string // e.g. https://query2.finance.yahoo.com/v8/finance/chart
	RateLimit int    // requests per second
	CacheTTL  time.Duration
}

// DefaultConfig returns the public chart endpoint.
func DefaultConfig() Config {
	return Config{
		ChartURL:  "https://query2.finance.yahoo.com/v8/finance/chart",
		RateLimit: 5,
		CacheTTL:  5 * time.Minute,
	}
}

// Provider implements provider.PriceSource for Yahoo Finance.
type Provider struct {
	provider.Base
	cfg Config
}

// New creates a Yahoo Finance provider. Zero fields in cfg take
// DefaultConfig values.
func New(cfg Config) *Provider {
	def := DefaultConfig()
	if cfg.ChartURL == "" {
		cfg.ChartURL = def.ChartURL
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	cfg.ChartURL = strings.TrimRight(cfg.ChartURL, "/")

	return &Provider{
		Base: provider.NewBaseWithOpts(
			provider.ProviderInfo{
				Name:         providerName,
				Description:  "Yahoo Finance - free global daily price history",
				Website:      "https://finance.yahoo.com",
				Capabilities: []provider.Capability{provider.CapPrices},
			},
			cfg.CacheTTL, cfg.RateLimit, time.Second,
		),
		cfg: cfg,
	}
}

// Ping checks connectivity to Yahoo Finance.
func (p *Provider) Ping(ctx context.Context) error {
	u := p.cfg.ChartURL + "/AAPL?range=1d&interval=1d"
	body, _, err := infra.DoGet(ctx, u, jsonHeaders())
	if err != nil {
		return fmt.Errorf("yfinance ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{"Accept": "application/json"}
}

// fetchJSON GETs u through the cache and rate limiter and decodes it into
// dest.
func (p *Provider) fetchJSON(ctx context.Context, key, u string, dest any) error {
	data, err := p.Fetch(ctx, key, func(ctx context.Context) ([]byte, error) {
		return infra.GetBytes(ctx, u, jsonHeaders())
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}

// chartURL builds the daily chart query for [start, end).
func (p *Provider) chartURL(symbol string, start, end int64) string {
	q := url.Values{}
	q.Set("period1", fmt.Sprint(start))
	q.Set("period2", fmt.Sprint(end))
	q.Set("interval", "1d")
	q.Set("events", "history")
	return fmt.Sprintf("%s/%s?%s", p.cfg.ChartURL, url.PathEscape(symbol), q.Encode())
}
