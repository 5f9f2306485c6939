package stock

import (
	"fmt"
	"time"

	"github.com/seenimoa/findata/internal/config"
	"github.com/seenimoa/findata/internal/infra"
	"github.com/seenimoa/findata/internal/provider"
	"github.com/seenimoa/findata/internal/providers/krx"
	"github.com/seenimoa/findata/internal/providers/sec"
	"github.com/seenimoa/findata/internal/providers/yfinance"
	"github.com/seenimoa/findata/internal/statement"
	"github.com/seenimoa/findata/pkg/dates"
	"github.com/seenimoa/findata/pkg/identifier"
)

// NewRegistry wires the built-in markets:
//
//	USA  SEC directory, filings, facts, documents and feed; Yahoo prices
//	KOR  KRX directory; Yahoo prices with the configured suffix
func NewRegistry(cfg *config.Config) (*provider.Registry, error) {
	infra.SetTimeout(cfg.HTTP.Timeout())

	secP := sec.New(sec.Config{
		UserAgent: cfg.SEC.UserAgent,
		DataURL:   cfg.SEC.DataURL,
		WWWURL:    cfg.SEC.WWWURL,
		RateLimit: cfg.SEC.RateLimit,
		CacheTTL:  seconds(cfg.SEC.CacheTTLSec),
	})
	yf := yfinance.New(yfinance.Config{
		ChartURL:  cfg.Yahoo.ChartURL,
		RateLimit: cfg.Yahoo.RateLimit,
		CacheTTL:  seconds(cfg.Yahoo.CacheTTLSec),
	})
	krxP := krx.New(krx.Config{
		CorpListURL: cfg.KRX.CorpListURL,
		CacheTTL:    seconds(cfg.KRX.CacheTTLSec),
	})

	reg := provider.NewRegistry()
	markets := []*provider.Market{
		{
			Country:   identifier.USA,
			Name:      "United States",
			Resolver:  identifier.NewResolver(identifier.SchemeCIK, secP),
			Filings:   secP,
			Facts:     secP,
			Documents: secP,
			Prices:    yf,
			Feed:      secP,
			Providers: []provider.Provider{secP, yf},
		},
		{
			Country:     identifier.KOR,
			Name:        "Korea",
			Resolver:    identifier.NewResolver(identifier.SchemeCompanyCode, krxP),
			Prices:      yf,
			PriceSuffix: cfg.KRX.PriceSuffix,
			Providers:   []provider.Provider{krxP, yf},
		},
	}
	for _, m := range markets {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// NewFromConfig builds a client over the built-in markets with the
// configured standardization schema, TTM policy and start floor.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	reg, err := NewRegistry(cfg)
	if err != nil {
		return nil, err
	}

	ttm, err := statement.ParseTTMPolicy(cfg.Statements.TTM)
	if err != nil {
		return nil, err
	}
	var schema *statement.Schema
	if cfg.Statements.SchemaFile != "" {
		schema, err = statement.LoadSchemaFile(cfg.Statements.SchemaFile)
		if err != nil {
			return nil, err
		}
	}

	floor, err := dates.Parse(cfg.Dates.StartFloor)
	if err != nil {
		return nil, fmt.Errorf("dates.start_floor: %w", err)
	}

	return NewClient(reg, Options{
		Standardizer: statement.NewStandardizer(schema, ttm),
		StartFloor:   floor,
	}), nil
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
