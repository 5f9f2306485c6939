// Package stock is the entry point for per-company queries: it resolves a
// symbol in its market, then pulls filings, as-reported and standardized
// statements, price history and the filing feed through the market's
// providers.
package stock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/findata/internal/filings"
	"github.com/seenimoa/findata/internal/logger"
	"github.com/seenimoa/findata/internal/provider"
	"github.com/seenimoa/findata/internal/statement"
	"github.com/seenimoa/findata/pkg/dates"
	"github.com/seenimoa/findata/pkg/identifier"
	"github.com/seenimoa/findata/pkg/models"
)

// DefaultStartFloor is the start date used when a price query gives none.
var DefaultStartFloor = dates.NewDate(1900, time.January, 1)

// summaryProbe bounds how many filings of a form are opened while looking
// for a statement document.
const summaryProbe = 4

// Options configures a Client. Zero values take defaults.
type Options struct {
	Standardizer *statement.Standardizer
	Dates        *dates.Normalizer
	StartFloor   dates.CalendarDate
}

// Client answers company queries against the markets in a registry.
type Client struct {
	registry *provider.Registry
	std      *statement.Standardizer
	dates    *dates.Normalizer
	floor    dates.CalendarDate
	log      *logger.Entry
}

// NewClient creates a client over registry.
func NewClient(registry *provider.Registry, opts Options) *Client {
	c := &Client{
		registry: registry,
		std:      opts.Standardizer,
		dates:    opts.Dates,
		floor:    opts.StartFloor,
		log:      logger.L().WithComponent("stock"),
	}
	if c.std == nil {
		c.std = statement.NewStandardizer(nil, statement.TTMNone)
	}
	if c.dates == nil {
		c.dates = dates.Default
	}
	if c.floor.IsZero() {
		c.floor = DefaultStartFloor
	}
	return c
}

// Registry returns the client's market registry.
func (c *Client) Registry() *provider.Registry { return c.registry }

// Stock is one company in one market with its identifier resolved.
type Stock struct {
	client *Client
	market *provider.Market
	symbol string
	ticker string
	id     identifier.MarketIdentifier
}

// Stock validates country, resolves symbol in that market and returns a
// handle for further queries.
func (c *Client) Stock(ctx context.Context, symbol, country string) (*Stock, error) {
	m, err := c.registry.Market(country)
	if err != nil {
		return nil, err
	}
	id, err := m.Resolver.Resolve(ctx, symbol)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logger.Fields{
		"symbol":  symbol,
		"country": m.Country,
		"scheme":  id.Scheme.String(),
		"id":      id.Value,
	}).Debug("symbol resolved")
	return &Stock{client: c, market: m, symbol: symbol, ticker: quoteTicker(ctx, m, symbol, id), id: id}, nil
}

// quoteTicker is the symbol price sources know the company by. CIK markets
// quote by exchange ticker; the other schemes quote by their identifier.
func quoteTicker(ctx context.Context, m *provider.Market, symbol string, id identifier.MarketIdentifier) string {
	if id.Scheme != identifier.SchemeCIK {
		return id.Value
	}
	if e, err := m.Resolver.Lookup(ctx, symbol); err == nil && e.Ticker != "" {
		return e.Ticker
	}
	return identifier.NormalizeSymbol(symbol)
}

// Symbol returns the symbol as the caller gave it.
func (s *Stock) Symbol() string { return s.symbol }

// Country returns the market's country code.
func (s *Stock) Country() identifier.CountryCode { return s.market.Country }

// Ticker returns the symbol used for price queries.
func (s *Stock) Ticker() string { return s.ticker }

// Identifier returns the resolved market identifier.
func (s *Stock) Identifier() identifier.MarketIdentifier { return s.id }

// request tags one query with a fresh request id.
func (s *Stock) request(op string) *logger.Entry {
	return s.client.log.WithFields(logger.Fields{
		"request_id": uuid.NewString(),
		"op":         op,
		"symbol":     s.symbol,
		"country":    s.market.Country,
	})
}

// Filings lists the company's submissions, most recent first.
func (s *Stock) Filings(ctx context.Context) ([]filings.FilingRecord, error) {
	if err := s.market.Require(provider.CapFilingIndex); err != nil {
		return nil, err
	}
	log := s.request("filings")
	defer log.Timed("filings", time.Now())

	records, err := filings.ListFilings(ctx, s.market.Filings, s.id.Value)
	if err != nil {
		return nil, fmt.Errorf("%s filings: %w", s.symbol, err)
	}
	return records, nil
}

// Financials returns the kind statement exactly as reported in the most
// recent annual or quarterly filing that has one.
func (s *Stock) Financials(ctx context.Context, kind statement.Kind, period statement.Period) (*statement.AsReported, error) {
	if err := s.market.Require(provider.CapFilingIndex, provider.CapDocuments); err != nil {
		return nil, err
	}
	log := s.request("financials").WithFields(logger.Fields{"kind": kind.String(), "period": period.String()})
	defer log.Timed("financials", time.Now())

	records, err := s.Filings(ctx)
	if err != nil {
		return nil, err
	}
	return s.reported(ctx, records, kind, period, log)
}

// reported finds and parses the kind statement among records.
func (s *Stock) reported(ctx context.Context, records []filings.FilingRecord, kind statement.Kind, period statement.Period, log *logger.Entry) (*statement.AsReported, error) {
	form := filings.FormFor(period)
	matching, err := filings.Select(records, form)
	if err != nil {
		return nil, fmt.Errorf("%s financials: %w", s.symbol, err)
	}

	// Open manifests newest first and stop at the first that has the
	// statement.
	n := 0
	for i := range matching {
		if i >= summaryProbe {
			break
		}
		n = i + 1
		docs, err := s.documents(ctx, matching[i])
		if err != nil {
			log.WithError(err).WithField("accession", matching[i].AccessionNumber).Warn("filing summary unavailable")
			continue
		}
		matching[i].Documents = docs
		if _, ok := filings.MatchDocument(docs, kind); ok {
			break
		}
	}

	url, err := filings.FindStatementDocument(matching[:n], form, kind)
	if err != nil {
		return nil, fmt.Errorf("%s financials: %w", s.symbol, err)
	}
	log.WithField("document", url).Debug("statement document found")

	data, err := s.market.Documents.FetchDocument(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%s financials: %w", s.symbol, err)
	}
	report, err := statement.ParseReport(data)
	if err != nil {
		return nil, fmt.Errorf("%s financials: %w", s.symbol, err)
	}
	return report, nil
}

func (s *Stock) documents(ctx context.Context, r filings.FilingRecord) ([]filings.Document, error) {
	data, err := s.market.Documents.FetchDocument(ctx, r.SummaryURL())
	if err != nil {
		return nil, err
	}
	return filings.ParseFilingSummary(data, r.BaseURL)
}

// StatementSet holds the three as-reported statements of one period. A
// statement that could not be retrieved is absent from Statements and its
// error is in Errors.
type StatementSet struct {
	Period     statement.Period
	Statements map[statement.Kind]*statement.AsReported
	Errors     map[statement.Kind]error
}

// AsReportedSet retrieves all three as-reported statements concurrently.
// It fails only when none could be retrieved.
func (s *Stock) AsReportedSet(ctx context.Context, period statement.Period) (*StatementSet, error) {
	if err := s.market.Require(provider.CapFilingIndex, provider.CapDocuments); err != nil {
		return nil, err
	}
	log := s.request("as_reported_set").WithField("period", period.String())
	defer log.Timed("as_reported_set", time.Now())

	records, err := s.Filings(ctx)
	if err != nil {
		return nil, err
	}

	set := &StatementSet{
		Period:     period,
		Statements: map[statement.Kind]*statement.AsReported{},
		Errors:     map[statement.Kind]error{},
	}
	var mu sync.Mutex

	// Failures are recorded per kind, so the group itself never errors.
	var g errgroup.Group
	for _, kind := range statement.Kinds() {
		// Each goroutine works on its own copy; reported fills Documents.
		own := make([]filings.FilingRecord, len(records))
		copy(own, records)
		g.Go(func() error {
			report, err := s.reported(ctx, own, kind, period, log.WithField("kind", kind.String()))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				set.Errors[kind] = err
				return nil
			}
			set.Statements[kind] = report
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s as-reported set: %w", s.symbol, err)
	}

	if len(set.Statements) == 0 {
		errs := make([]error, 0, len(set.Errors))
		for _, kind := range statement.Kinds() {
			errs = append(errs, set.Errors[kind])
		}
		return nil, errors.Join(errs...)
	}
	return set, nil
}

// StandardFinancials maps the company's XBRL facts onto the standard kind
// statement.
func (s *Stock) StandardFinancials(ctx context.Context, kind statement.Kind, period statement.Period) (*statement.StandardStatement, error) {
	if err := s.market.Require(provider.CapCompanyFacts); err != nil {
		return nil, err
	}
	log := s.request("standard_financials").WithFields(logger.Fields{"kind": kind.String(), "period": period.String()})
	defer log.Timed("standard_financials", time.Now())

	data, err := s.market.Facts.FetchCompanyFacts(ctx, s.id.Value)
	if err != nil {
		return nil, fmt.Errorf("%s standard financials: %w", s.symbol, err)
	}
	payload, err := statement.ParseCompanyFacts(data)
	if err != nil {
		return nil, fmt.Errorf("%s standard financials: %w", s.symbol, err)
	}
	st, err := s.client.std.FromFacts(payload, kind, period)
	if err != nil {
		return nil, fmt.Errorf("%s standard financials: %w", s.symbol, err)
	}
	return st, nil
}

// Historical returns daily prices between start and end inclusive. An empty
// start means the client's start floor; an empty end means today at midnight
// in dates.ReferenceZone, so today's unfinished session is excluded.
func (s *Stock) Historical(ctx context.Context, start, end string) (*models.PriceSeries, error) {
	if err := s.market.Require(provider.CapPrices); err != nil {
		return nil, err
	}
	from, err := s.client.dates.ParseOr(start, s.client.floor)
	if err != nil {
		return nil, err
	}
	to, err := s.client.dates.Parse(end)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end date %s is before start date %s", to, from)
	}

	endTS := dates.EndTimestamp(to)
	if end == "" {
		endTS = dates.Timestamp(to)
	}

	symbol := s.market.PriceSymbol(s.ticker)
	series := &models.PriceSeries{
		Symbol: symbol,
		Start:  dates.Timestamp(from),
		End:    endTS,
	}
	log := s.request("historical").WithFields(logger.Fields{"start": from.String(), "end": to.String()})
	defer log.Timed("historical", time.Now())

	bars, err := s.market.Prices.FetchPriceSeries(ctx, symbol, series.Start, series.End)
	if err != nil {
		return nil, fmt.Errorf("%s historical: %w", s.symbol, err)
	}
	series.Bars = bars
	return series, nil
}

// Feed returns recent filings announced on the market's feed, optionally
// limited to one form.
func (s *Stock) Feed(ctx context.Context, form string) ([]models.CompanyFiling, error) {
	if err := s.market.Require(provider.CapFeed); err != nil {
		return nil, err
	}
	log := s.request("feed").WithField("form", form)
	defer log.Timed("feed", time.Now())

	items, err := s.market.Feed.FetchFilingFeed(ctx, s.id.Value, form)
	if err != nil {
		return nil, fmt.Errorf("%s feed: %w", s.symbol, err)
	}
	return items, nil
}
