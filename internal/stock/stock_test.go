package stock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/findata/internal/config"
	"github.com/seenimoa/findata/internal/filings"
	"github.com/seenimoa/findata/internal/provider"
	"github.com/seenimoa/findata/internal/statement"
	"github.com/seenimoa/findata/pkg/dates"
	"github.com/seenimoa/findata/pkg/identifier"
	"github.com/seenimoa/findata/pkg/models"
)

const balanceHTML = `<table class="report">
<tr><th>CONSOLIDATED BALANCE SHEETS - USD ($)<br>$ in Millions</th><th>Sep. 25, 2021</th><th>Sep. 26, 2020</th></tr>
<tr><td>Total assets</td><td>$ 351,002</td><td>$ 323,888</td></tr>
</table>`

const cashFlowHTML = `<table class="report">
<tr><th>CONSOLIDATED STATEMENTS OF CASH FLOWS - USD ($)<br>$ in Millions</th><th colspan="2">12 Months Ended</th></tr>
<tr><th>Sep. 25, 2021</th><th>Sep. 26, 2020</th></tr>
<tr><td>Net income</td><td>$ 94,680</td><td>$ 57,411</td></tr>
</table>`

// fakeSEC serves fixtures for every SEC-side collaborator.
type fakeSEC struct {
	provider.Base

	mu       sync.Mutex
	fetched  []string
	missing  map[string]bool // document base names answering with an error
	failURLs map[string]bool // full URLs answering with an error
}

func newFakeSEC() *fakeSEC {
	return &fakeSEC{
		Base:     provider.NewBase(provider.ProviderInfo{Name: "sec"}),
		missing:  map[string]bool{},
		failURLs: map[string]bool{},
	}
}

func (f *fakeSEC) FetchDirectory(ctx context.Context) ([]identifier.Entry, error) {
	return []identifier.Entry{
		{Code: "320193", Name: "Apple Inc.", Ticker: "AAPL", Exchange: "Nasdaq"},
		{Code: "789019", Name: "Microsoft Corp", Ticker: "MSFT", Exchange: "Nasdaq"},
	}, nil
}

func (f *fakeSEC) FetchFilingIndex(ctx context.Context, cik string) ([]byte, error) {
	if cik != "0000320193" {
		return nil, fmt.Errorf("unexpected cik %s", cik)
	}
	return os.ReadFile("testdata/submissions.json")
}

func (f *fakeSEC) FetchCompanyFacts(ctx context.Context, cik string) ([]byte, error) {
	return os.ReadFile("testdata/companyfacts.json")
}

func (f *fakeSEC) FetchDocument(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()

	name := path.Base(url)
	if f.missing[name] || f.failURLs[url] {
		return nil, fmt.Errorf("fetch %s: not found", url)
	}
	switch name {
	case "FilingSummary.xml":
		return os.ReadFile("testdata/FilingSummary.xml")
	case "R2.htm":
		return os.ReadFile("testdata/R2.htm")
	case "R4.htm":
		return []byte(balanceHTML), nil
	case "R7.htm":
		return []byte(cashFlowHTML), nil
	}
	return nil, fmt.Errorf("fetch %s: not found", url)
}

func (f *fakeSEC) FetchFilingFeed(ctx context.Context, cik, form string) ([]models.CompanyFiling, error) {
	return []models.CompanyFiling{{CIK: cik, FormType: form, AccessionNo: "0000320193-21-000105"}}, nil
}

// fakePrices records the last query.
type fakePrices struct {
	provider.Base
	symbol     string
	start, end int64
}

func (f *fakePrices) FetchPriceSeries(ctx context.Context, symbol string, start, end int64) ([]models.OHLCV, error) {
	f.symbol, f.start, f.end = symbol, start, end
	return []models.OHLCV{{Close: 146.95}}, nil
}

type fixture struct {
	client *Client
	sec    *fakeSEC
	prices *fakePrices
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sec := newFakeSEC()
	prices := &fakePrices{Base: provider.NewBase(provider.ProviderInfo{Name: "yfinance"})}

	kor := identifier.NewResolver(identifier.SchemeCompanyCode, nil)
	kor.Load([]identifier.Entry{{Code: "005930", Name: "삼성전자", Ticker: "005930"}})

	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(&provider.Market{
		Country:   identifier.USA,
		Resolver:  identifier.NewResolver(identifier.SchemeCIK, sec),
		Filings:   sec,
		Facts:     sec,
		Documents: sec,
		Prices:    prices,
		Feed:      sec,
		Providers: []provider.Provider{sec, prices},
	}))
	require.NoError(t, reg.Register(&provider.Market{
		Country:     identifier.KOR,
		Resolver:    kor,
		Prices:      prices,
		PriceSuffix: ".KS",
		Providers:   []provider.Provider{prices},
	}))
	return &fixture{client: NewClient(reg, Options{}), sec: sec, prices: prices}
}

func (fx *fixture) stock(t *testing.T, symbol, country string) *Stock {
	t.Helper()
	s, err := fx.client.Stock(context.Background(), symbol, country)
	require.NoError(t, err)
	return s
}

// --- Resolution ---

func TestStockResolvesCIK(t *testing.T) {
	fx := newFixture(t)
	s := fx.stock(t, "aapl", "usa")
	assert.Equal(t, identifier.SchemeCIK, s.Identifier().Scheme)
	assert.Equal(t, "0000320193", s.Identifier().Value)
	assert.Equal(t, identifier.USA, s.Country())
	assert.Equal(t, "aapl", s.Symbol())
}

func TestStockResolvesCompanyName(t *testing.T) {
	fx := newFixture(t)
	s := fx.stock(t, "삼성전자", "KOR")
	assert.Equal(t, "005930", s.Identifier().Value)
}

func TestStockErrors(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.client.Stock(ctx, "AAPL", "12")
	var badCountry *identifier.CountryCodeValidationError
	assert.ErrorAs(t, err, &badCountry)

	_, err = fx.client.Stock(ctx, "AAPL", "JPN")
	var unsupported *provider.ErrMarketNotSupported
	assert.ErrorAs(t, err, &unsupported)

	_, err = fx.client.Stock(ctx, "ZZZZ", "USA")
	var notFound *identifier.IdentifierNotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = fx.client.Stock(ctx, "LG", "KOR")
	var noCode *identifier.CodeNotFoundError
	assert.ErrorAs(t, err, &noCode)
}

// --- Filings and as-reported statements ---

func TestFilings(t *testing.T) {
	fx := newFixture(t)
	records, err := fx.stock(t, "AAPL", "USA").Filings(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "2021-11-01", records[0].FilingDate)
}

func TestFinancialsAnnualIncome(t *testing.T) {
	fx := newFixture(t)
	r, err := fx.stock(t, "AAPL", "USA").Financials(context.Background(), statement.IncomeStatement, statement.Annual)
	require.NoError(t, err)
	assert.Equal(t, "CONSOLIDATED STATEMENTS OF OPERATIONS", r.Title)
	assert.NotEmpty(t, r.Rows)

	// Only the newest 10-K manifest is opened.
	assert.Contains(t, fx.sec.fetched, "https://www.sec.gov/Archives/edgar/data/320193/000032019321000105/FilingSummary.xml")
	assert.Contains(t, fx.sec.fetched, "https://www.sec.gov/Archives/edgar/data/320193/000032019321000105/R2.htm")
	assert.NotContains(t, fx.sec.fetched, "https://www.sec.gov/Archives/edgar/data/320193/000032019320000096/FilingSummary.xml")
}

func TestFinancialsQuarterUsesLatest10Q(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.stock(t, "AAPL", "USA").Financials(context.Background(), statement.BalanceSheet, statement.Quarter)
	require.NoError(t, err)
	assert.Contains(t, fx.sec.fetched, "https://www.sec.gov/Archives/edgar/data/320193/000032019321000065/R4.htm")
}

func TestFinancialsFallsBackToOlderFiling(t *testing.T) {
	fx := newFixture(t)
	fx.sec.failURLs["https://www.sec.gov/Archives/edgar/data/320193/000032019321000105/FilingSummary.xml"] = true

	_, err := fx.stock(t, "AAPL", "USA").Financials(context.Background(), statement.CashFlow, statement.Annual)
	require.NoError(t, err)
	assert.Contains(t, fx.sec.fetched, "https://www.sec.gov/Archives/edgar/data/320193/000032019320000096/R7.htm")
}

func TestFinancialsDocumentNotFound(t *testing.T) {
	fx := newFixture(t)
	fx.sec.missing["FilingSummary.xml"] = true

	_, err := fx.stock(t, "AAPL", "USA").Financials(context.Background(), statement.IncomeStatement, statement.Annual)
	var notFound *filings.DocumentNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "10-K", notFound.Form)
}

func TestFinancialsUnsupportedMarket(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.stock(t, "005930", "KOR").Financials(context.Background(), statement.IncomeStatement, statement.Annual)
	var unsupported *provider.ErrCapabilityNotSupported
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, provider.CapFilingIndex, unsupported.Capability)
}

func TestAsReportedSet(t *testing.T) {
	fx := newFixture(t)
	set, err := fx.stock(t, "AAPL", "USA").AsReportedSet(context.Background(), statement.Annual)
	require.NoError(t, err)
	assert.Len(t, set.Statements, 3)
	assert.Empty(t, set.Errors)
	assert.Equal(t, "CONSOLIDATED BALANCE SHEETS", set.Statements[statement.BalanceSheet].Title)
	assert.Equal(t, 1e6, set.Statements[statement.CashFlow].Scale())
}

func TestAsReportedSetPartial(t *testing.T) {
	fx := newFixture(t)
	fx.sec.missing["R7.htm"] = true

	set, err := fx.stock(t, "AAPL", "USA").AsReportedSet(context.Background(), statement.Annual)
	require.NoError(t, err)
	assert.Len(t, set.Statements, 2)
	assert.Contains(t, set.Errors, statement.CashFlow)
}

func TestAsReportedSetCanceled(t *testing.T) {
	fx := newFixture(t)
	s := fx.stock(t, "AAPL", "USA")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.AsReportedSet(ctx, statement.Annual)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAsReportedSetAllFail(t *testing.T) {
	fx := newFixture(t)
	fx.sec.missing["FilingSummary.xml"] = true

	_, err := fx.stock(t, "AAPL", "USA").AsReportedSet(context.Background(), statement.Annual)
	require.Error(t, err)
	var notFound *filings.DocumentNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

// --- Standardized statements ---

func TestStandardFinancials(t *testing.T) {
	fx := newFixture(t)
	st, err := fx.stock(t, "AAPL", "USA").StandardFinancials(context.Background(), statement.IncomeStatement, statement.Annual)
	require.NoError(t, err)
	assert.Equal(t, []string{"2021-09-25", "2020-09-26", "2019-09-28"}, st.Columns)
	assert.Equal(t, statement.Of(365817000000), st.Get("Total Revenue", "2021-09-25"))
	assert.Equal(t, statement.DefaultSchema().RowNames(statement.IncomeStatement), rowNames(st))
}

func TestStandardFinancialsUnsupportedMarket(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.stock(t, "005930", "KOR").StandardFinancials(context.Background(), statement.IncomeStatement, statement.Annual)
	var unsupported *provider.ErrCapabilityNotSupported
	assert.ErrorAs(t, err, &unsupported)
}

func rowNames(st *statement.StandardStatement) []string {
	out := make([]string, len(st.Rows))
	for i, r := range st.Rows {
		out[i] = r.Name
	}
	return out
}

// --- Prices ---

func TestHistoricalRange(t *testing.T) {
	fx := newFixture(t)
	series, err := fx.stock(t, "AAPL", "USA").Historical(context.Background(), "2021-8-3", "21-8-10")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", fx.prices.symbol)
	assert.Equal(t, int64(1627963200), fx.prices.start)
	assert.Equal(t, int64(1628654400), fx.prices.end)
	assert.Equal(t, int64(1627963200), series.Start)
	assert.Len(t, series.Bars, 1)
}

func TestHistoricalDefaults(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.stock(t, "AAPL", "USA").Historical(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(-2208974400), fx.prices.start)
	assert.Equal(t, dates.Timestamp(dates.Default.Today()), fx.prices.end)
}

func TestHistoricalQuotesTickerNotCIK(t *testing.T) {
	fx := newFixture(t)
	s := fx.stock(t, "$aapl", "USA")
	assert.Equal(t, "0000320193", s.Identifier().Value)
	assert.Equal(t, "AAPL", s.Ticker())

	_, err := s.Historical(context.Background(), "2021-08-03", "2021-08-10")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", fx.prices.symbol)

	kor := fx.stock(t, "005930", "KOR")
	assert.Equal(t, "005930", kor.Ticker())
}

func TestHistoricalKoreaSuffix(t *testing.T) {
	fx := newFixture(t)
	_, err := fx.stock(t, "삼성전자", "KOR").Historical(context.Background(), "2021-08-03", "2021-08-10")
	require.NoError(t, err)
	assert.Equal(t, "005930.KS", fx.prices.symbol)
}

func TestHistoricalInvalidInput(t *testing.T) {
	fx := newFixture(t)
	s := fx.stock(t, "AAPL", "USA")

	_, err := s.Historical(context.Background(), "08/03/2021", "")
	var badFormat *dates.DateFormatError
	assert.ErrorAs(t, err, &badFormat)

	_, err = s.Historical(context.Background(), "2021-08-10", "2021-08-03")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "before start"))
}

// --- Feed, directory, status ---

func TestFeed(t *testing.T) {
	fx := newFixture(t)
	items, err := fx.stock(t, "AAPL", "USA").Feed(context.Background(), "10-K")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "0000320193", items[0].CIK)

	_, err = fx.stock(t, "005930", "KOR").Feed(context.Background(), "")
	var unsupported *provider.ErrCapabilityNotSupported
	assert.ErrorAs(t, err, &unsupported)
}

func TestDirectory(t *testing.T) {
	fx := newFixture(t)
	got, err := fx.client.Directory(context.Background(), "USA", "apple", 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.CIKMapping{CIK: "0000320193", Symbol: "AAPL", Name: "Apple Inc.", Exchange: "Nasdaq"}, got[0])

	all, err := fx.client.Directory(context.Background(), "USA", "", 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	kor, err := fx.client.Directory(context.Background(), "KOR", "", 0)
	require.NoError(t, err)
	require.Len(t, kor, 1)
	assert.Equal(t, "005930", kor[0].CIK)
}

func TestRefresh(t *testing.T) {
	fx := newFixture(t)
	n, err := fx.client.Refresh(context.Background(), "USA")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = fx.client.Refresh(context.Background(), "KOR")
	assert.ErrorIs(t, err, identifier.ErrNoLoader)
}

func TestStatus(t *testing.T) {
	fx := newFixture(t)
	results := fx.client.Status(context.Background())
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.OK(), r.Provider)
	}
}

// --- Construction from config ---

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	c, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []identifier.CountryCode{identifier.KOR, identifier.USA}, c.Registry().Countries())

	kor, err := c.Registry().Market("KOR")
	require.NoError(t, err)
	assert.Equal(t, ".KS", kor.PriceSuffix)
	assert.False(t, kor.Supports(provider.CapFilingIndex))

	usa, err := c.Registry().Market("USA")
	require.NoError(t, err)
	assert.Equal(t, identifier.SchemeCIK, usa.Scheme())
	assert.True(t, usa.Supports(provider.CapFeed))
}

func TestNewFromConfigRejects(t *testing.T) {
	cfg := config.Default()
	cfg.Statements.TTM = "bogus"
	_, err := NewFromConfig(cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Statements.SchemaFile = "testdata/does-not-exist.yaml"
	_, err = NewFromConfig(cfg)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.Dates.StartFloor = "not a date"
	_, err = NewFromConfig(cfg)
	assert.Error(t, err)
}
