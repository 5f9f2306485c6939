package identifier

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCountryCode(t *testing.T) {
	tests := []struct {
		in   string
		want CountryCode
	}{
		{"USA", "USA"},
		{"usa", "USA"},
		{"  usa  ", "USA"},
		{"USA2021", "USA"},
		{"2021kor", "KOR"},
		{"country: jpn.", "JPN"},
		{"Kor", "KOR"},
	}
	for _, tt := range tests {
		got, err := ResolveCountryCode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestResolveCountryCodeRejects(t *testing.T) {
	for _, in := range []string{"", "12", "US", "USAA", "  ", "U-S-A", "united states"} {
		_, err := ResolveCountryCode(in)
		var ccErr *CountryCodeValidationError
		require.Error(t, err, in)
		assert.True(t, errors.As(err, &ccErr), "input %q: got %T", in, err)
		assert.Contains(t, err.Error(), "alpha-3")
	}
}

func TestPadCIK(t *testing.T) {
	got, err := PadCIK(320193)
	require.NoError(t, err)
	assert.Equal(t, "0000320193", got)

	for _, id := range []int64{0, 1, 9, 10, 320193, 1018724, 999999999, MaxCIK} {
		s, err := PadCIK(id)
		require.NoError(t, err)
		assert.Len(t, s, CIKWidth)
		back, err := strconv.ParseInt(s, 10, 64)
		require.NoError(t, err)
		assert.Equal(t, id, back)
	}

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		id := r.Int63n(MaxCIK + 1)
		s, err := PadCIK(id)
		require.NoError(t, err)
		assert.Len(t, s, CIKWidth)
	}

	_, err = PadCIK(-1)
	assert.Error(t, err)
	_, err = PadCIK(MaxCIK + 1)
	assert.Error(t, err)
}

func TestPadCIKString(t *testing.T) {
	got, err := PadCIKString(" 320193 ")
	require.NoError(t, err)
	assert.Equal(t, "0000320193", got)

	got, err = PadCIKString("0000320193")
	require.NoError(t, err)
	assert.Equal(t, "0000320193", got)

	_, err = PadCIKString("AAPL")
	assert.Error(t, err)
}

func TestNormalizeSymbolAndTitleName(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol("  $aapl "))
	assert.Equal(t, "BRK-B", NormalizeSymbol("brk-b"))
	assert.Equal(t, "Apple Inc.", TitleName("APPLE INC."))
	assert.Equal(t, "Microsoft Corp", TitleName("microsoft corp"))
}

var secEntries = []Entry{
	{Code: "320193", Name: "Apple Inc.", Ticker: "AAPL", Exchange: "Nasdaq"},
	{Code: "789019", Name: "Microsoft Corp", Ticker: "MSFT", Exchange: "Nasdaq"},
	{Code: "1018724", Name: "Amazon Com Inc", Ticker: "AMZN", Exchange: "Nasdaq"},
}

func TestResolveCIK(t *testing.T) {
	r := NewResolver(SchemeCIK, nil)
	r.Load(secEntries)

	id, err := r.Resolve(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, MarketIdentifier{Scheme: SchemeCIK, Value: "0000320193"}, id)

	id, err = r.Resolve(context.Background(), "amzn")
	require.NoError(t, err)
	assert.Equal(t, "0001018724", id.Value)

	_, err = r.Resolve(context.Background(), "ZZZZ")
	var nf *IdentifierNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "ZZZZ", nf.Symbol)
}

func TestResolveExchangeCodePassesThrough(t *testing.T) {
	r := NewResolver(SchemeExchangeCode, nil)
	id, err := r.Resolve(context.Background(), " tsla ")
	require.NoError(t, err)
	assert.Equal(t, MarketIdentifier{Scheme: SchemeExchangeCode, Value: "TSLA"}, id)
}

var krxEntries = []Entry{
	{Code: "005930", Name: "삼성전자"},
	{Code: "005935", Name: "삼성전자우"},
	{Code: "000660", Name: "SK하이닉스"},
	{Code: "035420", Name: "NAVER"},
}

func TestResolveCompanyCode(t *testing.T) {
	calls := int32(0)
	loader := LoaderFunc(func(ctx context.Context) ([]Entry, error) {
		atomic.AddInt32(&calls, 1)
		return krxEntries, nil
	})
	r := NewResolver(SchemeCompanyCode, loader)
	ctx := context.Background()

	// Integer symbols are codes already and never touch the directory.
	id, err := r.Resolve(ctx, "005930")
	require.NoError(t, err)
	assert.Equal(t, "005930", id.Value)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	id, err = r.Resolve(ctx, "삼성전자")
	require.NoError(t, err)
	assert.Equal(t, "005930", id.Value)

	id, err = r.Resolve(ctx, "naver")
	require.NoError(t, err)
	assert.Equal(t, "035420", id.Value)

	id, err = r.Resolve(ctx, "하이닉스")
	require.NoError(t, err)
	assert.Equal(t, "000660", id.Value)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	_, err = r.Resolve(ctx, "카카오")
	var cnf *CodeNotFoundError
	require.True(t, errors.As(err, &cnf))
	assert.Equal(t, 0, cnf.Candidates)
}

func TestResolveCompanyCodeAmbiguous(t *testing.T) {
	r := NewResolver(SchemeCompanyCode, nil)
	r.Load([]Entry{
		{Code: "1", Name: "Hanwha Aerospace"},
		{Code: "2", Name: "Hanwha Solutions"},
	})
	_, err := r.Resolve(context.Background(), "hanwha")
	var cnf *CodeNotFoundError
	require.True(t, errors.As(err, &cnf))
	assert.Equal(t, 2, cnf.Candidates)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestResolverWithoutLoader(t *testing.T) {
	r := NewResolver(SchemeCIK, nil)
	_, err := r.Resolve(context.Background(), "AAPL")
	assert.ErrorIs(t, err, ErrNoLoader)
}

func TestDirectoryLoadedOnceUnderConcurrency(t *testing.T) {
	calls := int32(0)
	r := NewResolver(SchemeCIK, LoaderFunc(func(ctx context.Context) ([]Entry, error) {
		atomic.AddInt32(&calls, 1)
		return secEntries, nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := r.Resolve(context.Background(), "MSFT")
			assert.NoError(t, err)
			assert.Equal(t, "0000789019", id.Value)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRefreshSwapsSnapshot(t *testing.T) {
	fail := false
	version := 0
	r := NewResolver(SchemeCIK, LoaderFunc(func(ctx context.Context) ([]Entry, error) {
		if fail {
			return nil, errors.New("upstream down")
		}
		version++
		if version == 1 {
			return secEntries[:1], nil
		}
		return secEntries, nil
	}))
	ctx := context.Background()

	first, err := r.Directory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())

	_, err = r.Resolve(ctx, "MSFT")
	require.Error(t, err)

	second, err := r.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Len())
	// The old snapshot is untouched.
	assert.Equal(t, 1, first.Len())

	id, err := r.Resolve(ctx, "MSFT")
	require.NoError(t, err)
	assert.Equal(t, "0000789019", id.Value)

	fail = true
	_, err = r.Refresh(ctx)
	require.Error(t, err)
	cur, err := r.Directory(ctx)
	require.NoError(t, err)
	assert.Same(t, second, cur)
}

func TestDirectoryFilterAndEntries(t *testing.T) {
	d := NewDirectory(secEntries)
	assert.Len(t, d.Filter("", 0), 3)
	assert.Len(t, d.Filter("", 2), 2)

	hits := d.Filter("micro", 0)
	require.Len(t, hits, 1)
	assert.Equal(t, "MSFT", hits[0].Ticker)

	hits = d.Filter("320193", 0)
	require.Len(t, hits, 1)
	assert.Equal(t, "AAPL", hits[0].Ticker)

	all := d.Entries()
	all[0].Ticker = "MUTATED"
	e, ok := d.LookupTicker("AAPL")
	require.True(t, ok)
	assert.Equal(t, "AAPL", e.Ticker)
}

func TestLookup(t *testing.T) {
	r := NewResolver(SchemeCIK, nil)
	r.Load(secEntries)

	e, err := r.Lookup(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc.", e.Name)

	_, err = r.Lookup(context.Background(), "NOPE")
	assert.Error(t, err)
}
