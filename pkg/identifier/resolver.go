package identifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Loader fetches a market's full directory. Implementations live with the
// market providers; the resolver itself never performs I/O.
type Loader interface {
	FetchDirectory(ctx context.Context) ([]Entry, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) ([]Entry, error)

// FetchDirectory calls f.
func (f LoaderFunc) FetchDirectory(ctx context.Context) ([]Entry, error) { return f(ctx) }

// ErrNoLoader is returned when a directory is needed but the resolver has
// neither a snapshot nor a loader.
var ErrNoLoader = errors.New("identifier: no directory loaded and no loader configured")

// Resolver maps symbols to MarketIdentifiers for one market. The directory
// snapshot is read through an atomic pointer and replaced wholesale on
// refresh, so concurrent readers always see a complete table.
type Resolver struct {
	scheme Scheme
	loader Loader

	snap  atomic.Pointer[Directory]
	group singleflight.Group
}

// NewResolver creates a resolver for a market using scheme. loader may be nil
// for SchemeExchangeCode markets, or when the caller installs tables via Load.
func NewResolver(scheme Scheme, loader Loader) *Resolver {
	return &Resolver{scheme: scheme, loader: loader}
}

// Scheme returns the market's identifier scheme.
func (r *Resolver) Scheme() Scheme { return r.scheme }

// Load installs entries as the current snapshot.
func (r *Resolver) Load(entries []Entry) *Directory {
	d := NewDirectory(entries)
	r.snap.Store(d)
	return d
}

// Directory returns the current snapshot, loading it on first use.
// Concurrent first callers share a single load.
func (r *Resolver) Directory(ctx context.Context) (*Directory, error) {
	if d := r.snap.Load(); d != nil {
		return d, nil
	}
	return r.fetch(ctx, false)
}

// Refresh fetches a new snapshot and swaps it in. On failure the previous
// snapshot stays in place.
func (r *Resolver) Refresh(ctx context.Context) (*Directory, error) {
	return r.fetch(ctx, true)
}

func (r *Resolver) fetch(ctx context.Context, force bool) (*Directory, error) {
	if r.loader == nil {
		return nil, ErrNoLoader
	}
	key := "load"
	if force {
		key = "refresh"
	}
	v, err, _ := r.group.Do(key, func() (any, error) {
		if !force {
			if d := r.snap.Load(); d != nil {
				return d, nil
			}
		}
		entries, err := r.loader.FetchDirectory(ctx)
		if err != nil {
			return nil, fmt.Errorf("load directory: %w", err)
		}
		return r.Load(entries), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Directory), nil
}

// Resolve maps symbol to the identifier the market expects.
//
//   - SchemeExchangeCode: the normalized symbol, unchanged.
//   - SchemeCompanyCode: an integer symbol is already a code; anything else
//     is searched by company name.
//   - SchemeCIK: the symbol is a ticker looked up in the CIK table and the
//     result is zero-padded to 10 digits.
func (r *Resolver) Resolve(ctx context.Context, symbol string) (MarketIdentifier, error) {
	switch r.scheme {
	case SchemeExchangeCode:
		return MarketIdentifier{Scheme: SchemeExchangeCode, Value: NormalizeSymbol(symbol)}, nil

	case SchemeCompanyCode:
		if isInteger(symbol) {
			return MarketIdentifier{Scheme: SchemeCompanyCode, Value: strings.TrimSpace(symbol)}, nil
		}
		d, err := r.Directory(ctx)
		if err != nil {
			return MarketIdentifier{}, err
		}
		e, n, ok := d.SearchName(symbol)
		if !ok {
			return MarketIdentifier{}, &CodeNotFoundError{Query: symbol, Candidates: n}
		}
		return MarketIdentifier{Scheme: SchemeCompanyCode, Value: e.Code}, nil

	case SchemeCIK:
		d, err := r.Directory(ctx)
		if err != nil {
			return MarketIdentifier{}, err
		}
		e, ok := d.LookupTicker(symbol)
		if !ok {
			return MarketIdentifier{}, &IdentifierNotFoundError{Symbol: symbol}
		}
		cik, err := PadCIKString(e.Code)
		if err != nil {
			return MarketIdentifier{}, fmt.Errorf("ticker %s: %w", e.Ticker, err)
		}
		return MarketIdentifier{Scheme: SchemeCIK, Value: cik}, nil
	}
	return MarketIdentifier{}, fmt.Errorf("identifier: unsupported scheme %s", r.scheme)
}

// Lookup returns the directory entry behind a ticker, loading the directory
// if needed.
func (r *Resolver) Lookup(ctx context.Context, ticker string) (Entry, error) {
	d, err := r.Directory(ctx)
	if err != nil {
		return Entry{}, err
	}
	e, ok := d.LookupTicker(ticker)
	if !ok {
		return Entry{}, &IdentifierNotFoundError{Symbol: ticker}
	}
	return e, nil
}
