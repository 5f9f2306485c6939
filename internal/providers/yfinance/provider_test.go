package yfinance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/seenimoa/findata/internal/provider"
)

func newChartServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		switch r.URL.Path {
		case "/AAPL", "/005930.KS":
			if r.URL.Query().Get("interval") != "1d" {
				t.Errorf("interval: got %q", r.URL.Query().Get("interval"))
			}
			data, err := os.ReadFile("testdata/chart_aapl.json")
			if err != nil {
				t.Errorf("read chart fixture: %v", err)
				return
			}
			w.Write(data)
		case "/EMPTY":
			w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
		case "/BAD":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
		case "/ERR":
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Bad Request","description":"Invalid input"}}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProviderInfo(t *testing.T) {
	p := New(Config{})
	info := p.Info()
	if info.Name != "yfinance" {
		t.Errorf("expected name yfinance, got %s", info.Name)
	}
	if len(info.Capabilities) != 1 || info.Capabilities[0] != provider.CapPrices {
		t.Errorf("capabilities: got %v", info.Capabilities)
	}
	var _ provider.PriceSource = p
}

func TestFetchPriceSeries(t *testing.T) {
	var hits atomic.Int32
	srv := newChartServer(t, &hits)
	p := New(Config{ChartURL: srv.URL})

	bars, err := p.FetchPriceSeries(context.Background(), "AAPL", 1627963200, 1628654400)
	if err != nil {
		t.Fatalf("FetchPriceSeries error: %v", err)
	}
	// The last row has a null close and is dropped.
	if len(bars) != 5 {
		t.Fatalf("got %d bars, want 5", len(bars))
	}
	first := bars[0]
	if first.Close != 147.36 || first.Open != 145.81 || first.Volume != 64786600 || first.AdjClose != 146.42 {
		t.Errorf("first bar: %+v", first)
	}
	if first.Timestamp.Unix() != 1627997400 {
		t.Errorf("timestamp: got %d", first.Timestamp.Unix())
	}

	// Same range is served from cache.
	if _, err := p.FetchPriceSeries(context.Background(), "AAPL", 1627963200, 1628654400); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("server hit %d times, want 1", hits.Load())
	}
}

func TestFetchChartMeta(t *testing.T) {
	srv := newChartServer(t, nil)
	p := New(Config{ChartURL: srv.URL + "/"})

	series, err := p.FetchChart(context.Background(), "005930.KS", 1627963200, 1628654400)
	if err != nil {
		t.Fatalf("FetchChart error: %v", err)
	}
	if series.Currency != "USD" || series.Symbol != "005930.KS" {
		t.Errorf("series meta: %+v", series)
	}
	if last, ok := series.Last(); !ok || last.Close != 146.09 {
		t.Errorf("last bar: %+v", last)
	}
}

func TestFetchChartErrors(t *testing.T) {
	srv := newChartServer(t, nil)
	p := New(Config{ChartURL: srv.URL})
	ctx := context.Background()

	_, err := p.FetchChart(ctx, "EMPTY", 1, 2)
	var noData *ErrNoData
	if !errors.As(err, &noData) || noData.Symbol != "EMPTY" {
		t.Errorf("EMPTY: expected ErrNoData, got %v", err)
	}

	if _, err := p.FetchChart(ctx, "BAD", 1, 2); err == nil {
		t.Error("BAD: expected error")
	}

	_, err = p.FetchChart(ctx, "ERR", 1, 2)
	if err == nil || !strings.Contains(err.Error(), "Invalid input") {
		t.Errorf("ERR: got %v", err)
	}

	if _, err := p.FetchChart(ctx, "AAPL", 10, 10); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestParseCandlesEmpty(t *testing.T) {
	bars := parseCandles(yfChartResult{Timestamp: []int64{1, 2}})
	if bars == nil || len(bars) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", bars)
	}
}

func TestChartURL(t *testing.T) {
	p := New(Config{ChartURL: "https://example.test/chart"})
	got := p.chartURL("BRK-B", 100, 200)
	if !strings.HasPrefix(got, "https://example.test/chart/BRK-B?") {
		t.Errorf("chartURL prefix: %s", got)
	}
	for _, part := range []string{"period1=100", "period2=200", "interval=1d"} {
		if !strings.Contains(got, part) {
			t.Errorf("chartURL %s missing %s", got, part)
		}
	}
}
