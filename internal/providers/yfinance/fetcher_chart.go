package yfinance

import (
	"context"
	"fmt"
	"time"

	"github.com/seenimoa/findata/internal/provider"
	"github.com/seenimoa/findata/pkg/models"
)

// ErrNoData is returned when the chart API answers without a result.
type ErrNoData struct {
	Symbol string
}

func (e *ErrNoData) Error() string {
	return fmt.Sprintf("no price data for %s", e.Symbol)
}

// FetchPriceSeries returns daily bars for symbol in [start, end).
func (p *Provider) FetchPriceSeries(ctx context.Context, symbol string, start, end int64) ([]models.OHLCV, error) {
	series, err := p.FetchChart(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	return series.Bars, nil
}

// FetchChart returns the price series with its metadata.
func (p *Provider) FetchChart(ctx context.Context, symbol string, start, end int64) (*models.PriceSeries, error) {
	if end <= start {
		return nil, fmt.Errorf("yfinance chart %s: end %d is not after start %d", symbol, end, start)
	}
	key := provider.CacheKey("chart", symbol, fmt.Sprint(start), fmt.Sprint(end))

	var resp yfChartResponse
	if err := p.fetchJSON(ctx, key, p.chartURL(symbol, start, end), &resp); err != nil {
		return nil, fmt.Errorf("yfinance chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, &ErrNoData{Symbol: symbol}
	}

	result := resp.Chart.Result[0]
	return &models.PriceSeries{
		Symbol:   symbol,
		Currency: result.Meta.Currency,
		Start:    start,
		End:      end,
		Bars:     parseCandles(result),
	}, nil
}

// --- Helpers ---

// parseCandles converts YF chart data to OHLCV slices. Rows without a close
// (trading halts, the still-open session) are dropped.
func parseCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return []models.OHLCV{}
	}

	q := result.Indicators.Quote[0]
	var adjCloses []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adjCloses = result.Indicators.AdjClose[0].AdjClose
	}

	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		if i < len(adjCloses) && adjCloses[i] != nil {
			c.AdjClose = *adjCloses[i]
		}
		candles = append(candles, c)
	}
	return candles
}
