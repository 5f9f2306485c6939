package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestPriceSeriesLast(t *testing.T) {
	var nilSeries *PriceSeries
	if _, ok := nilSeries.Last(); ok {
		t.Error("nil series should have no last bar")
	}
	s := &PriceSeries{Symbol: "AAPL"}
	if _, ok := s.Last(); ok {
		t.Error("empty series should have no last bar")
	}
	s.Bars = []OHLCV{
		{Timestamp: time.Date(2021, 8, 3, 0, 0, 0, 0, time.UTC), Close: 147.36},
		{Timestamp: time.Date(2021, 8, 4, 0, 0, 0, 0, time.UTC), Close: 146.95},
	}
	last, ok := s.Last()
	if !ok || last.Close != 146.95 {
		t.Errorf("Last: got %+v, %v", last, ok)
	}
}

func TestOHLCVOmitsZeroAdjClose(t *testing.T) {
	data, err := json.Marshal(OHLCV{Close: 1})
	if err != nil {
		t.Fatalf("json.Marshal error: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["adj_close"]; ok {
		t.Error("adj_close should be omitted when zero")
	}
	if m["close"] != 1.0 {
		t.Errorf("close: got %v", m["close"])
	}
}
