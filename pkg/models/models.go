// Package models defines the data structures providers hand back to the
// stock façade and the CLI.
package models

import "time"

// OHLCV represents a single daily bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
	AdjClose  float64   `json:"adj_close,omitempty"`
}

// PriceSeries is the bar history of one symbol over [Start, End).
type PriceSeries struct {
	Symbol   string  `json:"symbol"`
	Currency string  `json:"currency,omitempty"`
	Start    int64   `json:"start"`
	End      int64   `json:"end"`
	Bars     []OHLCV `json:"bars"`
}

// Last returns the most recent bar.
func (s *PriceSeries) Last() (OHLCV, bool) {
	if s == nil || len(s.Bars) == 0 {
		return OHLCV{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// --- SEC Filings ---

// CompanyFiling represents a filing announced on an EDGAR feed.
type CompanyFiling struct {
	Date        time.Time `json:"date"`
	CIK         string    `json:"cik"`
	CompanyName string    `json:"company_name,omitempty"`
	FormType    string    `json:"form_type"` // "10-K", "10-Q", "8-K", etc.
	AccessionNo string    `json:"accession_no,omitempty"`
	FilingURL   string    `json:"filing_url,omitempty"`
	Description string    `json:"description,omitempty"`
}

// CIKMapping represents a mapping from ticker and name to a padded CIK.
type CIKMapping struct {
	CIK      string `json:"cik"`
	Symbol   string `json:"symbol,omitempty"`
	Name     string `json:"name"`
	Exchange string `json:"exchange,omitempty"`
}
