package sec

import "encoding/json"

// --- company_tickers_exchange.json ---

// tickerExchangeFile is the column-oriented ticker directory:
//
//	{"fields":["cik","name","ticker","exchange"],"data":[[320193,"Apple Inc.","AAPL","Nasdaq"]]}
type tickerExchangeFile struct {
	Fields []string            `json:"fields"`
	Data   [][]json.RawMessage `json:"data"`
}
