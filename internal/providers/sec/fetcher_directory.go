package sec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/seenimoa/findata/internal/provider"
	"github.com/seenimoa/findata/pkg/identifier"
)

// FetchDirectory downloads the ticker directory. Entry codes are unpadded
// CIKs and names are title-cased.
func (p *Provider) FetchDirectory(ctx context.Context) ([]identifier.Entry, error) {
	url := p.cfg.WWWURL + "/files/company_tickers_exchange.json"
	data, err := p.fetchSECRaw(ctx, provider.CacheKey("directory"), url)
	if err != nil {
		return nil, fmt.Errorf("sec directory: %w", err)
	}
	entries, err := parseDirectory(data)
	if err != nil {
		return nil, err
	}
	p.Log().WithField("entries", len(entries)).Debug("directory loaded")
	return entries, nil
}

func parseDirectory(data []byte) ([]identifier.Entry, error) {
	var file tickerExchangeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sec directory: %w", err)
	}

	col := map[string]int{}
	for i, f := range file.Fields {
		col[strings.ToLower(f)] = i
	}
	cikCol, ok := col["cik"]
	if !ok {
		return nil, fmt.Errorf("parse sec directory: no cik field in %v", file.Fields)
	}

	field := func(row []json.RawMessage, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return rawString(row[i])
	}

	entries := make([]identifier.Entry, 0, len(file.Data))
	for _, row := range file.Data {
		if cikCol >= len(row) {
			continue
		}
		code := rawString(row[cikCol])
		if code == "" {
			continue
		}
		entries = append(entries, identifier.Entry{
			Code:     code,
			Name:     identifier.TitleName(field(row, "name")),
			Ticker:   field(row, "ticker"),
			Exchange: field(row, "exchange"),
		})
	}
	return entries, nil
}

// rawString renders a JSON scalar as text: strings unquoted, integers without
// exponent, null as "".
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	if n, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	if f, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return string(raw)
}
