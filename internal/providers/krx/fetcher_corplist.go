package krx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/findata/internal/infra"
	"github.com/seenimoa/findata/internal/provider"
	"github.com/seenimoa/findata/pkg/identifier"
)

// Corp list column headers.
const (
	colName   = "회사명"
	colMarket = "시장구분"
	colCode   = "종목코드"
)

// FetchDirectory downloads and parses the KIND corp list.
func (p *Provider) FetchDirectory(ctx context.Context) ([]identifier.Entry, error) {
	data, err := p.Fetch(ctx, provider.CacheKey("corplist"), func(ctx context.Context) ([]byte, error) {
		return infra.GetBytes(ctx, p.cfg.CorpListURL, nil)
	})
	if err != nil {
		return nil, fmt.Errorf("krx corp list: %w", err)
	}
	entries, err := ParseCorpList(data)
	if err != nil {
		return nil, err
	}
	p.Log().WithField("entries", len(entries)).Debug("directory loaded")
	return entries, nil
}

// ParseCorpList parses the corp list table, EUC-KR or UTF-8. Columns are
// located by header text, so their order does not matter.
func ParseCorpList(data []byte) ([]identifier.Entry, error) {
	utf, err := decodeEUCKR(data)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(utf))
	if err != nil {
		return nil, fmt.Errorf("parse krx corp list: %w", err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("parse krx corp list: no table found")
	}

	col := map[string]int{}
	table.Find("tr").First().Children().Each(func(i int, cell *goquery.Selection) {
		col[strings.TrimSpace(cell.Text())] = i
	})
	nameCol, okName := col[colName]
	codeCol, okCode := col[colCode]
	if !okName || !okCode {
		return nil, fmt.Errorf("parse krx corp list: missing %s or %s header", colName, colCode)
	}
	marketCol, okMarket := col[colMarket]

	var entries []identifier.Entry
	table.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Children()
		text := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}
		code := text(codeCol)
		name := text(nameCol)
		if code == "" || name == "" {
			return
		}
		e := identifier.Entry{
			Code:   padCode(code),
			Name:   name,
			Ticker: padCode(code),
		}
		if okMarket {
			e.Exchange = text(marketCol)
		}
		entries = append(entries, e)
	})
	return entries, nil
}
