package filings

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/seenimoa/findata/pkg/identifier"
)

// submissions mirrors data.sec.gov/submissions/CIK##########.json. Recent
// filings come as parallel arrays indexed together.
type submissions struct {
	CIK     string `json:"cik"`
	Name    string `json:"name"`
	Filings struct {
		Recent struct {
			AccessionNumber       []string `json:"accessionNumber"`
			FilingDate            []string `json:"filingDate"`
			ReportDate            []string `json:"reportDate"`
			Form                  []string `json:"form"`
			PrimaryDocument       []string `json:"primaryDocument"`
			PrimaryDocDescription []string `json:"primaryDocDescription"`
		} `json:"recent"`
	} `json:"filings"`
}

// ParseSubmissions decodes a submissions index into filing records, most
// recent first. Rows without an accession number are skipped.
func ParseSubmissions(data []byte) ([]FilingRecord, error) {
	var s submissions
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode submissions: %w", err)
	}
	cik, err := identifier.PadCIKString(s.CIK)
	if err != nil {
		return nil, fmt.Errorf("submissions: %w", err)
	}

	recent := s.Filings.Recent
	at := func(col []string, i int) string {
		if i < len(col) {
			return col[i]
		}
		return ""
	}

	records := make([]FilingRecord, 0, len(recent.AccessionNumber))
	for i, accn := range recent.AccessionNumber {
		if accn == "" {
			continue
		}
		records = append(records, FilingRecord{
			CIK:             cik,
			Form:            at(recent.Form, i),
			AccessionNumber: accn,
			FilingDate:      at(recent.FilingDate, i),
			ReportDate:      at(recent.ReportDate, i),
			PrimaryDocument: at(recent.PrimaryDocument, i),
			Description:     at(recent.PrimaryDocDescription, i),
			BaseURL:         ArchiveURL(cik, accn),
		})
	}

	// ISO dates sort lexically; ties fall back to accession number.
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].FilingDate != records[j].FilingDate {
			return records[i].FilingDate > records[j].FilingDate
		}
		return records[i].AccessionNumber > records[j].AccessionNumber
	})
	return records, nil
}

// ListFilings fetches and parses the submissions index for cik.
func ListFilings(ctx context.Context, src IndexSource, cik string) ([]FilingRecord, error) {
	padded, err := identifier.PadCIKString(cik)
	if err != nil {
		return nil, err
	}
	data, err := src.FetchFilingIndex(ctx, padded)
	if err != nil {
		return nil, fmt.Errorf("fetch filing index for %s: %w", padded, err)
	}
	return ParseSubmissions(data)
}

// Select keeps the records whose form equals form (case-insensitive),
// preserving order.
func Select(records []FilingRecord, form string) ([]FilingRecord, error) {
	want := strings.ToUpper(strings.TrimSpace(form))
	var out []FilingRecord
	for _, r := range records {
		if strings.ToUpper(r.Form) == want {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		cik := ""
		if len(records) > 0 {
			cik = records[0].CIK
		}
		return nil, &FilingNotFoundError{CIK: cik, Form: want}
	}
	return out, nil
}
