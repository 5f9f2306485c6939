package sec

import (
	"context"
	"fmt"

	"github.com/seenimoa/findata/internal/provider"
	"github.com/seenimoa/findata/pkg/identifier"
)

// FetchFilingIndex downloads the submissions index for cik.
func (p *Provider) FetchFilingIndex(ctx context.Context, cik string) ([]byte, error) {
	padded, err := identifier.PadCIKString(cik)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/submissions/CIK%s.json", p.cfg.DataURL, padded)
	data, err := p.fetchSECRaw(ctx, provider.CacheKey("submissions", padded), url)
	if err != nil {
		return nil, fmt.Errorf("sec filing index %s: %w", padded, err)
	}
	return data, nil
}

// FetchCompanyFacts downloads the XBRL company-facts payload for cik.
func (p *Provider) FetchCompanyFacts(ctx context.Context, cik string) ([]byte, error) {
	padded, err := identifier.PadCIKString(cik)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", p.cfg.DataURL, padded)
	data, err := p.fetchSECRaw(ctx, provider.CacheKey("companyfacts", padded), url)
	if err != nil {
		return nil, fmt.Errorf("sec company facts %s: %w", padded, err)
	}
	return data, nil
}

// FetchDocument downloads a filing document such as FilingSummary.xml or an
// R-file. Archived documents never change, so they are cached by URL.
func (p *Provider) FetchDocument(ctx context.Context, url string) ([]byte, error) {
	data, err := p.fetchSECRaw(ctx, provider.CacheKey("document", url), url)
	if err != nil {
		return nil, fmt.Errorf("sec document: %w", err)
	}
	return data, nil
}
