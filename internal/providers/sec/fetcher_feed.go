package sec

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/seenimoa/findata/internal/provider"
	"github.com/seenimoa/findata/pkg/identifier"
	"github.com/seenimoa/findata/pkg/models"
)

// feedCount is how many entries EDGAR is asked for.
const feedCount = 40

var (
	accessionRe   = regexp.MustCompile(`accession-number=(\d{10}-\d{2}-\d{6})`)
	parentheticRe = regexp.MustCompile(`\s*\([^)]*\)`)
)

// FetchFilingFeed downloads the company's Atom filing feed from EDGAR's
// browse interface. An empty form returns every form type.
func (p *Provider) FetchFilingFeed(ctx context.Context, cik, form string) ([]models.CompanyFiling, error) {
	padded, err := identifier.PadCIKString(cik)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("action", "getcompany")
	q.Set("CIK", padded)
	q.Set("type", form)
	q.Set("dateb", "")
	q.Set("owner", "include")
	q.Set("count", fmt.Sprint(feedCount))
	q.Set("output", "atom")
	u := p.cfg.WWWURL + "/cgi-bin/browse-edgar?" + q.Encode()

	data, err := p.fetchSECRaw(ctx, provider.CacheKey("feed", padded, form), u)
	if err != nil {
		return nil, fmt.Errorf("sec filing feed %s: %w", padded, err)
	}

	// EDGAR rejects requests without its User-Agent, so the feed is fetched
	// through the provider and only parsed by gofeed.
	feed, err := p.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse sec filing feed %s: %w", padded, err)
	}
	return feedFilings(feed, padded), nil
}

func feedFilings(feed *gofeed.Feed, cik string) []models.CompanyFiling {
	company := strings.TrimSpace(parentheticRe.ReplaceAllString(feed.Title, ""))

	out := make([]models.CompanyFiling, 0, len(feed.Items))
	for _, item := range feed.Items {
		f := models.CompanyFiling{
			CIK:         cik,
			CompanyName: company,
			FilingURL:   item.Link,
		}

		title := strings.TrimSpace(item.Title)
		formPart, desc, found := strings.Cut(title, " - ")
		// Entry titles lead with the form type. The translated categories carry
		// the category label ("form type"), not its term.
		f.FormType = strings.TrimSpace(formPart)
		if f.FormType == "" {
			f.FormType = categoryTerm(item)
		}
		if found {
			f.Description = strings.TrimSpace(desc)
		}

		if m := accessionRe.FindStringSubmatch(item.GUID); m != nil {
			f.AccessionNo = m[1]
		}

		switch {
		case item.UpdatedParsed != nil:
			f.Date = *item.UpdatedParsed
		case item.PublishedParsed != nil:
			f.Date = *item.PublishedParsed
		}
		out = append(out, f)
	}
	return out
}

// categoryTerm returns the first category that is not the bare label.
func categoryTerm(item *gofeed.Item) string {
	for _, c := range item.Categories {
		if c = strings.TrimSpace(c); c != "" && !strings.EqualFold(c, "form type") {
			return c
		}
	}
	return ""
}
