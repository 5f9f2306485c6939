package stock

import (
	"context"

	"github.com/seenimoa/findata/internal/logger"
	"github.com/seenimoa/findata/internal/provider"
	"github.com/seenimoa/findata/pkg/identifier"
	"github.com/seenimoa/findata/pkg/models"
)

// Directory lists a market's companies whose ticker or name contains query,
// at most limit of them (0 means all). CIK markets render padded CIKs.
func (c *Client) Directory(ctx context.Context, country, query string, limit int) ([]models.CIKMapping, error) {
	m, err := c.registry.Market(country)
	if err != nil {
		return nil, err
	}
	if err := m.Require(provider.CapDirectory); err != nil {
		return nil, err
	}
	d, err := m.Resolver.Directory(ctx)
	if err != nil {
		return nil, err
	}

	entries := d.Filter(query, limit)
	out := make([]models.CIKMapping, 0, len(entries))
	for _, e := range entries {
		code := e.Code
		if m.Scheme() == identifier.SchemeCIK {
			if padded, err := identifier.PadCIKString(code); err == nil {
				code = padded
			}
		}
		out = append(out, models.CIKMapping{
			CIK:      code,
			Symbol:   e.Ticker,
			Name:     e.Name,
			Exchange: e.Exchange,
		})
	}
	return out, nil
}

// Refresh reloads a market's directory snapshot.
func (c *Client) Refresh(ctx context.Context, country string) (int, error) {
	m, err := c.registry.Market(country)
	if err != nil {
		return 0, err
	}
	d, err := m.Resolver.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	c.log.WithFields(logger.Fields{"country": m.Country, "entries": d.Len()}).Info("directory refreshed")
	return d.Len(), nil
}

// Status pings every provider in the registry.
func (c *Client) Status(ctx context.Context) []provider.PingResult {
	return c.registry.PingAll(ctx)
}
