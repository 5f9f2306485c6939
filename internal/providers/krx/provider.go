// Package krx implements the Korea Exchange company directory provider. The
// KIND disclosure site publishes every listed company, with its six-digit
// company code, as an EUC-KR encoded HTML table.
package krx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/seenimoa/findata/internal/infra"
	"github.com/seenimoa/findata/internal/provider"
)

const providerName = "krx"

// CodeWidth is the fixed width of a KRX company code.
const CodeWidth = 6

// Config holds the corp list endpoint.
type Config struct {
	CorpListURL string
	CacheTTL    time.Duration
}

// DefaultConfig returns the public KIND download endpoint.
func DefaultConfig() Config {
	return Config{
		CorpListURL: "https://kind.krx.co.kr/corpgeneral/corpList.do?method=download&searchType=13",
		CacheTTL:    24 * time.Hour,
	}
}

// Provider implements identifier.Loader for the Korea Exchange.
type Provider struct {
	provider.Base
	cfg Config
}

// New creates a KRX provider. Zero fields in cfg take DefaultConfig values.
func New(cfg Config) *Provider {
	def := DefaultConfig()
	if cfg.CorpListURL == "" {
		cfg.CorpListURL = def.CorpListURL
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	return &Provider{
		Base: provider.NewBaseWithOpts(
			provider.ProviderInfo{
				Name:         providerName,
				Description:  "Korea Exchange KIND - listed company directory",
				Website:      "https://kind.krx.co.kr",
				Capabilities: []provider.Capability{provider.CapDirectory},
			},
			cfg.CacheTTL, 2, time.Second,
		),
		cfg: cfg,
	}
}

// Ping checks connectivity to KIND.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, p.cfg.CorpListURL, nil)
	if err != nil {
		return fmt.Errorf("krx ping: %w", err)
	}
	body.Close()
	return nil
}

// decodeEUCKR converts the corp list to UTF-8. Input that is already valid
// UTF-8 (ASCII-only lists, mirrors that re-encode) passes through.
func decodeEUCKR(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), korean.EUCKR.NewDecoder()))
	if err != nil {
		return nil, fmt.Errorf("decode euc-kr: %w", err)
	}
	return out, nil
}

// padCode left-pads a numeric company code to CodeWidth digits. Spreadsheet
// exports drop the leading zeros ("5930" is Samsung's 005930).
func padCode(code string) string {
	code = strings.TrimSpace(code)
	if len(code) >= CodeWidth {
		return code
	}
	return strings.Repeat("0", CodeWidth-len(code)) + code
}
