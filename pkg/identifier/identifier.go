// Package identifier resolves human-facing symbols to the identifiers a
// market or filing system expects: exchange tickers, numeric company codes,
// or 10-digit SEC CIKs.
package identifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Scheme says how a market identifies a listed company.
type Scheme int

const (
	// SchemeExchangeCode markets query by ticker as typed.
	SchemeExchangeCode Scheme = iota
	// SchemeCompanyCode markets need a numeric company code; names are
	// translated through the market directory.
	SchemeCompanyCode
	// SchemeCIK filing systems need a zero-padded 10-digit CIK.
	SchemeCIK
)

func (s Scheme) String() string {
	switch s {
	case SchemeExchangeCode:
		return "exchange_code"
	case SchemeCompanyCode:
		return "company_code"
	case SchemeCIK:
		return "cik"
	}
	return fmt.Sprintf("Scheme(%d)", int(s))
}

// MarketIdentifier is a resolved identifier together with its scheme.
type MarketIdentifier struct {
	Scheme Scheme `json:"scheme"`
	Value  string `json:"value"`
}

func (m MarketIdentifier) String() string { return m.Value }

// CIKWidth is the fixed width of a rendered CIK.
const CIKWidth = 10

// MaxCIK is the largest id that fits in CIKWidth digits.
const MaxCIK int64 = 9999999999

// PadCIK renders a numeric CIK as a 10-digit zero-padded string. Upstream
// sources drop the leading zeros.
func PadCIK(id int64) (string, error) {
	if id < 0 || id > MaxCIK {
		return "", fmt.Errorf("cik %d out of range [0, %d]", id, MaxCIK)
	}
	return fmt.Sprintf("%0*d", CIKWidth, id), nil
}

// PadCIKString pads a numeric CIK given as text, e.g. "320193".
func PadCIKString(s string) (string, error) {
	s = strings.TrimSpace(s)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return "", fmt.Errorf("cik %q is not numeric", s)
	}
	return PadCIK(id)
}

// --- Country codes ---

// CountryCode is an ISO 3166 alpha-3 code, always three uppercase letters.
type CountryCode string

// Common markets.
const (
	USA CountryCode = "USA"
	KOR CountryCode = "KOR"
)

// alpha3 matches a run of exactly three letters that is not part of a longer
// run of letters. Digits and punctuation around it are fine ("USA2021").
var alpha3 = regexp.MustCompile(`(?:^|[^A-Za-z])([A-Za-z]{3})(?:[^A-Za-z]|$)`)

// CountryCodeValidationError is returned when no alpha-3 token is present.
type CountryCodeValidationError struct {
	Input string
}

func (e *CountryCodeValidationError) Error() string {
	return fmt.Sprintf("country code should be in alpha-3 code (ISO 3166) e.g. USA, got %q", e.Input)
}

// ResolveCountryCode extracts the first alpha-3 token from raw and uppercases
// it.
func ResolveCountryCode(raw string) (CountryCode, error) {
	m := alpha3.FindStringSubmatch(raw)
	if m == nil {
		return "", &CountryCodeValidationError{Input: raw}
	}
	return CountryCode(strings.ToUpper(m[1])), nil
}

// --- Resolution errors ---

// IdentifierNotFoundError is returned when a ticker is absent from a
// CIK mapping table.
type IdentifierNotFoundError struct {
	Symbol string
}

func (e *IdentifierNotFoundError) Error() string {
	return fmt.Sprintf("no CIK found for ticker %q", e.Symbol)
}

// CodeNotFoundError is returned when a company-name search has no unique
// match in a company-code directory.
type CodeNotFoundError struct {
	Query      string
	Candidates int
}

func (e *CodeNotFoundError) Error() string {
	if e.Candidates > 1 {
		return fmt.Sprintf("company name %q is ambiguous: %d directory entries match", e.Query, e.Candidates)
	}
	return fmt.Sprintf("no company code found for %q", e.Query)
}
