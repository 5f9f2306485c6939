// Package statement extracts financial facts from filing payloads and maps
// them onto fixed-schema income statements, balance sheets and cash flow
// statements.
package statement

import (
	"fmt"
	"strings"
)

// Kind is one of the three primary financial statements.
type Kind int

const (
	IncomeStatement Kind = iota
	BalanceSheet
	CashFlow
)

// Kinds lists every statement kind in presentation order.
func Kinds() []Kind { return []Kind{IncomeStatement, BalanceSheet, CashFlow} }

func (k Kind) String() string {
	switch k {
	case IncomeStatement:
		return "income_statement"
	case BalanceSheet:
		return "balance_sheet"
	case CashFlow:
		return "cash_flow"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Title is the human-readable statement name.
func (k Kind) Title() string {
	switch k {
	case IncomeStatement:
		return "Income Statement"
	case BalanceSheet:
		return "Balance Sheet"
	case CashFlow:
		return "Cash Flow"
	}
	return k.String()
}

// Instant reports whether the statement holds point-in-time balances rather
// than flows over a period.
func (k Kind) Instant() bool {
	switch k {
	case BalanceSheet:
		return true
	case IncomeStatement, CashFlow:
		return false
	}
	return false
}

// ParseKind accepts the snake_case names plus a few common short forms.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "income_statement", "income", "is":
		return IncomeStatement, nil
	case "balance_sheet", "balance", "bs":
		return BalanceSheet, nil
	case "cash_flow", "cashflow", "cf":
		return CashFlow, nil
	}
	return 0, fmt.Errorf("unknown statement kind %q (want income_statement, balance_sheet or cash_flow)", s)
}

// Period is the reporting periodicity of a statement.
type Period int

const (
	Annual Period = iota
	Quarter
)

func (p Period) String() string {
	switch p {
	case Annual:
		return "annual"
	case Quarter:
		return "quarter"
	}
	return fmt.Sprintf("Period(%d)", int(p))
}

// ParsePeriod accepts "annual" or "quarter" (and "quarterly").
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "annual", "yearly", "a":
		return Annual, nil
	case "quarter", "quarterly", "q":
		return Quarter, nil
	}
	return 0, fmt.Errorf("unknown period %q (want annual or quarter)", s)
}

// MarshalText renders the snake_case name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText parses via ParseKind.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// MarshalText renders "annual" or "quarter".
func (p Period) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText parses via ParsePeriod.
func (p *Period) UnmarshalText(b []byte) error {
	v, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
