package identifier

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeSymbol canonicalizes user-typed tickers: whitespace trimmed,
// uppercased, a leading "$" (common in chat) dropped.
func NormalizeSymbol(symbol string) string {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	return strings.TrimPrefix(symbol, "$")
}

// normalizeName folds a company name for comparison: lowercased with runs of
// whitespace collapsed.
func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// TitleName renders a company name uniformly ("APPLE INC." -> "Apple Inc.").
// A Caser is stateful, so one is built per call.
func TitleName(name string) string {
	return cases.Title(language.English).String(strings.ToLower(strings.TrimSpace(name)))
}

// isInteger reports whether s parses as a base-10 integer.
func isInteger(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}
