package model

import (
	"sort"
	"strings"
)

// DefaultExchangeSuffix is appended to tickers entered without an exchange
// qualifier. The monitor tracks ASX equities by default.
const DefaultExchangeSuffix = ".AX"

// NormalizeSymbol canonicalizes a user-entered ticker: trims whitespace,
// uppercases, and appends the default exchange suffix when no exchange
// marker is present. Returns "" for blank input.
func NormalizeSymbol(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if !strings.Contains(s, ".") {
		s += DefaultExchangeSuffix
	}
	return strings.Trim(s, ".")
}

// NormalizeSymbolSet normalizes, deduplicates, and sorts a list of tickers.
// Blank entries are dropped.
func NormalizeSymbolSet(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		s := NormalizeSymbol(r)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
