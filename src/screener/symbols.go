package screener

import "strings"

// -----------------------------------------------------------------------------

// ParseSymbols splits a comma-separated symbol list, trims whitespace,
// upper-cases each entry and drops empties. Order is preserved.
func ParseSymbols(input string) []string {
	parts := strings.Split(input, ",")
	symbols := make([]string, 0, len(parts))

	for _, p := range parts {
		s := strings.ToUpper(strings.TrimSpace(p))
		if s == "" {
			continue
		}
		symbols = append(symbols, s)
	}

	return symbols
}
