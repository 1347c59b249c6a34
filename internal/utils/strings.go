// Package utils holds small helpers shared by the chart modules.
package utils

import "strings"

// ParseCSV splits a comma-separated string and returns trimmed non-empty values.
// Returns nil for empty/whitespace-only input.
func ParseCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var result []string
	for _, v := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}

	return result
}

// ParseTickers parses a comma-separated ticker list (peer lists, watchlists).
// Tickers are upper-cased and de-duplicated, keeping first-seen order.
// Anything listed in exclude is dropped.
func ParseTickers(s string, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[strings.ToUpper(strings.TrimSpace(e))] = true
	}

	var out []string
	for _, v := range ParseCSV(s) {
		ticker := strings.ToUpper(v)
		if skip[ticker] {
			continue
		}
		skip[ticker] = true
		out = append(out, ticker)
	}
	return out
}
