// Package strings holds small list helpers for configuration values.
package strings

import (
	"strings"
)

// DedupeAndTrim removes duplicates and blank entries, trimming whitespace from
// each element. Order of first occurrence is preserved.
//
//	DedupeAndTrim([]string{" 8", "2", "8", ""}) // []string{"8", "2"}
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
