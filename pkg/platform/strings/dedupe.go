// Package strings provides string slice utilities shared by the query parsers.
package strings

import "strings"

// DedupeAndTrim trims whitespace, drops empty strings, and removes duplicates
// while preserving order. Query parameters arrive as comma-separated lists, so
// "title, title,," collapses to just "title".
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
