package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns s case-folded for caseless comparison.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	return cases.Fold().String(s)
}

// SplitList splits a comma-separated cell into trimmed, non-empty entries,
// preserving order.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// Ternary returns a when cond holds, else b.
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
