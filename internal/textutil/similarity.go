package textutil

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Similarity scores two strings in [0,1], ignoring case.
// Two empty strings score 1; a single empty string scores 0.
func Similarity(a, b string) float64 {
	fa, fb := Fold(a), Fold(b)
	switch {
	case fa == "" && fb == "":
		return 1
	case fa == "" || fb == "":
		return 0
	case fa == fb:
		return 1
	}
	matcher := difflib.NewMatcher(runeSequence(fa), runeSequence(fb))
	return matcher.Ratio()
}

// runeSequence splits s into one element per rune so the matcher compares
// characters rather than lines.
func runeSequence(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
