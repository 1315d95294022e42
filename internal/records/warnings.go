package records

import (
	"fmt"
	"sort"
	"strings"
)

// Warnings counts per-field defects found while normalizing a batch.
type Warnings struct {
	UntitledRows        int `json:"untitled_rows"`
	MissingDescription  int `json:"missing_description"`
	MissingPrompt       int `json:"missing_prompt"`
	DefaultedDifficulty int `json:"defaulted_difficulty"`
	DefaultedRoles      int `json:"defaulted_roles"`
	DefaultedCategory   int `json:"defaulted_category"`
	DefaultedAuthor     int `json:"defaulted_author"`
	MalformedCounts     int `json:"malformed_counts"`
	MalformedVerified   int `json:"malformed_verified"`
}

// Total returns the sum of all counters.
func (w Warnings) Total() int {
	total := 0
	for _, n := range w.counts() {
		total += n
	}
	return total
}

// Empty reports whether nothing was defaulted.
func (w Warnings) Empty() bool { return w.Total() == 0 }

// Summary renders the non-zero counters as "kind=n" pairs in a stable order.
func (w Warnings) Summary() string {
	counts := w.counts()
	keys := make([]string, 0, len(counts))
	for k, n := range counts {
		if n > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	return strings.Join(parts, " ")
}

func (w Warnings) counts() map[string]int {
	return map[string]int{
		"untitled_rows":        w.UntitledRows,
		"missing_description":  w.MissingDescription,
		"missing_prompt":       w.MissingPrompt,
		"defaulted_difficulty": w.DefaultedDifficulty,
		"defaulted_roles":      w.DefaultedRoles,
		"defaulted_category":   w.DefaultedCategory,
		"defaulted_author":     w.DefaultedAuthor,
		"malformed_counts":     w.MalformedCounts,
		"malformed_verified":   w.MalformedVerified,
	}
}
