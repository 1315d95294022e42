package records

import (
	"cmp"
	"slices"

	"usecasesync/internal/ident"
)

// NoTaskCategory counts use cases without a task category.
const NoTaskCategory = "No category"

// topClickedLimit caps Summary.TopClicked.
const topClickedLimit = 5

// Summary describes the content of a catalog batch.
type Summary struct {
	Total          int            `json:"total"`
	Verified       int            `json:"verified"`
	WithClicks     int            `json:"with_ga_clicks"`
	SessionTypes   map[string]int `json:"session_types"`
	TaskCategories map[string]int `json:"task_categories"`
	TopClicked     []Clicked      `json:"top_clicked"`
}

// Clicked is a use case ranked by analytics clicks.
type Clicked struct {
	ID     ident.ID `json:"id"`
	Title  string   `json:"title"`
	Clicks int      `json:"clicks"`
}

// Count is one entry of a tally, used for ordered rendering.
type Count struct {
	Name  string
	Count int
}

// Summarize tallies useCases. TopClicked holds at most five use cases with
// clicks, most clicked first and lower IDs first on ties.
func Summarize(useCases []UseCase) Summary {
	s := Summary{
		Total:          len(useCases),
		SessionTypes:   make(map[string]int),
		TaskCategories: make(map[string]int),
		TopClicked:     []Clicked{},
	}
	for _, uc := range useCases {
		if uc.Verified {
			s.Verified++
		}
		if uc.GAClicks > 0 {
			s.WithClicks++
			s.TopClicked = append(s.TopClicked, Clicked{ID: uc.ID, Title: uc.Title, Clicks: uc.GAClicks})
		}
		if uc.SessionType != "" {
			s.SessionTypes[uc.SessionType]++
		}
		category := NoTaskCategory
		if uc.TaskCategory != nil && *uc.TaskCategory != "" {
			category = *uc.TaskCategory
		}
		s.TaskCategories[category]++
	}
	slices.SortStableFunc(s.TopClicked, func(a, b Clicked) int {
		if c := cmp.Compare(b.Clicks, a.Clicks); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(s.TopClicked) > topClickedLimit {
		s.TopClicked = s.TopClicked[:topClickedLimit]
	}
	return s
}

// SortedCounts orders a tally by count descending, then name.
func SortedCounts(tally map[string]int) []Count {
	out := make([]Count, 0, len(tally))
	for name, n := range tally {
		out = append(out, Count{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
