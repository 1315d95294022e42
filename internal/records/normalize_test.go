package records

import (
	"slices"
	"strings"
	"testing"

	"usecasesync/internal/config"
)

type mapRow map[string]string

func (r mapRow) Get(column string) string {
	for k, v := range r {
		if strings.EqualFold(k, column) {
			return v
		}
	}
	return ""
}

func testOptions() Options {
	cfg := config.Default()
	return OptionsFromConfig(cfg.Records)
}

func TestNormalizeFullRow(t *testing.T) {
	n := NewNormalizer(testOptions())
	uc := n.Normalize(0, mapRow{
		"Title":            "  Set Up Smart Backups ",
		"Description":      " Keep files safe ",
		"Prompt":           "Back up my home directory",
		"Difficulty":       "Step-by-step",
		"Target roles":     "Developers, , Ops",
		"Category":         "DevOps, Automation",
		"Prompt uses (GA)": "1,234",
		"Verified":         "Yes",
		"Status":           "DC Team",
	})

	if uc.Title != "Set Up Smart Backups" || uc.Description != "Keep files safe" {
		t.Fatalf("text not trimmed: %+v", uc)
	}
	if uc.SessionType != SessionStepByStep {
		t.Fatalf("session type = %q", uc.SessionType)
	}
	if !slices.Equal(uc.TargetRoles, []string{"Developers", "Ops"}) {
		t.Fatalf("roles = %v", uc.TargetRoles)
	}
	if uc.Category != "DevOps" || !slices.Equal(uc.Categories, []string{"DevOps", "Automation"}) {
		t.Fatalf("category=%q categories=%v", uc.Category, uc.Categories)
	}
	if uc.Votes != 1234 || uc.GAClicks != 1234 {
		t.Fatalf("votes=%d clicks=%d", uc.Votes, uc.GAClicks)
	}
	if !uc.Verified || uc.Author != "DC team" {
		t.Fatalf("verified=%v author=%q", uc.Verified, uc.Author)
	}
	if uc.Icon != "Settings" {
		t.Fatalf("icon = %q, want mapped DevOps icon", uc.Icon)
	}
	if uc.TaskCategory == nil || *uc.TaskCategory != "Monitor Systems" {
		t.Fatalf("task category = %v", uc.TaskCategory)
	}
	if uc.DateAdded != "2024-11-15" {
		t.Fatalf("date = %q", uc.DateAdded)
	}
	if !n.Warnings().Empty() {
		t.Fatalf("unexpected warnings: %s", n.Warnings().Summary())
	}
}

func TestNormalizeDefaultsAndWarnings(t *testing.T) {
	n := NewNormalizer(testOptions())
	uc := n.Normalize(7, mapRow{"Prompt uses (GA)": "lots", "Verified": "maybe"})

	if uc.Title != "Untitled_7" {
		t.Fatalf("title = %q", uc.Title)
	}
	if uc.Difficulty != "Intermediate" || uc.SessionType != SessionInstant {
		t.Fatalf("difficulty=%q session=%q", uc.Difficulty, uc.SessionType)
	}
	if !slices.Equal(uc.TargetRoles, []string{"Professionals"}) {
		t.Fatalf("roles = %v", uc.TargetRoles)
	}
	if uc.Category != "General" || !slices.Equal(uc.Categories, []string{"General"}) {
		t.Fatalf("category=%q categories=%v", uc.Category, uc.Categories)
	}
	if uc.Votes != 0 || uc.Verified {
		t.Fatalf("votes=%d verified=%v", uc.Votes, uc.Verified)
	}
	if uc.Author != "DC team" {
		t.Fatalf("author = %q", uc.Author)
	}
	if uc.TaskCategory != nil {
		t.Fatalf("task category should be nil, got %q", *uc.TaskCategory)
	}

	w := n.Warnings()
	want := Warnings{
		UntitledRows:        1,
		MissingDescription:  1,
		MissingPrompt:       1,
		DefaultedDifficulty: 1,
		DefaultedRoles:      1,
		DefaultedCategory:   1,
		DefaultedAuthor:     1,
		MalformedCounts:     1,
		MalformedVerified:   1,
	}
	if w != want {
		t.Fatalf("warnings = %+v, want %+v", w, want)
	}
	if w.Total() != 9 {
		t.Fatalf("total = %d", w.Total())
	}
	if !strings.HasPrefix(w.Summary(), "defaulted_author=1 defaulted_category=1") {
		t.Fatalf("summary not sorted: %q", w.Summary())
	}
}

func TestIconIsDeterministic(t *testing.T) {
	opts := testOptions()
	row := mapRow{"Title": "Summarize meeting notes", "Category": "Uncatalogued"}
	first := NewNormalizer(opts).Normalize(0, row).Icon
	for i := 0; i < 5; i++ {
		if got := NewNormalizer(opts).Normalize(i, row).Icon; got != first {
			t.Fatalf("icon changed between runs: %q vs %q", got, first)
		}
	}
	if !slices.Contains(opts.Icons, first) {
		t.Fatalf("icon %q not from palette", first)
	}

	opts.Icons = nil
	if got := NewNormalizer(opts).Normalize(0, row).Icon; got != fallbackIcon {
		t.Fatalf("empty palette icon = %q", got)
	}
}

func TestNormalizeAll(t *testing.T) {
	n := NewNormalizer(testOptions())
	got := n.NormalizeAll([]Row{mapRow{"Title": "A"}, mapRow{}, mapRow{"Title": "C"}})
	titles := []string{got[0].Title, got[1].Title, got[2].Title}
	if !slices.Equal(titles, []string{"A", "Untitled_1", "C"}) {
		t.Fatalf("titles = %v", titles)
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"", 0, true},
		{"12", 12, true},
		{" 12.0 ", 12, true},
		{"1,234", 1234, true},
		{"12.5", 0, false},
		{"-3", 0, false},
		{"n/a", 0, false},
		{"NaN", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseCount(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseCount(%q) = %d,%v want %d,%v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseVerified(t *testing.T) {
	for _, in := range []string{"Yes", "TRUE", "1", "y", "x"} {
		if v, ok := ParseVerified(in); !v || !ok {
			t.Errorf("ParseVerified(%q) = %v,%v", in, v, ok)
		}
	}
	for _, in := range []string{"", "No", "false", "0"} {
		if v, ok := ParseVerified(in); v || !ok {
			t.Errorf("ParseVerified(%q) = %v,%v", in, v, ok)
		}
	}
	if _, ok := ParseVerified("pending"); ok {
		t.Error("expected pending to be reported")
	}
}

func TestTitleHelpers(t *testing.T) {
	if got := NormalizeTitle("  Hello  ", 3); got != "Hello" {
		t.Fatalf("NormalizeTitle = %q", got)
	}
	if got := NormalizeTitle("   ", 3); got != "Untitled_3" {
		t.Fatalf("NormalizeTitle empty = %q", got)
	}
	if !IsPlaceholderTitle("Untitled_3") || IsPlaceholderTitle("Untitled_") || IsPlaceholderTitle("Untitled_x") {
		t.Fatal("IsPlaceholderTitle mismatch")
	}
}
