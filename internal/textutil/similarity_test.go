package textutil

import (
	"math"
	"strings"
	"testing"
)

func TestSimilarityEdgeCases(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"both empty", "", "", 1},
		{"a empty", "", "Summarize logs", 0},
		{"b empty", "Summarize logs", "", 0},
		{"identical", "Summarize logs", "Summarize logs", 1},
		{"case only", "SUMMARIZE LOGS", "summarize logs", 1},
		{"disjoint", "abc", "xyz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestSimilarityTypo(t *testing.T) {
	// "refactor funct" (14) + "i" + "n" match: 2*16/34.
	got := Similarity("Refactor function", "Refactor functoin")
	want := 32.0 / 34.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Similarity = %v, want %v", got, want)
	}
	if got <= 0.85 {
		t.Fatalf("typo should clear the match threshold, got %v", got)
	}
}

func TestSimilarityExactBoundary(t *testing.T) {
	// 17 of 20 characters shared as a prefix: 34/40 = 0.85 exactly.
	a := "abcdefghijklmnopqrst"
	b := "abcdefghijklmnopqXYZ"
	if got := Similarity(a, b); got != 0.85 {
		t.Fatalf("Similarity = %v, want exactly 0.85", got)
	}
}

func TestSimilarityAboveBoundary(t *testing.T) {
	a := strings.Repeat("x", 43) + strings.Repeat("a", 7)
	b := strings.Repeat("x", 43) + strings.Repeat("b", 7)
	if got := Similarity(a, b); got != 0.86 {
		t.Fatalf("Similarity = %v, want 0.86", got)
	}
}

func TestSimilaritySymmetricInPractice(t *testing.T) {
	pairs := [][2]string{
		{"Find Error Patterns in Logs", "Find error patterns in log files"},
		{"Set Up Smart Backups", "Setup smart backup"},
		{"Analyze My Data File", "Analyse my data files"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if math.Abs(ab-ba) > 0.05 {
			t.Errorf("Similarity not symmetric for %q/%q: %v vs %v", p[0], p[1], ab, ba)
		}
		if ab < 0 || ab > 1 {
			t.Errorf("Similarity out of range: %v", ab)
		}
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"single", "Developers", []string{"Developers"}},
		{"trims and drops empties", " Developers , ,Vibe coders,", []string{"Developers", "Vibe coders"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitList(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitList(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("item[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestStableIndex(t *testing.T) {
	first := StableIndex("Development", 15)
	for range 5 {
		if got := StableIndex("Development", 15); got != first {
			t.Fatalf("StableIndex not deterministic: %d vs %d", got, first)
		}
	}
	if got := StableIndex("DEVELOPMENT", 15); got != first {
		t.Fatalf("StableIndex should ignore case: %d vs %d", got, first)
	}
	if got := StableIndex("anything", 0); got != 0 {
		t.Fatalf("StableIndex with n=0 = %d, want 0", got)
	}
}
