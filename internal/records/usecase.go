package records

import (
	"strconv"
	"strings"

	"usecasesync/internal/ident"
)

// Session types derived from the difficulty column.
const (
	SessionStepByStep = "Step-by-step flow"
	SessionInstant    = "Instant output"
)

const untitledPrefix = "Untitled_"

// UseCase is one catalog entry. Title is the matching key; the remaining
// fields are carried through to the catalog unchanged by reconciliation.
type UseCase struct {
	ID           ident.ID `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Prompt       string   `json:"prompt"`
	SessionType  string   `json:"sessionType"`
	Difficulty   string   `json:"difficulty"`
	TargetRoles  []string `json:"targetRoles"`
	Category     string   `json:"category"`
	Categories   []string `json:"categories"`
	TaskCategory *string  `json:"taskCategory"`
	Votes        int      `json:"votes"`
	GAClicks     int      `json:"gaClicks"`
	Icon         string   `json:"icon"`
	Author       string   `json:"author"`
	DateAdded    string   `json:"dateAdded"`
	Verified     bool     `json:"verified"`
}

// NormalizeTitle trims title and substitutes a positional placeholder for an
// empty one. index is the 0-based data row.
func NormalizeTitle(title string, index int) string {
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	return untitledPrefix + strconv.Itoa(index)
}

// IsPlaceholderTitle reports whether title was produced by NormalizeTitle for
// an empty cell.
func IsPlaceholderTitle(title string) bool {
	rest, ok := strings.CutPrefix(title, untitledPrefix)
	if !ok || rest == "" {
		return false
	}
	_, err := strconv.Atoi(rest)
	return err == nil
}
