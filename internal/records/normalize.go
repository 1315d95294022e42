package records

import (
	"math"
	"strconv"
	"strings"

	"usecasesync/internal/config"
	"usecasesync/internal/textutil"
)

// Source column names, matched case-insensitively.
const (
	ColumnTitle       = "Title"
	ColumnDescription = "Description"
	ColumnPrompt      = "Prompt"
	ColumnDifficulty  = "Difficulty"
	ColumnRoles       = "Target roles"
	ColumnCategory    = "Category"
	ColumnGAUses      = "Prompt uses (GA)"
	ColumnVerified    = "Verified"
	ColumnStatus      = "Status"
)

const fallbackIcon = "Code"

// Row exposes one source row by column name. Missing columns read as "".
type Row interface {
	Get(column string) string
}

// Options holds the defaults and lookup tables applied to every row.
type Options struct {
	DefaultAuthor     string
	DefaultDate       string
	DefaultDifficulty string
	DefaultCategory   string
	DefaultRoles      []string
	Icons             []string
	IconMap           map[string]string
	TaskCategories    map[string]string
}

// OptionsFromConfig copies the [records] section.
func OptionsFromConfig(cfg config.Records) Options {
	return Options{
		DefaultAuthor:     cfg.DefaultAuthor,
		DefaultDate:       cfg.DefaultDate,
		DefaultDifficulty: cfg.DefaultDifficulty,
		DefaultCategory:   cfg.DefaultCategory,
		DefaultRoles:      append([]string(nil), cfg.DefaultRoles...),
		Icons:             append([]string(nil), cfg.Icons...),
		IconMap:           cfg.IconMap,
		TaskCategories:    cfg.TaskCategories,
	}
}

// Normalizer converts rows to use cases and accumulates warnings for a batch.
type Normalizer struct {
	opts     Options
	warnings Warnings
}

// NewNormalizer returns a Normalizer using opts.
func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Warnings returns the counters accumulated so far.
func (n *Normalizer) Warnings() Warnings { return n.warnings }

// NormalizeAll normalizes every row in order.
func (n *Normalizer) NormalizeAll(rows []Row) []UseCase {
	out := make([]UseCase, 0, len(rows))
	for i, row := range rows {
		out = append(out, n.Normalize(i, row))
	}
	return out
}

// Normalize converts one row. index is the 0-based data row, used for the
// placeholder title of untitled rows.
func (n *Normalizer) Normalize(index int, row Row) UseCase {
	rawTitle := strings.TrimSpace(row.Get(ColumnTitle))
	if rawTitle == "" {
		n.warnings.UntitledRows++
	}
	title := NormalizeTitle(rawTitle, index)

	uc := UseCase{
		Title:       title,
		Description: strings.TrimSpace(row.Get(ColumnDescription)),
		Prompt:      strings.TrimSpace(row.Get(ColumnPrompt)),
		DateAdded:   n.opts.DefaultDate,
	}
	if uc.Description == "" {
		n.warnings.MissingDescription++
	}
	if uc.Prompt == "" {
		n.warnings.MissingPrompt++
	}

	uc.Difficulty = strings.TrimSpace(row.Get(ColumnDifficulty))
	if uc.Difficulty == "" {
		n.warnings.DefaultedDifficulty++
		uc.Difficulty = n.opts.DefaultDifficulty
	}
	uc.SessionType = SessionType(uc.Difficulty)

	uc.TargetRoles = textutil.SplitList(row.Get(ColumnRoles))
	if len(uc.TargetRoles) == 0 {
		n.warnings.DefaultedRoles++
		uc.TargetRoles = append([]string(nil), n.opts.DefaultRoles...)
	}

	uc.Categories = textutil.SplitList(row.Get(ColumnCategory))
	if len(uc.Categories) == 0 {
		n.warnings.DefaultedCategory++
		uc.Category = n.opts.DefaultCategory
		uc.Categories = []string{n.opts.DefaultCategory}
	} else {
		uc.Category = uc.Categories[0]
	}

	clicks, ok := ParseCount(row.Get(ColumnGAUses))
	if !ok {
		n.warnings.MalformedCounts++
	}
	uc.GAClicks = clicks
	uc.Votes = clicks

	verified, ok := ParseVerified(row.Get(ColumnVerified))
	if !ok {
		n.warnings.MalformedVerified++
	}
	uc.Verified = verified

	uc.Author = n.author(row.Get(ColumnStatus))
	uc.Icon = n.icon(uc.Category, title)
	uc.TaskCategory = n.taskCategory(title)
	return uc
}

func (n *Normalizer) author(status string) string {
	status = strings.TrimSpace(status)
	switch {
	case status == "":
		n.warnings.DefaultedAuthor++
		return n.opts.DefaultAuthor
	case strings.EqualFold(status, "DC Team"):
		return "DC team"
	default:
		return status
	}
}

// icon prefers the configured category icon, then a palette slot chosen by a
// stable hash of the title.
func (n *Normalizer) icon(category, title string) string {
	if icon, ok := n.opts.IconMap[category]; ok && strings.TrimSpace(icon) != "" {
		return icon
	}
	if len(n.opts.Icons) == 0 {
		return fallbackIcon
	}
	return n.opts.Icons[textutil.StableIndex(title, len(n.opts.Icons))]
}

func (n *Normalizer) taskCategory(title string) *string {
	value, ok := n.opts.TaskCategories[title]
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

// SessionType derives the session type from a difficulty label.
func SessionType(difficulty string) string {
	return textutil.Ternary(strings.Contains(strings.ToLower(difficulty), "step"), SessionStepByStep, SessionInstant)
}

// ParseCount parses a non-negative integer cell such as "12", "12.0" or
// "1,234". Blank cells are 0 and valid; anything else unparseable is 0 and
// reported as invalid.
func ParseCount(value string) (int, bool) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(cleaned); err == nil {
		if n < 0 {
			return 0, false
		}
		return n, true
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// ParseVerified reads a yes/no style cell. Blank is false and valid.
func ParseVerified(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "":
		return false, true
	case "yes", "y", "true", "1", "x":
		return true, true
	case "no", "n", "false", "0":
		return false, true
	default:
		return false, false
	}
}
