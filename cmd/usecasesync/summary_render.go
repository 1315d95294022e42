package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"usecasesync/internal/ident"
	"usecasesync/internal/preflight"
	"usecasesync/internal/records"
	"usecasesync/internal/syncrun"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

// palette holds the colours for one output stream.
type palette struct {
	ok, warn, err, info, header *color.Color
}

func newPalette(colorize bool) palette {
	p := palette{
		ok:     color.New(color.FgGreen),
		warn:   color.New(color.FgYellow),
		err:    color.New(color.FgRed),
		info:   color.New(color.FgBlue),
		header: color.New(color.FgHiBlue, color.Bold),
	}
	for _, c := range []*color.Color{p.ok, p.warn, p.err, p.info, p.header} {
		if colorize {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) forKind(kind statusKind) *color.Color {
	switch kind {
	case statusOK:
		return p.ok
	case statusWarn:
		return p.warn
	case statusError:
		return p.err
	default:
		return p.info
	}
}

func renderStatusLine(p palette, label string, kind statusKind, message string) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	return p.forKind(kind).Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func renderSectionHeader(p palette, title string) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return []string{p.header.Sprint(line), p.header.Sprint(strings.Repeat("-", len(line)))}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func renderSyncSummary(w io.Writer, r *syncrun.Report) {
	p := newPalette(shouldColorize(w))
	title := "Sync complete"
	if r.DryRun {
		title = "Dry run (nothing written)"
	}
	lines := renderSectionHeader(p, title)
	lines = append(lines,
		renderStatusLine(p, "Run", statusInfo, r.RunID),
		renderStatusLine(p, "Mode", statusInfo, string(r.Mode)),
		renderStatusLine(p, "Source", statusInfo, r.Source),
		renderStatusLine(p, "Catalog", statusInfo, r.Catalog),
	)
	if r.Registry != "" {
		seeded := ""
		if r.Seeded {
			seeded = " (seeded from catalog)"
		}
		lines = append(lines, renderStatusLine(p, "Registry", statusInfo, r.Registry+seeded))
	}
	lines = append(lines,
		renderStatusLine(p, "Records", statusOK, fmt.Sprintf("%d (%d exact, %d fuzzy, %d new)",
			r.Stats.Records, r.Stats.Exact, r.Stats.Fuzzy, r.Stats.Allocated)),
	)
	if len(r.Allocated) > 0 {
		lines = append(lines, renderStatusLine(p, "New IDs", statusOK, formatIDs(r.Allocated)))
	}
	if len(r.NewlyRetired) > 0 {
		lines = append(lines, renderStatusLine(p, "Retired", statusWarn, formatIDs(r.NewlyRetired)))
	}
	lines = append(lines, renderStatusLine(p, "Total IDs", statusInfo, fmt.Sprintf("%d (%d retired)", r.TotalIDs, len(r.Retired))))
	if r.BackedUp {
		lines = append(lines, renderStatusLine(p, "Backup", statusOK, "previous catalog saved"))
	}
	if !r.Warnings.Empty() {
		lines = append(lines, renderStatusLine(p, "Warnings", statusWarn, r.Warnings.Summary()))
	}
	lines = append(lines, "")
	lines = append(lines, renderCatalogSummary(p, r.Summary)...)
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

func renderCatalogSummary(p palette, s records.Summary) []string {
	lines := renderSectionHeader(p, "Catalog")
	lines = append(lines,
		renderStatusLine(p, "Verified", statusInfo, fmt.Sprintf("%d of %d", s.Verified, s.Total)),
		renderStatusLine(p, "GA data", statusInfo, fmt.Sprintf("%d with clicks", s.WithClicks)),
	)
	if len(s.SessionTypes) > 0 {
		lines = append(lines, renderStatusLine(p, "Sessions", statusInfo, formatCounts(s.SessionTypes)))
	}
	if len(s.TaskCategories) > 0 {
		lines = append(lines, renderStatusLine(p, "Task categories", statusInfo, ""))
		for _, c := range records.SortedCounts(s.TaskCategories) {
			lines = append(lines, renderDetailLine(p, fmt.Sprintf("%s: %d", c.Name, c.Count)))
		}
	}
	if len(s.TopClicked) > 0 {
		lines = append(lines, renderStatusLine(p, "Top by clicks", statusInfo, ""))
		for _, c := range s.TopClicked {
			lines = append(lines, renderDetailLine(p, fmt.Sprintf("ID %s: %s (%d clicks)", c.ID, c.Title, c.Clicks)))
		}
	}
	return lines
}

func renderDetailLine(p palette, text string) string {
	return p.info.Sprint(statusIndent + statusIndent + text)
}

func formatCounts(tally map[string]int) string {
	counts := records.SortedCounts(tally)
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%d %s", c.Count, c.Name)
	}
	return strings.Join(parts, ", ")
}

func renderPreflight(w io.Writer, results []preflight.Result) {
	p := newPalette(shouldColorize(w))
	lines := renderSectionHeader(p, "Paths")
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(p, r.Name, kind, r.Detail))
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}

func formatIDs(ids []ident.ID) string {
	const limit = 20
	parts := make([]string, 0, min(len(ids), limit))
	for i, id := range ids {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... (+%d)", len(ids)-limit))
			break
		}
		parts = append(parts, id.String())
	}
	return strings.Join(parts, ", ")
}
