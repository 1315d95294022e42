package source

import (
	"errors"
	"strings"

	"usecasesync/internal/textutil"
)

var (
	// ErrSourceUnreadable wraps every failure to open or parse the source.
	ErrSourceUnreadable = errors.New("source unreadable")
	// ErrUnsupportedFormat reports an extension with no reader.
	ErrUnsupportedFormat = errors.New("unsupported source format")
	// ErrMissingColumn reports a required header that is absent.
	ErrMissingColumn = errors.New("required column missing")
)

// Table is a header plus data rows.
type Table struct {
	Path   string
	Header []string
	rows   [][]string
	lines  []int
	index  map[string]int
}

// Row is one data row of a Table.
type Row struct {
	table *Table
	cells []string
	// Line is the 1-based line (CSV) or row number (XLSX) in the file.
	Line int
}

func newTable(path string, header []string) *Table {
	t := &Table{Path: path, Header: make([]string, len(header)), index: make(map[string]int, len(header))}
	for i, h := range header {
		clean := strings.TrimSpace(h)
		t.Header[i] = clean
		key := textutil.Fold(clean)
		if _, dup := t.index[key]; !dup && key != "" {
			t.index[key] = i
		}
	}
	return t
}

func (t *Table) append(line int, cells []string) {
	if isBlank(cells) {
		return
	}
	t.rows = append(t.rows, append([]string(nil), cells...))
	t.lines = append(t.lines, line)
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether name appears in the header.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[textutil.Fold(strings.TrimSpace(name))]
	return ok
}

// Require returns ErrMissingColumn naming the first absent column.
func (t *Table) Require(columns ...string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return &MissingColumnError{Column: c, Path: t.Path}
		}
	}
	return nil
}

// Rows returns every data row in file order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i := range t.rows {
		out[i] = Row{table: t, cells: t.rows[i], Line: t.lines[i]}
	}
	return out
}

// Get returns the trimmed cell under column, or "" when the column or the
// cell is absent.
func (r Row) Get(column string) string {
	if r.table == nil {
		return ""
	}
	i, ok := r.table.index[textutil.Fold(strings.TrimSpace(column))]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// MissingColumnError names the absent header.
type MissingColumnError struct {
	Column string
	Path   string
}

func (e *MissingColumnError) Error() string {
	return "source " + e.Path + ": column " + `"` + e.Column + `"` + " not found in header"
}

func (e *MissingColumnError) Unwrap() []error {
	return []error{ErrMissingColumn, ErrSourceUnreadable}
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
