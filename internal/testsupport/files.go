package testsupport

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// DefaultHeader is the column layout of a spreadsheet export.
var DefaultHeader = []string{
	"Title", "Description", "Prompt", "Difficulty", "Target roles",
	"Category", "Prompt uses (GA)", "Verified", "Status",
}

// WriteCSV writes header and rows to path, creating parent directories.
func WriteCSV(t testing.TB, path string, header []string, rows [][]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		t.Fatalf("write header %s: %v", path, err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows %s: %v", path, err)
	}
}

// WriteTitles writes a source export with DefaultHeader where each row has
// only a title and a description.
func WriteTitles(t testing.TB, path string, titles ...string) {
	t.Helper()

	rows := make([][]string, len(titles))
	for i, title := range titles {
		row := make([]string, len(DefaultHeader))
		row[0] = title
		row[1] = "About " + title
		row[2] = "Prompt for " + title
		rows[i] = row
	}
	WriteCSV(t, path, DefaultHeader, rows)
}

// WriteXLSX writes header and rows to the first sheet of a new workbook.
func WriteXLSX(t testing.TB, path string, header []string, rows [][]string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	all := append([][]string{header}, rows...)
	for i, row := range all {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook %s: %v", path, err)
	}
}
