package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Options tunes how a source is read.
type Options struct {
	// Sheet selects an XLSX worksheet by name. Empty reads the first sheet.
	Sheet string
}

// Open reads the file at path into a Table.
func Open(path string, opts Options) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return readCSVFile(path)
	case ".xlsx", ".xlsm":
		return readXLSX(path, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w: %q (want .csv or .xlsx)", ErrUnsupportedFormat, ext)
	}
}

func readCSVFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnreadable, err)
	}
	return ReadCSV(path, bytes.NewReader(data))
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses CSV content. The first record is the header.
func ReadCSV(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrSourceUnreadable, name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s has no header row", ErrSourceUnreadable, name)
		}
		return nil, fmt.Errorf("%w: parse %s header: %w", ErrSourceUnreadable, name, err)
	}
	table := newTable(name, header)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", ErrSourceUnreadable, name, err)
		}
		line, _ := reader.FieldPos(0)
		table.append(line, record)
	}
	return table, nil
}

func readXLSX(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook %s: %w", ErrSourceUnreadable, path, err)
	}
	defer func() { _ = f.Close() }()

	name := strings.TrimSpace(sheet)
	if name == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: workbook %s has no sheets", ErrSourceUnreadable, path)
		}
		name = sheets[0]
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %w", ErrSourceUnreadable, name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %q has no header row", ErrSourceUnreadable, name)
	}
	table := newTable(path, rows[0])
	for i, row := range rows[1:] {
		table.append(i+2, row)
	}
	return table, nil
}
