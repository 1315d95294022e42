// Package source reads the tabular use-case export.
//
// Open dispatches on the file extension: CSV files are read with
// encoding/csv (UTF-8 BOM stripped, lazy quotes, ragged rows allowed) and
// XLSX workbooks through excelize. Both produce a Table whose rows are
// addressed by header name, case-insensitively. Rows with no non-blank cell
// are dropped. Any failure to read the file wraps ErrSourceUnreadable, the one
// input error that aborts a run.
package source
