// Package records turns raw spreadsheet rows into catalog use cases.
//
// The Normalizer trims text, splits list cells, applies configured defaults
// and derives the cosmetic fields (icon, session type, task category). Every
// defaulted or unparseable cell is counted in Warnings rather than failing the
// run; only an unreadable source is fatal. Icon selection is a stable hash of
// the title, so repeated runs produce byte-identical catalogs.
package records
