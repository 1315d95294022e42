// Package ident defines the stable identifier assigned to catalog records.
//
// Identifiers are positive integers that serialize as decimal strings in the
// catalog JSON (URLs embed them) but always compare numerically, so "10"
// sorts after "2". The zero value is never a valid identifier.
package ident
