// Package fileutil holds the small file primitives the sync run depends on:
// crash-safe replacement of JSON documents and verified backup copies.
package fileutil
