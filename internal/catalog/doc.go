// Package catalog reads and writes the use-case catalog consumed by the
// website: a JSON document holding the use cases sorted by ID plus run
// metadata. Writes are atomic and replace the whole file.
package catalog
