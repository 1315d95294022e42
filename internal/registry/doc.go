// Package registry owns the persistent title to identifier mapping that keeps
// catalog IDs stable across sync runs.
//
// A Registry records every title ever seen exactly once, the next identifier
// to hand out, and the identifiers whose titles dropped out of a later batch
// (retired). Allocation is a monotonic counter: an identifier is never handed
// to a second title, and retired identifiers are never reallocated. Exact
// title lookups still resolve retired identifiers, so a record that returns
// verbatim gets its old ID back.
//
// # Storage
//
// Two Store implementations persist the state:
//
//   - JSONStore writes a human-readable file (default) using temp+rename so a
//     crash mid-write leaves the previous mapping intact.
//   - SQLiteStore keeps the same state in SQLite and replaces it in a single
//     transaction. It also records a history of sync runs.
//
// # Concurrency
//
// A Registry is not safe for concurrent use. Runs hold a Lock (a flock on
// "<path>.lock") from Load to Save so two processes never allocate from the
// same counter.
package registry
