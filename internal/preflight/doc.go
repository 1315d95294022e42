// Package preflight provides readiness checks for the filesystem paths a sync
// run reads and writes.
//
// These checks run in two contexts:
//   - The sync runner calls RunAll before reading the source. If any check
//     fails the run stops before anything is written.
//   - The CLI "config validate" command prints every result so operators can
//     fix paths without attempting a sync.
//
// Destination checks accept paths that do not exist yet as long as the
// nearest existing parent directory is writable.
package preflight
