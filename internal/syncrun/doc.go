// Package syncrun executes one finite synchronization: read the source
// export, identify every record, write the catalog and persist the identity
// state.
//
// A run holds the single-writer lock from registry load until the registry is
// persisted. The catalog is written before the registry; when the registry
// save fails the catalog is put back the way it was so the two never
// disagree. Dry runs read everything, reconcile in memory and write nothing.
package syncrun
