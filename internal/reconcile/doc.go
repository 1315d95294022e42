// Package reconcile assigns stable identifiers to a batch of use cases.
//
// A Reconciler runs three passes over the batch against an IdentitySource:
//
//  1. exact title matches claim their identifiers first, so a fuzzy match
//     can never take an identifier that an unchanged title still owns;
//  2. each remaining record is scored against the source's candidates whose
//     identifiers are still unclaimed, and the best score strictly above
//     FuzzyThreshold wins (first candidate on ties, candidates ordered by
//     identifier then title);
//  3. everything else gets a new identifier from the source's allocation
//     policy.
//
// Identifiers the source knew about but the batch did not touch are retired.
// The output is sorted by numeric identifier.
//
// Two sources implement the identity policy. RegistrySource wraps the
// persistent registry and allocates from its monotonic counter.
// SnapshotSource works from the previous catalog alone and allocates the
// smallest identifier not used by this batch, the previous snapshot, or its
// retired list.
//
// The fuzzy pass is O(n·m) in batch size times candidate count. Catalogs are
// a few hundred entries, so no index is kept.
package reconcile
