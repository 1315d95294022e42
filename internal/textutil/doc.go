// Package textutil provides text helpers shared by the normalizer and the
// reconciler.
//
// The primary use cases are:
//   - Scoring two titles for likely-same-entity with a sequence ratio
//   - Case folding titles before comparison
//   - Splitting comma-separated spreadsheet cells into clean lists
//   - Deriving stable palette indexes from text
//
// Similarity follows Ratcliff/Obershelp ratio semantics: twice the number of
// characters in matching blocks divided by the combined length. Matching
// blocks come from repeatedly taking the longest common substring, so the
// score is deterministic for a given pair of inputs.
package textutil
