// Package main hosts the usecasesync CLI entrypoint and command graph.
//
// The Cobra-based command tree runs syncs, inspects and seeds the identifier
// registry, lists run history, and scaffolds configuration. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on output instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
