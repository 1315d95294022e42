// Package config loads, normalizes, and validates the TOML configuration that
// drives a sync run.
//
// Load merges, in increasing precedence: built-in defaults, the TOML file,
// variables from an optional .env file, and USECASESYNC_* environment
// variables. Paths are expanded (including "~") and made absolute before
// validation. Command-line flags are applied by the CLI after Load returns.
package config
