// Package logging builds the slog loggers used by the sync CLI.
//
// New selects a console handler (timestamp, level, component prefix, then
// key=value pairs) or a JSON handler. Logs go to stderr so command output on
// stdout stays machine readable; NewFromConfig also appends to a log file when
// a log directory is configured. Field* constants name the structured keys
// every component shares, and WarnWithContext enforces the cause/impact/hint
// shape for warnings.
package logging
