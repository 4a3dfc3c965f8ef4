// Package logging builds slog loggers for the daemon and exposes handler and
// attribute helpers shared across components.
//
// Output goes to stdout and, when a log directory is configured, to a log
// file as well. Two formats are supported: a compact single-line console
// format for interactive use and JSON for ingestion.
package logging
