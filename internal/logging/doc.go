// Package logging assembles structured slog loggers and formatting helpers used
// across capgenius.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so request handlers and editing
// sessions tag log lines with project IDs, operations, and correlation IDs.
// A no-op logger is provided for tests and wiring code that cannot fail.
package logging
