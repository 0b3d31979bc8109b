// Package logging assembles structured slog loggers and formatting helpers used
// across tunesort.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context helpers so cycle code tags each line with the cycle ID and
// phase. NewNop provides a silent logger for tests and wiring code.
package logging
