// Package daemon keeps the reconciliation cycle running on a fixed interval.
//
// The daemon takes a flock-based lock in the log directory so only one
// tunesort process sorts a library at a time, runs the first cycle
// immediately, and then ticks at sorter.interval_seconds. Cycles never
// overlap: ticks that arrive while a cycle runs are dropped and concurrent
// RunOnce calls fail with ErrCycleInProgress.
package daemon
