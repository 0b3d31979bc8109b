// Package services defines shared utilities consumed by the reconciliation
// engine and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp cycle IDs and phase names for logging.
//   - Structured error markers plus the Wrap helper that separate fatal
//     failures (configuration, unreadable root) from contained ones (oracle
//     outages, per-file move failures).
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform across the cycle.
package services
