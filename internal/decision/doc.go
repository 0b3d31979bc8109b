// Package decision turns oracle text into per-file decisions and filters them
// against the cycle's allow-list and submitted files.
//
// The response grammar is one decision per line:
//
//	original_filename → folder_name → new_filename
//
// Strict mode accepts exactly three fields; lenient mode accepts three or
// more and keeps the first three. Lines that do not conform are dropped
// without error.
package decision
