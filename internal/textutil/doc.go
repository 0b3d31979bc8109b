// Package textutil provides the name handling shared by inventory, decision
// parsing, and the move applier.
//
// Filenames coming back from the oracle are compared after Unicode NFC
// normalization, stripped of quoting and echoed extensions, and sanitized into
// single path segments before they ever reach the filesystem.
package textutil
