// Package reconcile runs one inbox reconciliation cycle: inventory, request,
// oracle call, parse, validate, apply.
//
// A cycle keeps no state between runs; the filesystem is the only record of
// what is left to do. Only a missing or unreadable root or inbox aborts a
// cycle. Oracle failures, malformed lines, rejected decisions, and failed
// moves all end with the affected files still in the inbox.
package reconcile
