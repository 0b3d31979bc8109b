// Package preflight provides readiness checks for the music library paths and
// the classification backend that tunesort depends on.
//
// The CLI "tunesort check" command runs RunAll and renders the results; the
// daemon does not gate cycles on them because a failing cycle already leaves
// every file in the inbox.
package preflight
