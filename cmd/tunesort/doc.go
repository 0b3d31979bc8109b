// Command tunesort sorts a music inbox into the folders of a library using a
// language model to pick the destination and a clean file name.
//
// "tunesort run" starts the daemon; "once", "plan", and "prompt" run or
// preview a single cycle; "normalize" rewrites ID3 tags across the library;
// "check" runs preflight checks; "config" manages the configuration file.
package main
