// Package logs reads the daemon log file for the CLI.
//
// The daemon appends structured lines to minute.log; this package returns
// the most recent lines and can follow the file for new output. It only
// ever reads the file, so it is safe to run against a live daemon.
package logs
