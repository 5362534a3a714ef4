// Package daemon hosts the recording manager as a long-lived single-instance
// process. It owns the file lock that prevents two recorders from fighting
// over the capture device and database, runs the startup recovery sweep, and
// exposes the operations the IPC surface forwards to.
package daemon
