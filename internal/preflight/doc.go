// Package preflight runs environment checks for the doctor command: capture
// binary availability, directory permissions, database integrity, and
// transcriber reachability.
package preflight
