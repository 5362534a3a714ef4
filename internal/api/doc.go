// Package api defines the transport-neutral DTOs shared by the IPC surface
// and the CLI renderers, plus converters from the internal session model.
// Keeping the wire shapes here lets the ipc and cmd packages agree on field
// names without importing each other.
package api
