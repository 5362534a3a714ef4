// Package ipc exposes daemon control via JSON-RPC over a Unix domain socket.
// The CLI is a thin client; all session state lives in the daemon process so
// commands observe a single consistent view of the recording slot.
package ipc
