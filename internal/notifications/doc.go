// Package notifications pushes session lifecycle updates to an ntfy topic.
//
// When no topic is configured a noop implementation is returned, so callers
// never branch on whether notifications are enabled. Per-category toggles let
// users silence recording chatter while keeping failure alerts.
package notifications
