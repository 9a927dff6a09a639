// Package notifications sends ntfy alerts when caption generation finishes.
//
// NewService returns a no-op implementation unless notifications.ntfy_topic
// is set, so callers can publish unconditionally.
package notifications
