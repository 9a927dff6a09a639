// Package editor owns the state of a caption editing session.
//
// A Session holds one project's caption store, style, playback clock,
// timeline drag engine, staged video and app state. Every mutation goes
// through a Session method under a single mutex, so concurrent API requests
// observe the same ordering the interactive editor would.
//
// Caption generation runs in its own goroutine. Completion either replaces
// the caption store in one step or records a single user-facing error; the
// store is never touched on failure. Manager keeps sessions keyed by project
// ID and writes each one back to the project store after it changes.
package editor
