// Package services defines shared utilities consumed by the editing session,
// the transcription pipeline, and the HTTP API.
//
// Key responsibilities:
//   - Context helpers that stamp project IDs, operation names, and correlation
//     identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent classifications (validation vs external vs timeout).
//
// Use these helpers when wiring new session logic so operational behaviour
// (error reporting, observability) stays uniform across the editor.
package services
