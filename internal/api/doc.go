// Package api serves the caption editor over HTTP. A chi router maps every
// editing operation (video upload, caption generation, caption edits,
// timeline gestures, playback, styling, SRT export and narration) onto the
// sessions held by editor.Manager.
//
// # Conventions
//
// Request and response bodies are JSON with snake_case fields, except the
// raw video upload, the SRT download and the narration audio. Failures are
// reported as {"error": "..."} with a status derived from the services error
// markers:
//
//	validation     400 (415 for non-video uploads, 413 for oversized ones)
//	not_found      404
//	conflict       409
//	configuration  503
//	external       502
//	timeout        504
//
// When paths.api_token is set every route requires
// "Authorization: Bearer <token>". Each request carries an X-Request-ID that
// is echoed back and attached to log records as correlation_id.
//
// Server owns the listener lifecycle: Start binds paths.api_bind and shuts
// down gracefully when the context ends; Stop is safe to call repeatedly.
package api
