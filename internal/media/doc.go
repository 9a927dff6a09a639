// Package media handles uploaded videos: MIME validation, staging the bytes
// under the data directory, probing the playable duration, and releasing the
// staged file exactly once when a project lets go of it.
package media
