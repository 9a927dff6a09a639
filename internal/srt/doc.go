// Package srt serializes captions to SubRip (.srt) subtitles and reads them
// back for validation.
//
// Timestamps are truncated to the millisecond, never rounded. An empty
// caption list serializes to nothing and Export refuses to create a file for
// it.
package srt
