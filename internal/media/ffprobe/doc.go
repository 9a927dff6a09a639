// Package ffprobe wraps ffprobe's JSON report for uploaded videos.
//
// Inspect runs the binary and Parse decodes its output. Result exposes the
// playable duration used to size the caption timeline, plus the stream facts
// needed to tell a real video from a mislabelled upload.
package ffprobe
