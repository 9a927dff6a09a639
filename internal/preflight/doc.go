// Package preflight provides readiness checks for the directories, binaries
// and remote APIs capgenius depends on.
//
// The daemon runs RunAll at startup and logs failures; `capgenius status` and
// GET /api/status render the same results. Video staging calls FreeBytes
// before accepting an upload.
package preflight
