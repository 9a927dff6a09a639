// Package logs reads the daemon's log files for `capgenius logs`.
//
// Last returns the final lines of a file with bounded memory, and Follow polls
// for appended lines until its context ends. Both accept a Filter so the CLI
// can narrow output to one project or a minimum level.
package logs
