// Package daemonrun hosts the foreground daemon process behind
// `capgenius serve`: it sets up per-run log files with a capgenius.log
// pointer, writes the pid file, logs a dependency snapshot and failed
// preflight checks, wires the editor and API, and blocks until SIGINT or
// SIGTERM.
package daemonrun
