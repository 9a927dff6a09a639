// Package daemon coordinates the long-running capgenius process.
//
// It wires configuration, the project store, the editor session manager and
// the HTTP API into a single lifecycle with flock-based locking on
// <data_dir>/capgenius.lock to prevent multiple instances. Stop releases the
// lock and the listener; Close additionally suspends every open session
// (saving it, keeping staged videos for later reopening) and closes the store.
//
// Keep orchestration logic here: editing behaviour lives in the editor package
// and routing in api, while the daemon focuses on startup, shutdown, and
// status reporting.
package daemon
