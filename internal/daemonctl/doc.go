// Package daemonctl lets CLI commands inspect and stop a running capgenius
// daemon. Status is read over the daemon's HTTP API at paths.api_bind; when
// the daemon is unreachable the snapshot falls back to local preflight checks
// and a direct read of the project database. Stop signals the pid recorded
// in the log directory and escalates to SIGKILL after a grace period.
package daemonctl
