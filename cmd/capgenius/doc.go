// Command capgenius is the command-line entry point for the caption editor.
//
// `capgenius serve` runs the daemon that hosts the HTTP API used by the web
// editor; `stop` and `status` manage it. The remaining commands work on the
// project database directly: `transcribe` captions a local video in one shot,
// `projects` lists, shows and deletes saved projects, and `export` writes a
// project's captions as SRT. `logs` tails the daemon log and `test-notify`
// checks the ntfy topic. Most commands accept --json for scripting.
package main
