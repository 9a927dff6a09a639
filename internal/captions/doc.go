// Package captions holds the caption collection edited by a session.
//
// Store keeps captions ordered by start time and enforces the minimum
// duration floor on every timing edit. It is the single write path for
// caption data; callers serialize access (the editor session holds a mutex).
package captions
