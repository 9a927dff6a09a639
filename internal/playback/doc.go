// Package playback tracks the media position a session is synchronized to.
package playback
