// Package style defines the global caption style of a session, the built-in
// and user-supplied presets, and the resolution of a style into the overlay
// properties a player draws for the active caption.
package style
