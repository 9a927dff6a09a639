// Package timeline converts pointer gestures on the caption timeline into
// caption timing edits.
//
// Track maps between pixel positions and seconds. Engine is the drag state
// machine: Idle until PointerDown picks a caption and a mode (move, start
// handle, end handle), then each PointerMove writes clamped bounds to the
// caption store until PointerUp or Cancel returns it to Idle. Only one drag is
// active at a time.
package timeline
