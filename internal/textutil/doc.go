// Package textutil holds small string helpers shared by the upload and export
// paths, currently filename sanitisation for staged videos and SRT downloads.
package textutil
