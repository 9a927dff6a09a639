// Package language lists the caption languages capgenius can request and maps
// user input (codes, ISO 639-2 codes, English words) onto them.
//
// "hi-en" is a pseudo-code for Hinglish: Hindi written in Roman script. It is
// the only code whose request instruction differs from the code itself.
package language
