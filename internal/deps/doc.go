// Package deps resolves the external binaries capgenius shells out to.
package deps
