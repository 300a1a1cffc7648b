// Package wip defines typed parameters, results and event bodies for the
// subset of the WebKit Inspector Protocol the debugger uses.
//
// Types here are plain JSON-tagged structs; the protocol package handles
// correlation and decoding. Method and event names are exported as constants
// so callers never spell them by hand.
package wip
