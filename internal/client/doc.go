// Package client wires a transport, a command processor and a debugger
// session into one connected unit.
//
// The client picks its connection from config.Options (an injected
// transport, a websocket URL, an inspector HTTP endpoint, or a script to
// launch under node), enables the session and delivers listener
// notifications on a background goroutine until Close.
package client
