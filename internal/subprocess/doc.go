// Package subprocess launches a script under node's inspector.
//
// Process spawns node with --inspect-brk, waits for the "Debugger listening"
// banner on stderr and reports the websocket URL. NodeTransport combines a
// Process with a websocket transport so that a launched script can be used
// wherever a config.Transport is expected. An abnormal node exit surfaces as
// an *errors.ProcessError carrying the cleaned stderr.
package subprocess
