// Package debugger implements a debugging session on top of the command
// processor.
//
// A Session is created when a connection is established and lives until the
// processor stops. It tracks parsed scripts, breakpoints and the current
// suspended DebugContext, and reports state changes to a DebugEventListener.
//
// Every asynchronous operation takes a callback and an optional
// relay.SyncCallback and returns a relay.Ok. Multi-step operations (Enable,
// UpdateScript) chain through a relay.Relay so the sync callback is released
// only when the last step finishes.
//
// Session state is updated on the dispatch goroutine, so a response callback
// always observes every notification that preceded the response on the wire.
// Listener methods run on a separate goroutine driven by Run and may block.
package debugger
