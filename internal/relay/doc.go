// Package relay bridges asynchronous completion back to goroutines that want
// to block.
//
// Every asynchronous operation in the SDK accepts an optional SyncCallback and
// returns an Ok token. The token is evidence that the SyncCallback will be
// invoked exactly once, when the operation's chain of network round trips
// terminates. A Gate is a one-shot SyncCallback that a caller can block on:
//
//	gate := relay.NewGate()
//	ok := session.SetBreakpoint(ctx, target, 10, 0, true, "", callback, gate)
//	if err := gate.AcquireDefault(ok); err != nil {
//	    // timed out; a late completion is absorbed by the gate
//	}
//
// When an operation has to issue a nested operation before it can report back,
// it wraps its SyncCallback in a Relay and hands the obligation off, so the gate
// is released by whichever step in the chain actually terminates.
package relay
