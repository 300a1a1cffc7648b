package debugger

import (
	"context"

	"github.com/cczw2010/chromedevtools/internal/relay"
)

// Await runs an asynchronous session call and blocks until its callback has
// run or ctx ends. It must not be called from another callback.
//
//	bp, err := debugger.Await(ctx, func(cb func(*debugger.Breakpoint, error), s relay.SyncCallback) relay.Ok {
//	    return sess.SetBreakpoint(ctx, spec, cb, s)
//	})
func Await[T any](ctx context.Context, call func(cb func(T, error), syncCb relay.SyncCallback) relay.Ok) (T, error) {
	var (
		zero  T
		value T
		cbErr error
	)

	gate := relay.NewGate()

	// Some failures reach only the callback, so both outcomes are checked.
	ok := call(func(v T, err error) {
		value, cbErr = v, err
	}, gate)

	if err := gate.AcquireContext(ctx, ok); err != nil {
		return zero, err
	}

	if cbErr != nil {
		return zero, cbErr
	}

	return value, nil
}

// AwaitErr is Await for calls whose callback carries only an error.
func AwaitErr(ctx context.Context, call func(cb ErrorCallback, syncCb relay.SyncCallback) relay.Ok) error {
	var cbErr error

	gate := relay.NewGate()

	ok := call(func(err error) { cbErr = err }, gate)
	if err := gate.AcquireContext(ctx, ok); err != nil {
		return err
	}

	return cbErr
}
