package relay

import (
	"sync"
	"sync/atomic"

	"github.com/cczw2010/chromedevtools/internal/errors"
)

// SyncCallback is notified exactly once when an asynchronous chain terminates.
// err is nil on success and carries the failure otherwise.
type SyncCallback interface {
	CallbackDone(err error)
}

// SyncFunc adapts a function to the SyncCallback interface.
type SyncFunc func(err error)

// CallbackDone implements SyncCallback.
func (f SyncFunc) CallbackDone(err error) { f(err) }

// Ok is the relay token returned by every asynchronous operation.
//
// Holding an Ok is a precondition for blocking on a Gate. The zero value is
// not a valid token.
type Ok struct {
	minted bool
}

// Valid reports whether the token was issued by an asynchronous operation.
func (o Ok) Valid() bool {
	return o.minted
}

// Dispatched returns a token for an operation that has taken ownership of
// releasing its SyncCallback later.
func Dispatched() Ok {
	return Ok{minted: true}
}

// Finish releases cb immediately and returns a token. It is used by
// operations that complete without a network round trip. cb may be nil.
func Finish(cb SyncCallback) Ok {
	return FinishWith(cb, nil)
}

// FinishWith releases cb immediately with err and returns a token.
func FinishWith(cb SyncCallback, err error) Ok {
	if cb != nil {
		cb.CallbackDone(err)
	}

	return Dispatched()
}

// Once wraps cb so that only the first CallbackDone is forwarded.
func Once(cb SyncCallback) SyncCallback {
	if cb == nil {
		return nil
	}

	if _, ok := cb.(*onceCallback); ok {
		return cb
	}

	return &onceCallback{target: cb}
}

type onceCallback struct {
	once   sync.Once
	target SyncCallback
}

func (o *onceCallback) CallbackDone(err error) {
	o.once.Do(func() {
		o.target.CallbackDone(err)
	})
}

const (
	relayOpen int32 = iota
	relayFinished
	relayHandedOff
)

// Relay carries the obligation to release a SyncCallback through a chain of
// asynchronous steps. Exactly one of Finish, Handoff or Guard takes effect.
type Relay struct {
	sync  SyncCallback
	state atomic.Int32
}

// NewRelay wraps cb, which may be nil.
func NewRelay(cb SyncCallback) *Relay {
	return &Relay{sync: cb}
}

// Finish marks the current step as terminal and releases the SyncCallback
// with err. Calls after Finish or Handoff only return a token.
func (r *Relay) Finish(err error) Ok {
	if r.state.CompareAndSwap(relayOpen, relayFinished) && r.sync != nil {
		r.sync.CallbackDone(err)
	}

	return Dispatched()
}

// Handoff transfers the release obligation to a nested operation. The returned
// callback must be passed to that operation; the relay never releases the
// original SyncCallback itself afterwards. Returns nil if the relay was already
// finished or handed off.
func (r *Relay) Handoff() SyncCallback {
	if !r.state.CompareAndSwap(relayOpen, relayHandedOff) {
		return nil
	}

	return Once(r.sync)
}

// Guard releases the SyncCallback with ErrRelayAbandoned if the step returned
// (or panicked) without calling Finish or Handoff. Use it with defer.
func (r *Relay) Guard() {
	if r.state.CompareAndSwap(relayOpen, relayFinished) && r.sync != nil {
		r.sync.CallbackDone(errors.ErrRelayAbandoned)
	}
}

// Settled reports whether Finish, Handoff or Guard already took effect.
func (r *Relay) Settled() bool {
	return r.state.Load() != relayOpen
}
