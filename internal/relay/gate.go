package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cczw2010/chromedevtools/internal/errors"
)

const (
	// DefaultCeiling bounds AcquireDefault so a blocked caller never hangs forever.
	DefaultCeiling = 2 * time.Minute

	// DefaultTryTimeout bounds TryAcquireDefault.
	DefaultTryTimeout = 10 * time.Second
)

// Gate is a one-shot SyncCallback that callers can block on.
//
// The gate is released by the first CallbackDone; later calls are ignored,
// including completions that arrive after a waiter has already timed out.
type Gate struct {
	once       sync.Once
	done       chan struct{}
	err        error
	ceiling    time.Duration
	tryTimeout time.Duration
}

// Compile-time verification that Gate implements SyncCallback.
var _ SyncCallback = (*Gate)(nil)

// NewGate creates a gate with the default timeouts.
func NewGate() *Gate {
	return NewGateWithTimeouts(DefaultCeiling, DefaultTryTimeout)
}

// NewGateWithTimeouts creates a gate whose AcquireDefault and TryAcquireDefault
// use the given bounds. Non-positive values fall back to the defaults.
func NewGateWithTimeouts(ceiling, tryTimeout time.Duration) *Gate {
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}

	if tryTimeout <= 0 {
		tryTimeout = DefaultTryTimeout
	}

	return &Gate{
		done:       make(chan struct{}),
		ceiling:    ceiling,
		tryTimeout: tryTimeout,
	}
}

// CallbackDone releases the gate. Only the first call has any effect.
func (g *Gate) CallbackDone(err error) {
	g.once.Do(func() {
		g.err = err
		close(g.done)
	})
}

// Done returns a channel closed when the gate is released.
func (g *Gate) Done() <-chan struct{} {
	return g.done
}

// Released reports whether the gate has been released.
func (g *Gate) Released() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// Err returns the error the chain terminated with. It is nil while the gate is
// still closed and on successful completion.
func (g *Gate) Err() error {
	select {
	case <-g.done:
		return g.err
	default:
		return nil
	}
}

// Acquire blocks until the gate is released or timeout elapses. It reports
// whether the gate was released. A non-positive timeout uses the gate ceiling.
func (g *Gate) Acquire(ok Ok, timeout time.Duration) bool {
	mustHold(ok)

	if timeout <= 0 {
		timeout = g.ceiling
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-g.done:
		return true
	case <-timer.C:
		return false
	}
}

// AcquireContext blocks until the gate is released, the context ends, or the
// gate ceiling elapses, whichever comes first. On release it returns the error
// the chain terminated with.
func (g *Gate) AcquireContext(ctx context.Context, ok Ok) error {
	mustHold(ok)

	timer := time.NewTimer(g.ceiling)
	defer timer.Stop()

	select {
	case <-g.done:
		return g.err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("%w after %s", errors.ErrRequestTimeout, g.ceiling)
	}
}

// AcquireDefault blocks up to the gate ceiling and returns the chain's error.
// On timeout it returns an error wrapping ErrRequestTimeout; the pending
// operation stays alive.
func (g *Gate) AcquireDefault(ok Ok) error {
	if !g.Acquire(ok, g.ceiling) {
		return fmt.Errorf("%w after %s", errors.ErrRequestTimeout, g.ceiling)
	}

	return g.err
}

// TryAcquireDefault blocks up to the gate's try timeout and reports whether the
// gate was released. Callers invoke their own failure path on false.
func (g *Gate) TryAcquireDefault(ok Ok) bool {
	return g.Acquire(ok, g.tryTimeout)
}

func mustHold(ok Ok) {
	if !ok.Valid() {
		panic("relay: blocking wait without a relay token")
	}
}
