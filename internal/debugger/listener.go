package debugger

import "sync"

// DebugEventListener receives session state changes. Methods are called from
// the goroutine running Session.Run, in wire order.
type DebugEventListener interface {
	// Suspended is called when the VM stops. ctx stays valid until the VM
	// resumes.
	Suspended(ctx *DebugContext)

	// Resumed is called when the VM continues after a suspension.
	Resumed()

	// ScriptLoaded is called for each newly parsed script.
	ScriptLoaded(script Script)

	// Disconnected is called once, after the connection is gone.
	Disconnected(err error)
}

// NopListener ignores every notification. Embed it to implement only the
// methods a caller cares about.
type NopListener struct{}

func (NopListener) Suspended(*DebugContext) {}
func (NopListener) Resumed()                {}
func (NopListener) ScriptLoaded(Script)     {}
func (NopListener) Disconnected(error)      {}

var _ DebugEventListener = NopListener{}

// notifyQueue is an unbounded FIFO of listener calls. The dispatch goroutine
// pushes without blocking; Run drains.
type notifyQueue struct {
	mu     sync.Mutex
	items  []func(DebugEventListener)
	signal chan struct{}
}

func newNotifyQueue() *notifyQueue {
	return &notifyQueue{signal: make(chan struct{}, 1)}
}

func (q *notifyQueue) push(fn func(DebugEventListener)) {
	q.mu.Lock()
	q.items = append(q.items, fn)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *notifyQueue) drain() []func(DebugEventListener) {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil

	return items
}
