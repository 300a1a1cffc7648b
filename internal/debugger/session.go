package debugger

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/evaluate"
	"github.com/cczw2010/chromedevtools/internal/protocol"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
)

// ErrorCallback receives the outcome of an operation that has no result.
type ErrorCallback func(err error)

// Options configures a Session.
type Options struct {
	// Listener receives state changes. Nil means NopListener.
	Listener DebugEventListener

	// ScriptsTimeout bounds GetScripts. Zero means relay.DefaultTryTimeout.
	ScriptsTimeout time.Duration
}

// Session is one debugging session over a command processor.
type Session struct {
	id       string
	log      *slog.Logger
	proc     *protocol.Processor
	listener DebugEventListener
	notes    *notifyQueue

	scriptsTimeout time.Duration

	mu          sync.Mutex
	scripts     map[string]*Script
	scriptOrder []string
	sources     map[string]string
	breakpoints map[string]*Breakpoint
	bpOrder     []string
	localBPSeq  int
	current     *DebugContext
}

// New creates a session bound to proc and installs its event handler. It must
// be called before proc is started.
func New(log *slog.Logger, proc *protocol.Processor, opts Options) *Session {
	id := ulid.Make().String()

	listener := opts.Listener
	if listener == nil {
		listener = NopListener{}
	}

	s := &Session{
		id:             id,
		log:            log.With("component", "debugger", "session_id", id),
		proc:           proc,
		listener:       listener,
		notes:          newNotifyQueue(),
		scriptsTimeout: opts.ScriptsTimeout,
		scripts:        make(map[string]*Script),
		sources:        make(map[string]string),
		breakpoints:    make(map[string]*Breakpoint),
	}

	proc.SetEventHandler(s.handleEvent)

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Enable turns on the Debugger and Runtime domains and blocks until both are
// active. The Runtime step is chained from the Debugger step's callback.
func (s *Session) Enable(ctx context.Context) error {
	gate := relay.NewGate()

	return gate.AcquireContext(ctx, s.EnableAsync(ctx, gate))
}

// EnableAsync is the asynchronous form of Enable.
func (s *Session) EnableAsync(ctx context.Context, syncCb relay.SyncCallback) relay.Ok {
	r := relay.NewRelay(syncCb)

	return protocol.Send(ctx, s.proc, wip.MethodDebuggerEnable, nil,
		func(_ json.RawMessage, err error) {
			defer r.Guard()

			if err != nil {
				r.Finish(err)

				return
			}

			protocol.Send[json.RawMessage](ctx, s.proc, wip.MethodRuntimeEnable, nil, nil, r.Handoff())
		}, nil)
}

// RunIfWaiting releases a VM that was started to wait for a debugger, such as
// node --inspect-brk. A VM that is not waiting ignores it.
func (s *Session) RunIfWaiting(ctx context.Context, cb ErrorCallback, syncCb relay.SyncCallback) relay.Ok {
	return s.command(ctx, wip.MethodRuntimeRunIfWaitingForDebugger, nil, cb, syncCb)
}

// Suspend asks the VM to pause at the next statement.
func (s *Session) Suspend(ctx context.Context, cb ErrorCallback, syncCb relay.SyncCallback) relay.Ok {
	return s.command(ctx, wip.MethodDebuggerPause, nil, cb, syncCb)
}

// CurrentContext returns the suspended context, or nil while running.
func (s *Session) CurrentContext() *DebugContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

// GlobalEvaluateContext returns an evaluate context for the global scope.
func (s *Session) GlobalEvaluateContext() *evaluate.Context {
	return evaluate.NewContext(s.log, s.proc, evaluate.GlobalVariant{})
}

// Run delivers listener notifications until the processor stops or ctx ends.
// After the processor stops, queued notifications are flushed and
// Disconnected is called once.
func (s *Session) Run(ctx context.Context) error {
	for {
		s.flush()

		select {
		case <-s.notes.signal:
		case <-s.proc.Done():
			s.flush()
			s.listener.Disconnected(s.disconnectReason())

			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Session) flush() {
	for _, fn := range s.notes.drain() {
		fn(s.listener)
	}
}

func (s *Session) disconnectReason() error {
	if err := s.proc.FatalError(); err != nil {
		return &errors.DisconnectedError{Reason: err}
	}

	return &errors.DisconnectedError{Reason: errors.ErrSessionClosed}
}

// command sends a request whose result carries nothing of interest.
func (s *Session) command(
	ctx context.Context,
	method string,
	params any,
	cb ErrorCallback,
	syncCb relay.SyncCallback,
) relay.Ok {
	return protocol.Send(ctx, s.proc, method, params, func(_ json.RawMessage, err error) {
		if cb != nil {
			cb(err)
		}
	}, syncCb)
}

// handleEvent runs on the dispatch goroutine and must not block.
func (s *Session) handleEvent(evt *protocol.Event) {
	switch evt.Method {
	case wip.EventDebuggerScriptParsed:
		var body wip.ScriptParsedEvent
		if err := evt.Decode(&body); err != nil {
			s.log.Warn("Malformed scriptParsed notification", "error", err)

			return
		}

		s.onScriptParsed(&body)

	case wip.EventDebuggerPaused:
		var body wip.PausedEvent
		if err := evt.Decode(&body); err != nil {
			s.log.Warn("Malformed paused notification", "error", err)

			return
		}

		s.onPaused(&body)

	case wip.EventDebuggerResumed:
		s.onResumed()

	case wip.EventRuntimeContextsClear:
		s.onContextsCleared()

	case wip.EventInspectorDetached:
		s.log.Warn("Inspector detached")

	default:
		s.log.Debug("Ignoring notification", "method", evt.Method)
	}
}

func (s *Session) onScriptParsed(body *wip.ScriptParsedEvent) {
	script := scriptFromEvent(body)

	s.mu.Lock()

	if _, known := s.scripts[script.ID]; !known {
		s.scriptOrder = append(s.scriptOrder, script.ID)
	}

	s.scripts[script.ID] = &script
	delete(s.sources, script.ID)
	s.mu.Unlock()

	s.log.Debug("Script parsed", "script_id", script.ID, "url", script.URL)
	s.notes.push(func(l DebugEventListener) { l.ScriptLoaded(script) })
}

func (s *Session) onPaused(body *wip.PausedEvent) {
	dc := newDebugContext(s, body)

	s.mu.Lock()

	if s.current != nil {
		s.current.invalidate()
	}

	s.current = dc
	s.mu.Unlock()

	s.log.Info("VM suspended", "reason", body.Reason, "frames", len(body.CallFrames))
	s.notes.push(func(l DebugEventListener) { l.Suspended(dc) })
}

func (s *Session) onResumed() {
	s.mu.Lock()

	if s.current != nil {
		s.current.invalidate()
		s.current = nil
	}

	s.mu.Unlock()

	s.log.Debug("VM resumed")
	s.notes.push(func(l DebugEventListener) { l.Resumed() })
}

func (s *Session) onContextsCleared() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.scripts)
	clear(s.sources)
	s.scriptOrder = nil

	if s.current != nil {
		s.current.invalidate()
		s.current = nil
	}

	s.log.Info("Execution contexts cleared")
}
