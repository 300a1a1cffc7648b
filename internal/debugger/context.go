package debugger

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/evaluate"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
)

// State classifies why the VM is suspended.
type State int

const (
	// StateNormal is a suspension on a breakpoint, a step, or a pause request.
	StateNormal State = iota

	// StateException is a suspension on a thrown exception.
	StateException
)

func (s State) String() string {
	switch s {
	case StateNormal:
		return "normal"
	case StateException:
		return "exception"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StepAction selects how a suspended VM continues.
type StepAction int

const (
	// StepContinue resumes normal execution.
	StepContinue StepAction = iota

	// StepIn steps into the next function call.
	StepIn

	// StepOver steps to the next statement in the current frame.
	StepOver

	// StepOut runs until the current function returns.
	StepOut
)

func (a StepAction) method() (string, bool) {
	switch a {
	case StepContinue:
		return wip.MethodDebuggerResume, true
	case StepIn:
		return wip.MethodDebuggerStepInto, true
	case StepOver:
		return wip.MethodDebuggerStepOver, true
	case StepOut:
		return wip.MethodDebuggerStepOut, true
	default:
		return "", false
	}
}

func (a StepAction) String() string {
	switch a {
	case StepContinue:
		return "continue"
	case StepIn:
		return "in"
	case StepOver:
		return "over"
	case StepOut:
		return "out"
	default:
		return fmt.Sprintf("StepAction(%d)", int(a))
	}
}

// ParseStepAction maps "continue", "in", "over" or "out" to a StepAction.
func ParseStepAction(s string) (StepAction, error) {
	for a := StepContinue; a <= StepOut; a++ {
		if a.String() == s {
			return a, nil
		}
	}

	return 0, fmt.Errorf("unknown step action %q", s)
}

// DebugContext describes one suspension of the VM. It becomes invalid once the
// VM resumes; operations on an invalid context fail with
// errors.ErrContextInvalid without contacting the VM.
type DebugContext struct {
	session *Session
	state   State
	reason  string
	hit     []string
	thrown  *wip.RemoteObject

	mu     sync.Mutex
	frames []wip.CallFrame

	valid atomic.Bool
}

func newDebugContext(s *Session, evt *wip.PausedEvent) *DebugContext {
	dc := &DebugContext{
		session: s,
		reason:  evt.Reason,
		hit:     evt.HitBreakpoints,
		frames:  evt.CallFrames,
	}

	if evt.IsException() {
		dc.state = StateException
		dc.thrown, _ = evt.ExceptionObject()
	}

	dc.valid.Store(true)

	return dc
}

// State returns why the VM stopped.
func (dc *DebugContext) State() State { return dc.state }

// Reason returns the raw pause reason reported by the VM.
func (dc *DebugContext) Reason() string { return dc.reason }

// BreakpointsHit returns the ids of the breakpoints that caused the stop.
func (dc *DebugContext) BreakpointsHit() []string { return slices.Clone(dc.hit) }

// Exception returns the thrown value for StateException, or nil.
func (dc *DebugContext) Exception() *wip.RemoteObject { return dc.thrown }

// Valid reports whether the VM is still suspended in this context.
func (dc *DebugContext) Valid() bool { return dc.valid.Load() }

// CallFrames returns the suspended stack, innermost first.
func (dc *DebugContext) CallFrames() []wip.CallFrame {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	return slices.Clone(dc.frames)
}

// Continue resumes the VM with action. The context is invalid from the moment
// the command is issued; if the VM refuses, it becomes valid again.
func (dc *DebugContext) Continue(
	ctx context.Context,
	action StepAction,
	cb ErrorCallback,
	syncCb relay.SyncCallback,
) relay.Ok {
	method, ok := action.method()
	if !ok {
		return failNow(cb, syncCb, fmt.Errorf("unknown step action %d", int(action)))
	}

	if !dc.valid.CompareAndSwap(true, false) {
		return failNow(cb, syncCb, errors.ErrContextInvalid)
	}

	return dc.session.command(ctx, method, nil, func(err error) {
		if err != nil && dc.session.CurrentContext() == dc {
			dc.valid.Store(true)
		}

		if cb != nil {
			cb(err)
		}
	}, syncCb)
}

// Snapshot is a copy of a suspension with JSON tags, for callers that hand
// the raw protocol objects on.
type Snapshot struct {
	State          string            `json:"state"`
	Reason         string            `json:"reason,omitempty"`
	BreakpointsHit []string          `json:"breakpointsHit,omitempty"`
	Exception      *wip.RemoteObject `json:"exception,omitempty"`
	CallFrames     []wip.CallFrame   `json:"callFrames"`
}

// Snapshot copies the suspension's current state.
func (dc *DebugContext) Snapshot() Snapshot {
	return Snapshot{
		State:          dc.state.String(),
		Reason:         dc.reason,
		BreakpointsHit: dc.BreakpointsHit(),
		Exception:      dc.thrown,
		CallFrames:     dc.CallFrames(),
	}
}

// EvaluateContext returns an evaluate context bound to call frame index.
func (dc *DebugContext) EvaluateContext(index int) (*evaluate.Context, error) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	if index < 0 || index >= len(dc.frames) {
		return nil, fmt.Errorf("frame %d of %d: %w", index, len(dc.frames), errors.ErrFrameOutOfRange)
	}

	return evaluate.NewContext(dc.session.log, dc.session.proc, &frameVariant{
		CallFrameVariant: evaluate.CallFrameVariant{CallFrameID: dc.frames[index].CallFrameID},
		dc:               dc,
	}), nil
}

// GlobalEvaluateContext returns an evaluate context for the global scope.
func (dc *DebugContext) GlobalEvaluateContext() *evaluate.Context {
	return dc.session.GlobalEvaluateContext()
}

func (dc *DebugContext) invalidate() {
	dc.valid.Store(false)
}

func (dc *DebugContext) replaceFrames(frames []wip.CallFrame) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	dc.frames = frames
}

// frameVariant refuses to evaluate once its context is invalid.
type frameVariant struct {
	evaluate.CallFrameVariant

	dc *DebugContext
}

func (v *frameVariant) Validate() error {
	if !v.dc.Valid() {
		return errors.ErrContextInvalid
	}

	return nil
}

func failNow(cb ErrorCallback, syncCb relay.SyncCallback, err error) relay.Ok {
	if cb != nil {
		cb(err)
	}

	return relay.FinishWith(syncCb, err)
}
