package chromedevtools

import (
	"github.com/cczw2010/chromedevtools/internal/config"
	"github.com/cczw2010/chromedevtools/internal/debugger"
	"github.com/cczw2010/chromedevtools/internal/evaluate"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
)

// Re-export types from internal packages

// ===== Options and Configuration =====

// Options configures how a client reaches a VM and how its session behaves.
type Options = config.Options

// PauseOnExceptionsState selects which exceptions suspend the VM.
type PauseOnExceptionsState = wip.PauseOnExceptionsState

const (
	// PauseOnExceptionsNone never suspends on exceptions.
	PauseOnExceptionsNone = wip.PauseOnExceptionsNone
	// PauseOnExceptionsUncaught suspends on uncaught exceptions.
	PauseOnExceptionsUncaught = wip.PauseOnExceptionsUncaught
	// PauseOnExceptionsAll suspends on every exception.
	PauseOnExceptionsAll = wip.PauseOnExceptionsAll
)

// ===== Session =====

// Session is the asynchronous debugging session behind a Client.
type Session = debugger.Session

// DebugContext is one suspension of the VM. It becomes invalid on resume.
type DebugContext = debugger.DebugContext

// DebugEventListener receives session notifications.
type DebugEventListener = debugger.DebugEventListener

// NopListener ignores every notification. Embed it to implement only some
// of DebugEventListener.
type NopListener = debugger.NopListener

// Snapshot is a JSON-friendly copy of a suspension.
type Snapshot = debugger.Snapshot

// State classifies why the VM is suspended.
type State = debugger.State

const (
	// StateNormal is a pause for a breakpoint, a step or a suspend request.
	StateNormal = debugger.StateNormal
	// StateException is a pause on a thrown exception.
	StateException = debugger.StateException
)

// StepAction selects how a suspended VM continues.
type StepAction = debugger.StepAction

const (
	// StepContinue resumes normal execution.
	StepContinue = debugger.StepContinue
	// StepIn steps into the next function call.
	StepIn = debugger.StepIn
	// StepOver steps to the next statement.
	StepOver = debugger.StepOver
	// StepOut runs until the current function returns.
	StepOut = debugger.StepOut
)

// ParseStepAction parses "continue", "in", "over" or "out".
func ParseStepAction(s string) (StepAction, error) {
	return debugger.ParseStepAction(s)
}

// ===== Scripts and breakpoints =====

// Script is a script compiled by the VM.
type Script = debugger.Script

// BreakpointSpec describes where to break. Positions are 0-based.
type BreakpointSpec = debugger.BreakpointSpec

// Breakpoint is a breakpoint known to the session.
type Breakpoint = debugger.Breakpoint

// ChangeDescription describes the effect of a live edit.
type ChangeDescription = debugger.ChangeDescription

// Version identifies the VM.
type Version = debugger.Version

// ===== Values =====

// Value is the outcome of an evaluation.
type Value = evaluate.Value

// RemoteObject is a VM value as the protocol describes it.
type RemoteObject = wip.RemoteObject

// CallFrame is one frame of a suspended stack.
type CallFrame = wip.CallFrame

// ===== Asynchronous completion =====

// SyncCallback is released once an asynchronous operation and everything it
// started has finished.
type SyncCallback = relay.SyncCallback

// Ok proves an asynchronous call has taken responsibility for its
// SyncCallback.
type Ok = relay.Ok

// SyncFunc adapts a function to SyncCallback.
type SyncFunc = relay.SyncFunc

// Gate is a one-shot SyncCallback that callers can block on.
type Gate = relay.Gate

// NewGate creates a gate with the default timeouts.
func NewGate() *Gate {
	return relay.NewGate()
}
