package wip

// Command names.
const (
	MethodRuntimeEnable   = "Runtime.enable"
	MethodRuntimeEvaluate = "Runtime.evaluate"

	MethodRuntimeRunIfWaitingForDebugger = "Runtime.runIfWaitingForDebugger"

	MethodDebuggerEnable               = "Debugger.enable"
	MethodDebuggerDisable              = "Debugger.disable"
	MethodDebuggerPause                = "Debugger.pause"
	MethodDebuggerResume               = "Debugger.resume"
	MethodDebuggerStepInto             = "Debugger.stepInto"
	MethodDebuggerStepOver             = "Debugger.stepOver"
	MethodDebuggerStepOut              = "Debugger.stepOut"
	MethodDebuggerEvaluateOnCallFrame  = "Debugger.evaluateOnCallFrame"
	MethodDebuggerSetBreakpointByURL   = "Debugger.setBreakpointByUrl"
	MethodDebuggerRemoveBreakpoint     = "Debugger.removeBreakpoint"
	MethodDebuggerSetBreakpointsActive = "Debugger.setBreakpointsActive"
	MethodDebuggerSetPauseOnExceptions = "Debugger.setPauseOnExceptions"
	MethodDebuggerGetScriptSource      = "Debugger.getScriptSource"
	MethodDebuggerSetScriptSource      = "Debugger.setScriptSource"
)

// Event names.
const (
	EventDebuggerPaused       = "Debugger.paused"
	EventDebuggerResumed      = "Debugger.resumed"
	EventDebuggerScriptParsed = "Debugger.scriptParsed"
	EventRuntimeContextsClear = "Runtime.executionContextsCleared"
	EventInspectorDetached    = "Inspector.detached"
)

// PauseOnExceptionsState selects which exceptions pause execution.
type PauseOnExceptionsState string

const (
	PauseOnExceptionsNone     PauseOnExceptionsState = "none"
	PauseOnExceptionsUncaught PauseOnExceptionsState = "uncaught"
	PauseOnExceptionsAll      PauseOnExceptionsState = "all"
)

// PauseReason values reported by Debugger.paused that the session interprets.
const (
	PauseReasonException        = "exception"
	PauseReasonPromiseRejection = "promiseRejection"
)
