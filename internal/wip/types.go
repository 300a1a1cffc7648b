package wip

import (
	"encoding/json"
	"fmt"
)

// RemoteObject mirrors a value that lives in the remote VM.
//
// Primitive values arrive inline in Value. Objects carry an ObjectID handle
// unless the request asked for returnByValue.
type RemoteObject struct {
	Type        string          `json:"type"`
	Subtype     string          `json:"subtype,omitempty"`
	ClassName   string          `json:"className,omitempty"`
	Value       json.RawMessage `json:"value,omitempty"`
	Description string          `json:"description,omitempty"`
	ObjectID    string          `json:"objectId,omitempty"`
}

// DecodeValue unmarshals the inline value into v.
func (o *RemoteObject) DecodeValue(v any) error {
	if len(o.Value) == 0 {
		return fmt.Errorf("remote object of type %q has no inline value", o.Type)
	}

	return json.Unmarshal(o.Value, v)
}

// String returns a short textual form: the description when present,
// otherwise the raw inline value, otherwise the type.
func (o *RemoteObject) String() string {
	switch {
	case o.Description != "":
		return o.Description
	case len(o.Value) > 0:
		var s string
		if err := json.Unmarshal(o.Value, &s); err == nil {
			return s
		}

		return string(o.Value)
	default:
		return o.Type
	}
}

// ExceptionDetails describes an exception raised while evaluating or compiling.
type ExceptionDetails struct {
	ExceptionID  int           `json:"exceptionId"`
	Text         string        `json:"text"`
	LineNumber   int           `json:"lineNumber"`
	ColumnNumber int           `json:"columnNumber"`
	ScriptID     string        `json:"scriptId,omitempty"`
	URL          string        `json:"url,omitempty"`
	Exception    *RemoteObject `json:"exception,omitempty"`
}

// Location is a position inside a parsed script. Lines and columns are 0-based.
type Location struct {
	ScriptID     string `json:"scriptId"`
	LineNumber   int    `json:"lineNumber"`
	ColumnNumber int    `json:"columnNumber,omitempty"`
}

// Scope is one entry of a call frame's scope chain.
type Scope struct {
	Type   string       `json:"type"`
	Object RemoteObject `json:"object"`
	Name   string       `json:"name,omitempty"`
}

// CallFrame is a stack frame of a suspended VM.
type CallFrame struct {
	CallFrameID  string        `json:"callFrameId"`
	FunctionName string        `json:"functionName"`
	Location     Location      `json:"location"`
	URL          string        `json:"url,omitempty"`
	ScopeChain   []Scope       `json:"scopeChain,omitempty"`
	This         *RemoteObject `json:"this,omitempty"`
}

// EvaluateParams are the parameters of Runtime.evaluate.
type EvaluateParams struct {
	Expression            string `json:"expression"`
	ObjectGroup           string `json:"objectGroup,omitempty"`
	IncludeCommandLineAPI bool   `json:"includeCommandLineAPI,omitempty"`
	Silent                bool   `json:"silent,omitempty"`
	ContextID             int    `json:"contextId,omitempty"`
	ReturnByValue         bool   `json:"returnByValue,omitempty"`
}

// EvaluateResult is the result of Runtime.evaluate and
// Debugger.evaluateOnCallFrame.
type EvaluateResult struct {
	Result           RemoteObject      `json:"result"`
	WasThrown        bool              `json:"wasThrown,omitempty"`
	ExceptionDetails *ExceptionDetails `json:"exceptionDetails,omitempty"`
}

// Thrown reports whether the evaluation raised an exception. Older backends
// set wasThrown; newer ones only send exceptionDetails.
func (r *EvaluateResult) Thrown() bool {
	return r.WasThrown || r.ExceptionDetails != nil
}

// EvaluateOnCallFrameParams are the parameters of Debugger.evaluateOnCallFrame.
type EvaluateOnCallFrameParams struct {
	CallFrameID   string `json:"callFrameId"`
	Expression    string `json:"expression"`
	ObjectGroup   string `json:"objectGroup,omitempty"`
	Silent        bool   `json:"silent,omitempty"`
	ReturnByValue bool   `json:"returnByValue,omitempty"`
}

// SetBreakpointByURLParams are the parameters of Debugger.setBreakpointByUrl.
type SetBreakpointByURLParams struct {
	LineNumber   int    `json:"lineNumber"`
	URL          string `json:"url,omitempty"`
	URLRegex     string `json:"urlRegex,omitempty"`
	ColumnNumber int    `json:"columnNumber,omitempty"`
	Condition    string `json:"condition,omitempty"`
}

// SetBreakpointByURLResult is the result of Debugger.setBreakpointByUrl.
type SetBreakpointByURLResult struct {
	BreakpointID string     `json:"breakpointId"`
	Locations    []Location `json:"locations"`
}

// RemoveBreakpointParams are the parameters of Debugger.removeBreakpoint.
type RemoveBreakpointParams struct {
	BreakpointID string `json:"breakpointId"`
}

// SetBreakpointsActiveParams are the parameters of Debugger.setBreakpointsActive.
type SetBreakpointsActiveParams struct {
	Active bool `json:"active"`
}

// SetPauseOnExceptionsParams are the parameters of Debugger.setPauseOnExceptions.
type SetPauseOnExceptionsParams struct {
	State PauseOnExceptionsState `json:"state"`
}

// GetScriptSourceParams are the parameters of Debugger.getScriptSource.
type GetScriptSourceParams struct {
	ScriptID string `json:"scriptId"`
}

// GetScriptSourceResult is the result of Debugger.getScriptSource.
type GetScriptSourceResult struct {
	ScriptSource string `json:"scriptSource"`
}

// SetScriptSourceParams are the parameters of Debugger.setScriptSource.
type SetScriptSourceParams struct {
	ScriptID     string `json:"scriptId"`
	ScriptSource string `json:"scriptSource"`
	DryRun       bool   `json:"dryRun,omitempty"`
}

// SetScriptSourceResult is the result of Debugger.setScriptSource.
type SetScriptSourceResult struct {
	CallFrames       []CallFrame       `json:"callFrames,omitempty"`
	StackChanged     bool              `json:"stackChanged,omitempty"`
	ExceptionDetails *ExceptionDetails `json:"exceptionDetails,omitempty"`
}

// ScriptParsedEvent is the body of Debugger.scriptParsed.
type ScriptParsedEvent struct {
	ScriptID           string `json:"scriptId"`
	URL                string `json:"url"`
	StartLine          int    `json:"startLine"`
	StartColumn        int    `json:"startColumn"`
	EndLine            int    `json:"endLine"`
	EndColumn          int    `json:"endColumn"`
	ExecutionContextID int    `json:"executionContextId,omitempty"`
	Hash               string `json:"hash,omitempty"`
	SourceMapURL       string `json:"sourceMapURL,omitempty"`
}

// PausedEvent is the body of Debugger.paused.
type PausedEvent struct {
	CallFrames     []CallFrame     `json:"callFrames"`
	Reason         string          `json:"reason"`
	Data           json.RawMessage `json:"data,omitempty"`
	HitBreakpoints []string        `json:"hitBreakpoints,omitempty"`
}

// IsException reports whether the VM stopped on a thrown exception.
func (e *PausedEvent) IsException() bool {
	return e.Reason == PauseReasonException || e.Reason == PauseReasonPromiseRejection
}

// ExceptionObject decodes Data as the thrown value when the pause was caused
// by an exception.
func (e *PausedEvent) ExceptionObject() (*RemoteObject, bool) {
	if !e.IsException() || len(e.Data) == 0 {
		return nil, false
	}

	var obj RemoteObject
	if err := json.Unmarshal(e.Data, &obj); err != nil {
		return nil, false
	}

	return &obj, true
}
