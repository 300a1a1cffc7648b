package errors

import (
	"errors"
	"fmt"
)

// DebugSDKError is the base interface for all SDK errors.
type DebugSDKError interface {
	error
	IsDebugSDKError() bool
}

// Compile-time verification that all error types implement DebugSDKError.
var (
	_ DebugSDKError = (*NodeNotFoundError)(nil)
	_ DebugSDKError = (*ConnectionError)(nil)
	_ DebugSDKError = (*ProcessError)(nil)
	_ DebugSDKError = (*DisconnectedError)(nil)
	_ DebugSDKError = (*ProtocolError)(nil)
	_ DebugSDKError = (*DecodeError)(nil)
	_ DebugSDKError = (*CompileError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrClientNotConnected indicates the client is not connected.
	ErrClientNotConnected = errors.New("client not connected")

	// ErrClientAlreadyConnected indicates the client is already connected.
	ErrClientAlreadyConnected = errors.New("client already connected")

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.New("client closed: clients are single-use, create a new one with NewClient()")

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.New("transport not connected")

	// ErrDisconnected indicates the debugging session has lost its connection.
	// Every operation issued after closure fails with an error wrapping it.
	ErrDisconnected = errors.New("debug session disconnected")

	// ErrSessionClosed indicates the session was closed locally.
	ErrSessionClosed = errors.New("debug session closed")

	// ErrRequestTimeout indicates a blocking wait ran out of time.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrRequestCancelled indicates a pending request was cancelled by its caller.
	ErrRequestCancelled = errors.New("request cancelled")

	// ErrAdditionalContextUnsupported is returned for evaluate requests that carry
	// supplemental named-variable context.
	ErrAdditionalContextUnsupported = errors.New("Additional context feature not supported yet") //nolint:staticcheck // wire-visible message

	// ErrRelayAbandoned indicates an asynchronous step returned without either
	// finishing or handing off its sync obligation.
	ErrRelayAbandoned = errors.New("relay abandoned without completion")

	// ErrContextInvalid indicates a suspended debug context was used after the
	// VM resumed.
	ErrContextInvalid = errors.New("debug context is no longer valid")

	// ErrFrameOutOfRange indicates a call frame index beyond the suspended stack.
	ErrFrameOutOfRange = errors.New("call frame index out of range")

	// ErrNotSuspended indicates an operation that needs a suspended VM was
	// issued while it was running.
	ErrNotSuspended = errors.New("vm is not suspended")

	// ErrBreakpointNotFound indicates a breakpoint ID unknown to the session.
	ErrBreakpointNotFound = errors.New("breakpoint not found")

	// ErrNoTarget indicates target discovery found nothing to attach to.
	ErrNoTarget = errors.New("no debuggable target found")
)

// NodeNotFoundError indicates the node binary was not found.
type NodeNotFoundError struct {
	SearchedPaths []string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node binary not found in: %v", e.SearchedPaths)
}

// IsDebugSDKError implements DebugSDKError.
func (e *NodeNotFoundError) IsDebugSDKError() bool { return true }

// ConnectionError indicates failure to establish the debugger connection.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("failed to connect to debugger: %v", e.Err)
	}

	return fmt.Sprintf("failed to connect to debugger at %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsDebugSDKError implements DebugSDKError.
func (e *ConnectionError) IsDebugSDKError() bool { return true }

// ProcessError indicates a launched JavaScript VM process failed.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("VM process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("VM process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsDebugSDKError implements DebugSDKError.
func (e *ProcessError) IsDebugSDKError() bool { return true }

// DisconnectedError is delivered to every request still pending when the
// transport closes.
type DisconnectedError struct {
	Reason error
}

func (e *DisconnectedError) Error() string {
	if e.Reason == nil {
		return ErrDisconnected.Error()
	}

	return fmt.Sprintf("%s: %v", ErrDisconnected.Error(), e.Reason)
}

// Is reports ErrDisconnected as a match so callers need not unwrap the reason.
func (e *DisconnectedError) Is(target error) bool {
	return target == ErrDisconnected
}

func (e *DisconnectedError) Unwrap() error {
	return e.Reason
}

// IsDebugSDKError implements DebugSDKError.
func (e *DisconnectedError) IsDebugSDKError() bool { return true }

// ProtocolError is an error response returned by the remote VM for one request.
type ProtocolError struct {
	Method  string
	Code    int
	Message string
	Data    string
}

func (e *ProtocolError) Error() string {
	msg := e.Message
	if e.Data != "" {
		msg += " (" + e.Data + ")"
	}

	if e.Method == "" {
		return fmt.Sprintf("protocol error %d: %s", e.Code, msg)
	}

	return fmt.Sprintf("%s: protocol error %d: %s", e.Method, e.Code, msg)
}

// IsDebugSDKError implements DebugSDKError.
func (e *ProtocolError) IsDebugSDKError() bool { return true }

// DecodeError indicates a response payload could not be decoded into the
// shape the caller expected. The raw payload is preserved.
type DecodeError struct {
	Method  string
	RawData string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDebugSDKError implements DebugSDKError.
func (e *DecodeError) IsDebugSDKError() bool { return true }

// CompileError reports that the VM rejected new script source during a live
// edit. Line and Column are 0-based.
type CompileError struct {
	ScriptID string
	Line     int
	Column   int
	Message  string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("script %s failed to compile at %d:%d: %s",
		e.ScriptID, e.Line+1, e.Column+1, e.Message)
}

// IsDebugSDKError implements DebugSDKError.
func (e *CompileError) IsDebugSDKError() bool { return true }
