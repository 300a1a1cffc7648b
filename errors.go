package chromedevtools

import "github.com/cczw2010/chromedevtools/internal/errors"

// Re-export error types from internal package

// NodeNotFoundError indicates the node binary was not found.
type NodeNotFoundError = errors.NodeNotFoundError

// ConnectionError indicates failure to reach the debugger.
type ConnectionError = errors.ConnectionError

// ProcessError indicates a launched node process failed.
type ProcessError = errors.ProcessError

// DisconnectedError is delivered to requests pending when the connection ends.
type DisconnectedError = errors.DisconnectedError

// ProtocolError is an error response from the VM.
type ProtocolError = errors.ProtocolError

// DecodeError indicates a VM response had an unexpected shape.
type DecodeError = errors.DecodeError

// CompileError indicates the VM rejected new script source.
type CompileError = errors.CompileError

// DebugSDKError is the base interface for all SDK errors.
type DebugSDKError = errors.DebugSDKError

// Re-export sentinel errors from internal package.
var (
	// ErrClientNotConnected indicates the client is not connected.
	ErrClientNotConnected = errors.ErrClientNotConnected

	// ErrClientAlreadyConnected indicates the client is already connected.
	ErrClientAlreadyConnected = errors.ErrClientAlreadyConnected

	// ErrClientClosed indicates the client has been closed and cannot be reused.
	ErrClientClosed = errors.ErrClientClosed

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.ErrTransportNotConnected

	// ErrDisconnected matches every failure caused by a lost connection.
	ErrDisconnected = errors.ErrDisconnected

	// ErrRequestTimeout indicates a request timed out.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrAdditionalContextUnsupported rejects evaluations with extra context.
	ErrAdditionalContextUnsupported = errors.ErrAdditionalContextUnsupported

	// ErrContextInvalid indicates a debug context was used after the VM resumed.
	ErrContextInvalid = errors.ErrContextInvalid

	// ErrFrameOutOfRange indicates a call frame index past the stack.
	ErrFrameOutOfRange = errors.ErrFrameOutOfRange

	// ErrNotSuspended indicates an operation needs a suspended VM.
	ErrNotSuspended = errors.ErrNotSuspended

	// ErrBreakpointNotFound indicates an unknown breakpoint ID.
	ErrBreakpointNotFound = errors.ErrBreakpointNotFound

	// ErrNoTarget indicates discovery found nothing to attach to.
	ErrNoTarget = errors.ErrNoTarget
)
