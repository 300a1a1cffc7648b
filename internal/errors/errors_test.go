package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNodeNotFoundError(t *testing.T) {
	err := &NodeNotFoundError{
		SearchedPaths: []string{"/usr/bin/node", "$PATH"},
	}

	require.Equal(t, "node binary not found in: [/usr/bin/node $PATH]", err.Error())
	require.True(t, err.IsDebugSDKError())
}

func TestConnectionError(t *testing.T) {
	root := errors.New("dial failed")

	err := &ConnectionError{URL: "ws://127.0.0.1:9229/abc", Err: root}
	require.Equal(t, "failed to connect to debugger at ws://127.0.0.1:9229/abc: dial failed", err.Error())
	require.ErrorIs(t, err, root)

	noURL := &ConnectionError{Err: root}
	require.Equal(t, "failed to connect to debugger: dial failed", noURL.Error())
}

func TestProcessError_WithStderrOnly(t *testing.T) {
	err := &ProcessError{ExitCode: 1, Stderr: "SyntaxError"}

	require.Equal(t, "VM process failed (exit 1): SyntaxError", err.Error())
	require.NoError(t, err.Unwrap())
}

func TestDisconnectedError_MatchesSentinel(t *testing.T) {
	reason := errors.New("websocket: close 1006")
	err := &DisconnectedError{Reason: reason}

	require.ErrorIs(t, err, ErrDisconnected)
	require.ErrorIs(t, err, reason)
	require.Equal(t, "debug session disconnected: websocket: close 1006", err.Error())

	bare := &DisconnectedError{}
	require.Equal(t, "debug session disconnected", bare.Error())
}

func TestProtocolError(t *testing.T) {
	err := &ProtocolError{Method: "Debugger.resume", Code: -32000, Message: "Can only perform operation while paused."}
	require.Equal(t, "Debugger.resume: protocol error -32000: Can only perform operation while paused.", err.Error())

	withData := &ProtocolError{Code: -32602, Message: "Invalid params", Data: "expression: string value expected"}
	require.Equal(t, "protocol error -32602: Invalid params (expression: string value expected)", withData.Error())
}

func TestDecodeError(t *testing.T) {
	root := errors.New("unexpected token")
	err := &DecodeError{Method: "Runtime.evaluate", RawData: `{"result":`, Err: root}

	require.Equal(t, "failed to decode Runtime.evaluate response: unexpected token", err.Error())
	require.ErrorIs(t, err, root)

	asSDK, ok := errors.AsType[DebugSDKError](err)
	require.True(t, ok)
	require.True(t, asSDK.IsDebugSDKError())
}

func TestCompileError(t *testing.T) {
	err := &CompileError{ScriptID: "42", Line: 2, Column: 4, Message: "Unexpected token '}'"}
	require.Equal(t, "script 42 failed to compile at 3:5: Unexpected token '}'", err.Error())
	require.True(t, err.IsDebugSDKError())
}
