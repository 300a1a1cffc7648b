package debugger

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
	"github.com/cczw2010/chromedevtools/internal/wiptest"
)

func TestUpdateScript_CommitReloadsSourceBeforeRelease(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerSetScriptSource, map[string]any{})
	vm.Handle(wip.MethodDebuggerGetScriptSource, func(json.RawMessage) (any, *wiptest.Error) {
		return nil, wiptest.NoReply
	})

	s, _ := newSession(t, vm, Options{})
	vm.Emit(wip.EventDebuggerScriptParsed, map[string]any{"scriptId": "7", "url": "a.js"})

	gate := relay.NewGate()

	var (
		change  *ChangeDescription
		changed bool
	)

	ok := s.UpdateScript(context.Background(), "7", "let y = 2;", false,
		func(c *ChangeDescription, err error) {
			require.NoError(t, err)

			change, changed = c, true
		}, gate)

	require.Eventually(t, func() bool {
		_, sent := vm.Last(wip.MethodDebuggerGetScriptSource)

		return sent
	}, time.Second, 5*time.Millisecond)

	require.False(t, gate.Released())

	cmd, _ := vm.Last(wip.MethodDebuggerGetScriptSource)
	vm.Respond(cmd.ID, map[string]any{"scriptSource": "let y = 2;"})

	require.NoError(t, gate.AcquireDefault(ok))
	require.True(t, changed)
	require.Nil(t, change)

	// The refreshed source is served from the cache.
	var src string

	s.ScriptSource(context.Background(), "7", func(text string, err error) { src = text }, nil)
	require.Equal(t, "let y = 2;", src)
	require.Len(t, vm.Commands(), 2)
}

func TestUpdateScript_PreviewDoesNotReload(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerSetScriptSource, map[string]any{
		"stackChanged": true,
		"callFrames":   []map[string]any{{"callFrameId": "f", "functionName": "g", "location": map[string]any{"scriptId": "7", "lineNumber": 1}}},
	})

	s, _ := newSession(t, vm, Options{})

	gate := relay.NewGate()

	var change *ChangeDescription

	ok := s.UpdateScript(context.Background(), "7", "src", true,
		func(c *ChangeDescription, err error) {
			require.NoError(t, err)

			change = c
		}, gate)

	require.NoError(t, gate.AcquireDefault(ok))
	require.NotNil(t, change)
	assert.True(t, change.StackChanged)
	assert.Len(t, change.CallFrames, 1)

	cmd, _ := vm.Last(wip.MethodDebuggerSetScriptSource)
	assert.Contains(t, string(cmd.Params), `"dryRun":true`)
	require.Equal(t, []string{wip.MethodDebuggerSetScriptSource}, vm.Methods())
}

func TestUpdateScript_CompileError(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerSetScriptSource, map[string]any{
		"exceptionDetails": map[string]any{"exceptionId": 1, "text": "Unexpected end of input", "lineNumber": 0, "columnNumber": 9},
	})

	s, _ := newSession(t, vm, Options{})

	gate := relay.NewGate()

	var cbErr error

	ok := s.UpdateScript(context.Background(), "7", "function(", false,
		func(_ *ChangeDescription, err error) { cbErr = err }, gate)

	err := gate.AcquireDefault(ok)

	ce, isCompile := stderrors.AsType[*errors.CompileError](err)
	require.True(t, isCompile)
	assert.Equal(t, 9, ce.Column)
	require.Equal(t, err, cbErr)
	require.Equal(t, []string{wip.MethodDebuggerSetScriptSource}, vm.Methods())
}

func TestUpdateScript_StackChangeRefreshesContext(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerSetScriptSource, map[string]any{
		"stackChanged": true,
		"callFrames":   []map[string]any{{"callFrameId": "new-0", "functionName": "restarted", "location": map[string]any{"scriptId": "7", "lineNumber": 0}}},
	})
	vm.Reply(wip.MethodDebuggerGetScriptSource, map[string]any{"scriptSource": "x"})

	listener := newRecordingListener()

	s, _ := newSession(t, vm, Options{Listener: listener})
	runSession(t, s)

	dc := suspend(t, vm, listener, "other")

	gate := relay.NewGate()
	require.NoError(t, gate.AcquireDefault(s.UpdateScript(context.Background(), "7", "x", false, nil, gate)))

	frames := dc.CallFrames()
	require.Len(t, frames, 1)
	assert.Equal(t, "restarted", frames[0].FunctionName)
}
