package debugger

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
	"github.com/cczw2010/chromedevtools/internal/wiptest"
)

func setBreakpoint(t *testing.T, s *Session, spec BreakpointSpec) *Breakpoint {
	t.Helper()

	gate := relay.NewGate()

	var bp *Breakpoint

	ok := s.SetBreakpoint(context.Background(), spec, func(b *Breakpoint, err error) {
		require.NoError(t, err)

		bp = b
	}, gate)
	require.NoError(t, gate.AcquireDefault(ok))

	return bp
}

func TestSetBreakpoint_Enabled(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerSetBreakpointByURL, map[string]any{
		"breakpointId": "1:4:0:file:///app/main.js",
		"locations":    []map[string]any{{"scriptId": "7", "lineNumber": 4, "columnNumber": 2}},
	})

	s, _ := newSession(t, vm, Options{})

	bp := setBreakpoint(t, s, BreakpointSpec{URL: "file:///app/main.js", Line: 4, Condition: "i > 3", Enabled: true})

	require.Equal(t, "1:4:0:file:///app/main.js", bp.ID)
	require.False(t, bp.Local())
	require.Len(t, bp.Locations, 1)

	cmd, ok := vm.Last(wip.MethodDebuggerSetBreakpointByURL)
	require.True(t, ok)

	var params wip.SetBreakpointByURLParams
	require.NoError(t, json.Unmarshal(cmd.Params, &params))
	assert.Equal(t, 4, params.LineNumber)
	assert.Equal(t, "i > 3", params.Condition)
}

func TestSetBreakpoint_DisabledIsLocal(t *testing.T) {
	vm := wiptest.New()
	s, _ := newSession(t, vm, Options{})

	bp := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 1})

	require.True(t, bp.Local())
	require.Empty(t, vm.Commands())
	require.Len(t, s.Breakpoints(), 1)
}

func TestRemoveBreakpoint(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerSetBreakpointByURL, map[string]any{"breakpointId": "bp-remote"})

	s, _ := newSession(t, vm, Options{})

	local := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 1})
	remote := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 2, Enabled: true})

	var listed []Breakpoint

	s.ListBreakpoints(func(bps []Breakpoint, err error) {
		require.NoError(t, err)

		listed = bps
	}, nil)
	require.Len(t, listed, 2)
	assert.Equal(t, local.ID, listed[0].ID)
	assert.Equal(t, remote.ID, listed[1].ID)

	for _, id := range []string{local.ID, remote.ID} {
		gate := relay.NewGate()
		ok := s.RemoveBreakpoint(context.Background(), id, func(err error) {
			require.NoError(t, err)
		}, gate)
		require.NoError(t, gate.AcquireDefault(ok))
	}

	require.Empty(t, s.Breakpoints())
	require.Equal(t, []string{wip.MethodDebuggerSetBreakpointByURL, wip.MethodDebuggerRemoveBreakpoint}, vm.Methods())
}

func TestRemoveBreakpoint_FailureKeepsEntry(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerSetBreakpointByURL, map[string]any{"breakpointId": "bp-remote"})
	vm.Fail(wip.MethodDebuggerRemoveBreakpoint, -32000, "Breakpoint not found")

	s, _ := newSession(t, vm, Options{})
	setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 2, Enabled: true})

	gate := relay.NewGate()
	ok := s.RemoveBreakpoint(context.Background(), "bp-remote", nil, gate)

	require.Error(t, gate.AcquireDefault(ok))
	require.Len(t, s.Breakpoints(), 1)
}

func TestEnableBreakpointsAndBreakOnException(t *testing.T) {
	vm := wiptest.New()
	s, _ := newSession(t, vm, Options{})

	gate := relay.NewGate()
	require.NoError(t, gate.AcquireDefault(s.EnableBreakpoints(context.Background(), false, nil, gate)))

	gate = relay.NewGate()
	require.NoError(t, gate.AcquireDefault(
		s.SetBreakOnException(context.Background(), wip.PauseOnExceptionsUncaught, nil, gate)))

	active, _ := vm.Last(wip.MethodDebuggerSetBreakpointsActive)
	assert.JSONEq(t, `{"active":false}`, string(active.Params))

	pause, _ := vm.Last(wip.MethodDebuggerSetPauseOnExceptions)
	assert.JSONEq(t, `{"state":"uncaught"}`, string(pause.Params))
}

func updateBreakpoint(t *testing.T, s *Session, id string, enabled bool, condition string) (*Breakpoint, error) {
	t.Helper()

	gate := relay.NewGate()

	var bp *Breakpoint

	ok := s.UpdateBreakpoint(context.Background(), id, enabled, condition, func(b *Breakpoint, _ error) {
		bp = b
	}, gate)

	return bp, gate.AcquireDefault(ok)
}

// numberedBreakpoints answers setBreakpointByUrl with bp-1, bp-2, ...
func numberedBreakpoints(vm *wiptest.FakeVM) {
	n := 0

	vm.Handle(wip.MethodDebuggerSetBreakpointByURL, func(json.RawMessage) (any, *wiptest.Error) {
		n++

		return map[string]any{"breakpointId": fmt.Sprintf("bp-%d", n)}, nil
	})
}

func TestUpdateBreakpoint_EnableLocal(t *testing.T) {
	vm := wiptest.New()
	numberedBreakpoints(vm)

	s, _ := newSession(t, vm, Options{})

	first := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 1})
	second := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 9})
	require.True(t, first.Local())

	bp, err := updateBreakpoint(t, s, first.ID, true, "n > 2")
	require.NoError(t, err)
	require.Equal(t, "bp-1", bp.ID)
	require.True(t, bp.Enabled)
	require.False(t, bp.Local())

	cmd, ok := vm.Last(wip.MethodDebuggerSetBreakpointByURL)
	require.True(t, ok)

	var params wip.SetBreakpointByURLParams
	require.NoError(t, json.Unmarshal(cmd.Params, &params))
	assert.Equal(t, 1, params.LineNumber)
	assert.Equal(t, "n > 2", params.Condition)

	// The enabled breakpoint keeps its place ahead of the later one.
	bps := s.Breakpoints()
	require.Len(t, bps, 2)
	assert.Equal(t, "bp-1", bps[0].ID)
	assert.Equal(t, second.ID, bps[1].ID)
}

func TestUpdateBreakpoint_EnableLocalFailureKeepsLocal(t *testing.T) {
	vm := wiptest.New()
	vm.Fail(wip.MethodDebuggerSetBreakpointByURL, -32000, "Breakpoint at specified location already exists.")

	s, _ := newSession(t, vm, Options{})
	local := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 1})

	_, err := updateBreakpoint(t, s, local.ID, true, "")
	require.Error(t, err)

	bps := s.Breakpoints()
	require.Len(t, bps, 1)
	assert.Equal(t, local.ID, bps[0].ID)
	assert.False(t, bps[0].Enabled)
}

func TestUpdateBreakpoint_DisableRemote(t *testing.T) {
	vm := wiptest.New()
	numberedBreakpoints(vm)

	s, _ := newSession(t, vm, Options{})
	remote := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 3, Condition: "x", Enabled: true})

	bp, err := updateBreakpoint(t, s, remote.ID, false, "x")
	require.NoError(t, err)
	require.True(t, bp.Local())
	require.False(t, bp.Enabled)
	require.Equal(t, "x", bp.Condition)

	cmd, ok := vm.Last(wip.MethodDebuggerRemoveBreakpoint)
	require.True(t, ok)
	assert.JSONEq(t, `{"breakpointId":"bp-1"}`, string(cmd.Params))

	bps := s.Breakpoints()
	require.Len(t, bps, 1)
	assert.Equal(t, bp.ID, bps[0].ID)

	// And back on again.
	bp, err = updateBreakpoint(t, s, bp.ID, true, "x")
	require.NoError(t, err)
	require.Equal(t, "bp-2", bp.ID)
	require.Equal(t, []string{
		wip.MethodDebuggerSetBreakpointByURL,
		wip.MethodDebuggerRemoveBreakpoint,
		wip.MethodDebuggerSetBreakpointByURL,
	}, vm.Methods())
}

func TestUpdateBreakpoint_ConditionChangeRecreates(t *testing.T) {
	vm := wiptest.New()
	numberedBreakpoints(vm)

	s, _ := newSession(t, vm, Options{})
	remote := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 3, Condition: "i > 1", Enabled: true})

	bp, err := updateBreakpoint(t, s, remote.ID, true, "i > 5")
	require.NoError(t, err)
	require.Equal(t, "bp-2", bp.ID)
	require.Equal(t, "i > 5", bp.Condition)

	require.Equal(t, []string{
		wip.MethodDebuggerSetBreakpointByURL,
		wip.MethodDebuggerRemoveBreakpoint,
		wip.MethodDebuggerSetBreakpointByURL,
	}, vm.Methods())

	bps := s.Breakpoints()
	require.Len(t, bps, 1)
	assert.Equal(t, "bp-2", bps[0].ID)
}

func TestUpdateBreakpoint_ConditionChangeSetFailureDemotes(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerSetBreakpointByURL, map[string]any{"breakpointId": "bp-remote"})

	s, _ := newSession(t, vm, Options{})
	remote := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 3, Enabled: true})

	vm.Fail(wip.MethodDebuggerSetBreakpointByURL, -32000, "Invalid condition")

	_, err := updateBreakpoint(t, s, remote.ID, true, "(((")
	require.Error(t, err)

	bps := s.Breakpoints()
	require.Len(t, bps, 1)
	assert.True(t, bps[0].Local())
	assert.False(t, bps[0].Enabled)
	assert.Equal(t, "(((", bps[0].Condition)
}

func TestUpdateBreakpoint_NoChangeAndLocalCondition(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerSetBreakpointByURL, map[string]any{"breakpointId": "bp-remote"})

	s, _ := newSession(t, vm, Options{})
	remote := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 3, Condition: "c", Enabled: true})
	local := setBreakpoint(t, s, BreakpointSpec{URL: "a.js", Line: 4})

	bp, err := updateBreakpoint(t, s, remote.ID, true, "c")
	require.NoError(t, err)
	require.Equal(t, remote.ID, bp.ID)

	bp, err = updateBreakpoint(t, s, local.ID, false, "d")
	require.NoError(t, err)
	require.Equal(t, local.ID, bp.ID)
	require.Equal(t, "d", bp.Condition)

	require.Equal(t, []string{wip.MethodDebuggerSetBreakpointByURL}, vm.Methods())
}

func TestUpdateBreakpoint_Unknown(t *testing.T) {
	vm := wiptest.New()
	s, _ := newSession(t, vm, Options{})

	_, err := updateBreakpoint(t, s, "nope", true, "")
	require.ErrorIs(t, err, errors.ErrBreakpointNotFound)
	require.Empty(t, vm.Commands())
}
