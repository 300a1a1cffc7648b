package debugger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/evaluate"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
	"github.com/cczw2010/chromedevtools/internal/wiptest"
)

func TestAwait_ReturnsCallbackValue(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerGetScriptSource, map[string]any{"scriptSource": "let x = 1;"})

	s, _ := newSession(t, vm, Options{})

	src, err := Await(context.Background(), func(cb func(string, error), sync relay.SyncCallback) relay.Ok {
		return s.ScriptSource(context.Background(), "42", cb, sync)
	})

	require.NoError(t, err)
	require.Equal(t, "let x = 1;", src)
}

func TestAwait_ProtocolError(t *testing.T) {
	vm := wiptest.New()
	vm.Fail(wip.MethodDebuggerSetBreakpointByURL, -32000, "Breakpoint at specified location already exists.")

	s, _ := newSession(t, vm, Options{})

	bp, err := Await(context.Background(), func(cb func(*Breakpoint, error), sync relay.SyncCallback) relay.Ok {
		return s.SetBreakpoint(context.Background(), BreakpointSpec{URL: "a.js", Enabled: true}, cb, sync)
	})

	require.Nil(t, bp)
	require.ErrorContains(t, err, "already exists")
}

func TestAwait_ContextCancelled(t *testing.T) {
	vm := wiptest.New()
	vm.Handle(wip.MethodDebuggerGetScriptSource, wiptest.Hang)

	s, _ := newSession(t, vm, Options{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := Await(ctx, func(cb func(string, error), sync relay.SyncCallback) relay.Ok {
		return s.ScriptSource(context.Background(), "1", cb, sync)
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAwaitErr(t *testing.T) {
	vm := wiptest.New()
	vm.Fail(wip.MethodDebuggerPause, -32000, "Can only perform operation while running")

	s, _ := newSession(t, vm, Options{})

	err := AwaitErr(context.Background(), func(cb ErrorCallback, sync relay.SyncCallback) relay.Ok {
		return s.Suspend(context.Background(), cb, sync)
	})

	require.ErrorContains(t, err, "while running")
}

func TestAwait_CallbackOnlyFailure(t *testing.T) {
	vm := wiptest.New()
	s, _ := newSession(t, vm, Options{})

	ec := s.GlobalEvaluateContext()

	v, err := Await(context.Background(), func(cb func(*evaluate.Value, error), sync relay.SyncCallback) relay.Ok {
		return ec.EvaluateAsync(context.Background(), "x", map[string]string{"x": "obj-1"}, cb, sync)
	})

	require.ErrorIs(t, err, errors.ErrAdditionalContextUnsupported)
	require.Nil(t, v)
	require.Empty(t, vm.Commands())
}
