package evaluate

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/protocol"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
	"github.com/cczw2010/chromedevtools/internal/wiptest"
)

func newProcessor(t *testing.T, vm *wiptest.FakeVM) *protocol.Processor {
	t.Helper()

	p := protocol.NewProcessor(slog.Default(), vm)
	require.NoError(t, p.Start(context.Background()))
	t.Cleanup(p.Stop)

	return p
}

func TestEvaluateSync_Global(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodRuntimeEvaluate, map[string]any{
		"result": map[string]any{"type": "number", "value": 2, "description": "2"},
	})

	ec := NewContext(slog.Default(), newProcessor(t, vm), GlobalVariant{})

	var got *Value

	err := ec.EvaluateSync(context.Background(), "1+1", nil, func(v *Value, err error) {
		require.NoError(t, err)

		got = v
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "1+1", got.Name)
	assert.False(t, got.Thrown)
	assert.Equal(t, "number", got.Object.Type)

	cmd, ok := vm.Last(wip.MethodRuntimeEvaluate)
	require.True(t, ok)

	var params wip.EvaluateParams
	require.NoError(t, json.Unmarshal(cmd.Params, &params))
	assert.Equal(t, "1+1", params.Expression)
}

func TestEvaluateAsync_AdditionalContextRejected(t *testing.T) {
	vm := wiptest.New()
	ec := NewContext(slog.Default(), newProcessor(t, vm), GlobalVariant{})

	gate := relay.NewGate()

	var (
		calls  atomic.Int32
		gotErr error
	)

	ok := ec.EvaluateAsync(context.Background(), "x", map[string]string{"x": "1"},
		func(v *Value, err error) {
			calls.Add(1)
			gotErr = err

			assert.Nil(t, v)
		}, gate)

	require.True(t, ok.Valid())
	require.True(t, gate.Released())
	require.ErrorIs(t, gate.Err(), errors.ErrAdditionalContextUnsupported)
	require.Equal(t, int32(1), calls.Load())
	require.ErrorIs(t, gotErr, errors.ErrAdditionalContextUnsupported)
	require.Equal(t, "Additional context feature not supported yet", gotErr.Error())
	require.Empty(t, vm.Commands())
}

func TestEvaluateAsync_EmptyAdditionalContextStillRejected(t *testing.T) {
	vm := wiptest.New()
	ec := NewContext(slog.Default(), newProcessor(t, vm), GlobalVariant{})

	var gotErr error

	ec.EvaluateAsync(context.Background(), "x", map[string]string{},
		func(_ *Value, err error) { gotErr = err }, nil)

	require.ErrorIs(t, gotErr, errors.ErrAdditionalContextUnsupported)
	require.Empty(t, vm.Commands())
}

func TestEvaluateSync_AdditionalContextReturnsError(t *testing.T) {
	vm := wiptest.New()
	ec := NewContext(slog.Default(), newProcessor(t, vm), GlobalVariant{})

	var cbErr error

	err := ec.EvaluateSync(context.Background(), "x", map[string]string{"x": "1"},
		func(_ *Value, err error) { cbErr = err })

	require.ErrorIs(t, err, errors.ErrAdditionalContextUnsupported)
	require.ErrorIs(t, cbErr, errors.ErrAdditionalContextUnsupported)
	require.Empty(t, vm.Commands())
}

func TestEvaluateSync_ThrownIsSuccess(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodRuntimeEvaluate, map[string]any{
		"result":    map[string]any{"type": "object", "className": "ReferenceError", "description": "ReferenceError: y is not defined"},
		"wasThrown": true,
	})

	ec := NewContext(slog.Default(), newProcessor(t, vm), GlobalVariant{})

	v, err := ec.Evaluate(context.Background(), "y")
	require.NoError(t, err)
	require.True(t, v.Thrown)
	assert.Equal(t, ExceptionName, v.Name)
	assert.Equal(t, "ReferenceError", v.Object.ClassName)
}

func TestEvaluateSync_CallFrame(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerEvaluateOnCallFrame, map[string]any{
		"result": map[string]any{"type": "string", "value": "local"},
	})

	ec := NewContext(slog.Default(), newProcessor(t, vm), CallFrameVariant{CallFrameID: "frame-0"}).
		WithObjectGroup("console")

	v, err := ec.Evaluate(context.Background(), "name")
	require.NoError(t, err)
	assert.Equal(t, "local", v.Object.String())

	cmd, ok := vm.Last(wip.MethodDebuggerEvaluateOnCallFrame)
	require.True(t, ok)

	var params wip.EvaluateOnCallFrameParams
	require.NoError(t, json.Unmarshal(cmd.Params, &params))
	assert.Equal(t, "frame-0", params.CallFrameID)
	assert.Equal(t, "console", params.ObjectGroup)
}

func TestEvaluateSync_ProtocolError(t *testing.T) {
	vm := wiptest.New()
	vm.Fail(wip.MethodRuntimeEvaluate, -32000, "Cannot find context with specified id")

	ec := NewContext(slog.Default(), newProcessor(t, vm), GlobalVariant{})

	var cbErr error

	err := ec.EvaluateSync(context.Background(), "1", nil, func(_ *Value, err error) { cbErr = err })
	require.Error(t, err)

	pe, ok := stderrors.AsType[*errors.ProtocolError](cbErr)
	require.True(t, ok)
	assert.Equal(t, wip.MethodRuntimeEvaluate, pe.Method)
}

func TestEvaluateSync_MalformedResultFails(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodRuntimeEvaluate, map[string]any{"unexpected": true})

	ec := NewContext(slog.Default(), newProcessor(t, vm), GlobalVariant{})

	var (
		calls atomic.Int32
		cbErr error
	)

	err := ec.EvaluateSync(context.Background(), "1", nil, func(_ *Value, err error) {
		calls.Add(1)
		cbErr = err
	})

	require.Equal(t, int32(1), calls.Load())

	_, isDecode := stderrors.AsType[*errors.DecodeError](cbErr)
	require.True(t, isDecode)
	require.ErrorIs(t, err, cbErr)
}

type invalidVariant struct {
	GlobalVariant
}

func (invalidVariant) Validate() error { return errors.ErrContextInvalid }

func TestEvaluateAsync_InvalidVariantNoRoundTrip(t *testing.T) {
	vm := wiptest.New()
	ec := NewContext(slog.Default(), newProcessor(t, vm), invalidVariant{})

	gate := relay.NewGate()

	var cbErr error

	ok := ec.EvaluateAsync(context.Background(), "1", nil, func(_ *Value, err error) { cbErr = err }, gate)

	require.ErrorIs(t, gate.AcquireDefault(ok), errors.ErrContextInvalid)
	require.ErrorIs(t, cbErr, errors.ErrContextInvalid)
	require.Empty(t, vm.Commands())
}

func TestEvaluateAsync_NilCallback(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodRuntimeEvaluate, map[string]any{
		"result": map[string]any{"type": "undefined"},
	})

	ec := NewContext(slog.Default(), newProcessor(t, vm), GlobalVariant{})

	gate := relay.NewGate()
	ok := ec.EvaluateAsync(context.Background(), "void 0", nil, nil, gate)

	require.NoError(t, gate.AcquireDefault(ok))
}
