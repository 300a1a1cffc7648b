package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	chromedevtools "github.com/cczw2010/chromedevtools"
	"github.com/cczw2010/chromedevtools/internal/wip"
	"github.com/cczw2010/chromedevtools/internal/wiptest"
)

// resetFlags restores every flag to its default so runs do not leak into
// each other through cobra's package-level commands.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}

		f.Changed = false
	}

	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)

	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, vm *wiptest.FakeVM, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)

	extraOptions = []chromedevtools.Option{
		chromedevtools.WithTransport(vm),
		chromedevtools.WithScriptsTimeout(time.Second),
	}
	t.Cleanup(func() { extraOptions = nil })

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--timeout", "5s",
	}, args...))

	err := rootCmd.Execute()

	return out.String(), err
}

// pauseOnStart makes the fake VM suspend once the client releases it.
func pauseOnStart(vm *wiptest.FakeVM, hit ...string) {
	vm.Handle(wip.MethodRuntimeRunIfWaitingForDebugger, func(json.RawMessage) (any, *wiptest.Error) {
		vm.Emit(wip.EventDebuggerPaused, map[string]any{
			"reason":         "other",
			"hitBreakpoints": hit,
			"callFrames": []map[string]any{{
				"callFrameId":  "frame-0",
				"functionName": "main",
				"location":     map[string]any{"scriptId": "7", "lineNumber": 2},
			}},
		})

		return map[string]any{}, nil
	})
}

func TestEval_Global(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodRuntimeEvaluate, map[string]any{
		"result": map[string]any{"type": "number", "value": 3, "description": "3"},
	})

	out, err := execute(t, vm, "eval", "1 + 2")
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"number","value":3,"description":"3"}`, out)
	require.True(t, vm.Closed())
}

func TestEval_Thrown(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodRuntimeEvaluate, map[string]any{
		"result":           map[string]any{"type": "object", "description": "Error: no"},
		"exceptionDetails": map[string]any{"text": "Uncaught"},
	})

	out, err := execute(t, vm, "eval", "boom()")
	require.ErrorIs(t, err, errUncaught)
	require.Contains(t, out, "Error: no")
}

func TestEval_InFrame(t *testing.T) {
	vm := wiptest.New()
	pauseOnStart(vm)
	vm.Reply(wip.MethodDebuggerEvaluateOnCallFrame, map[string]any{
		"result": map[string]any{"type": "string", "value": "local"},
	})

	out, err := execute(t, vm, "eval", "--frame", "0", "x")
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"string","value":"local"}`, out)

	cmd, ok := vm.Last(wip.MethodDebuggerEvaluateOnCallFrame)
	require.True(t, ok)
	require.Contains(t, string(cmd.Params), `"callFrameId":"frame-0"`)
}

func TestScripts(t *testing.T) {
	vm := wiptest.New()
	vm.Handle(wip.MethodDebuggerEnable, func(json.RawMessage) (any, *wiptest.Error) {
		vm.Emit(wip.EventDebuggerScriptParsed, map[string]any{"scriptId": "7", "url": "file:///app.js"})

		return map[string]any{}, nil
	})

	out, err := execute(t, vm, "scripts")
	require.NoError(t, err)

	var scripts []chromedevtools.Script
	require.NoError(t, json.Unmarshal([]byte(out), &scripts))
	require.Len(t, scripts, 1)
	require.Equal(t, "file:///app.js", scripts[0].URL)
}

func TestSource(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerGetScriptSource, map[string]any{"scriptSource": "main();\n"})

	out, err := execute(t, vm, "source", "7")
	require.NoError(t, err)
	require.Equal(t, "main();\n", out)
}

func TestBreak_RunsUntilHit(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodDebuggerSetBreakpointByURL, map[string]any{
		"breakpointId": "bp-1",
		"locations":    []map[string]any{{"scriptId": "7", "lineNumber": 2}},
	})
	pauseOnStart(vm, "bp-1")
	vm.Reply(wip.MethodDebuggerEvaluateOnCallFrame, map[string]any{
		"result": map[string]any{"type": "number", "value": 42, "description": "42"},
	})

	out, err := execute(t, vm, "break", "file:///app.js", "3", "--eval", "answer")
	require.NoError(t, err)

	var report hitReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Equal(t, "bp-1", report.Breakpoint.ID)
	require.Equal(t, 2, report.Breakpoint.Line)
	require.Equal(t, []string{"bp-1"}, report.Suspension.BreakpointsHit)
	require.Len(t, report.Evaluations, 1)
	require.Equal(t, "42", report.Evaluations[0].Description)

	cmd, ok := vm.Last(wip.MethodDebuggerSetBreakpointByURL)
	require.True(t, ok)
	require.Contains(t, string(cmd.Params), `"lineNumber":2`)

	_, resumed := vm.Last(wip.MethodDebuggerResume)
	require.True(t, resumed)
}

func TestBreak_InvalidLine(t *testing.T) {
	vm := wiptest.New()

	_, err := execute(t, vm, "break", "file:///app.js", "0")
	require.ErrorContains(t, err, "line must be a positive integer")
	require.Empty(t, vm.Commands())
}

func TestPause(t *testing.T) {
	vm := wiptest.New()
	vm.Handle(wip.MethodDebuggerPause, func(json.RawMessage) (any, *wiptest.Error) {
		vm.Emit(wip.EventDebuggerPaused, map[string]any{
			"reason":     "other",
			"callFrames": []map[string]any{{"callFrameId": "f0", "functionName": "tick", "location": map[string]any{"scriptId": "7", "lineNumber": 9}}},
		})

		return map[string]any{}, nil
	})

	out, err := execute(t, vm, "pause")
	require.NoError(t, err)

	var snap chromedevtools.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	require.Equal(t, "normal", snap.State)
	require.Equal(t, "f0", snap.CallFrames[0].CallFrameID)
}

func TestResume_Step(t *testing.T) {
	vm := wiptest.New()
	pauseOnStart(vm)
	vm.Handle(wip.MethodDebuggerStepOver, func(json.RawMessage) (any, *wiptest.Error) {
		vm.Emit(wip.EventDebuggerPaused, map[string]any{
			"reason":     "other",
			"callFrames": []map[string]any{{"callFrameId": "frame-1", "functionName": "main", "location": map[string]any{"scriptId": "7", "lineNumber": 3}}},
		})

		return map[string]any{}, nil
	})

	out, err := execute(t, vm, "resume", "over")
	require.NoError(t, err)

	var snap chromedevtools.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	require.Equal(t, "frame-1", snap.CallFrames[0].CallFrameID)
}

func TestResume_BadAction(t *testing.T) {
	_, err := execute(t, wiptest.New(), "resume", "sideways")
	require.ErrorContains(t, err, "unknown step action")
}

func TestVersion(t *testing.T) {
	vm := wiptest.New()
	vm.Reply(wip.MethodRuntimeEvaluate, map[string]any{
		"result": map[string]any{"type": "string", "value": `{"embedder":"node","raw":"v22.1.0"}`},
	})

	out, err := execute(t, vm, "version")
	require.NoError(t, err)
	require.Contains(t, out, "jsdebug version "+jsdebugVersion)
	require.Contains(t, out, "VM: node v22.1.0")
}

func TestConfigFileInvalidPauseMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("break_on_exception: sometimes\n"), 0o600))

	resetFlags(rootCmd)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs([]string{"--config", path, "scripts"})

	err := rootCmd.Execute()
	require.ErrorContains(t, err, "invalid config")
}
