package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cczw2010/chromedevtools/internal/debugger"
	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/evaluate"
	"github.com/cczw2010/chromedevtools/internal/relay"
)

// Tool names.
const (
	ToolEvaluate         = "evaluate"
	ToolListScripts      = "list_scripts"
	ToolScriptSource     = "script_source"
	ToolSetBreakpoint    = "set_breakpoint"
	ToolRemoveBreakpoint = "remove_breakpoint"
	ToolUpdateBreakpoint = "update_breakpoint"
	ToolListBreakpoints  = "list_breakpoints"
	ToolPause            = "pause"
	ToolResume           = "resume"
	ToolStatus           = "status"
	ToolVersion          = "vm_version"
)

// debugTools adapts a session to tool handlers. Tool input line numbers are
// 1-based; results carry protocol objects unchanged, with 0-based positions.
type debugTools struct {
	sess *debugger.Session
}

// NewDebugServer creates a server exposing sess as MCP tools.
func NewDebugServer(sess *debugger.Session, name, version string) *Server {
	t := &debugTools{sess: sess}
	s := NewServer(name, version)

	s.AddTool(NewTool(ToolEvaluate,
		"Evaluate a JavaScript expression. With frame, evaluate in that call frame of the suspended VM (0 is innermost).",
		ObjectSchema(map[string]string{"expression": "string"}, map[string]string{"frame": "int"}),
	), t.evaluate)

	s.AddTool(NewTool(ToolListScripts,
		"List the scripts loaded by the VM.", nil), t.listScripts)

	s.AddTool(NewTool(ToolScriptSource,
		"Fetch the source text of a script by id.",
		ObjectSchema(map[string]string{"script_id": "string"}, nil),
	), t.scriptSource)

	s.AddTool(NewTool(ToolSetBreakpoint,
		"Set a breakpoint by script URL and 1-based line.",
		ObjectSchema(
			map[string]string{"url": "string", "line": "int"},
			map[string]string{"column": "int", "condition": "string", "disabled": "bool"},
		),
	), t.setBreakpoint)

	s.AddTool(NewTool(ToolRemoveBreakpoint,
		"Remove a breakpoint by id.",
		ObjectSchema(map[string]string{"id": "string"}, nil),
	), t.removeBreakpoint)

	s.AddTool(NewTool(ToolUpdateBreakpoint,
		"Enable or disable a breakpoint or change its condition. Omitted fields keep their value; the breakpoint id may change.",
		ObjectSchema(
			map[string]string{"id": "string"},
			map[string]string{"enabled": "bool", "condition": "string"},
		),
	), t.updateBreakpoint)

	s.AddTool(NewTool(ToolListBreakpoints,
		"List the breakpoints set in this session.", nil), t.listBreakpoints)

	s.AddTool(NewTool(ToolPause,
		"Suspend the VM at the next statement.", nil), t.pause)

	s.AddTool(NewTool(ToolResume,
		"Resume a suspended VM. action is continue (default), in, over or out.",
		ObjectSchema(nil, map[string]string{"action": "string"}),
	), t.resume)

	s.AddTool(NewTool(ToolStatus,
		"Report whether the VM is running or suspended, with the call stack when suspended.", nil), t.status)

	s.AddTool(NewTool(ToolVersion,
		"Report the VM embedder and version.", nil), t.version)

	return s
}

func (t *debugTools) evaluate(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return nil, err
	}

	expr, err := argString(args, "expression")
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	ec := t.sess.GlobalEvaluateContext()

	if _, ok := args["frame"]; ok {
		frame, err := argInt(args, "frame")
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		dc := t.sess.CurrentContext()
		if dc == nil {
			return ErrorResult(errors.ErrNotSuspended.Error()), nil
		}

		ec, err = dc.EvaluateContext(frame)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}
	}

	value, err := ec.Evaluate(ctx, expr)
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return valueResult(value), nil
}

// valueResult returns the raw remote object. A thrown value is an error
// result carrying the thrown object.
func valueResult(v *evaluate.Value) *mcp.CallToolResult {
	res := jsonResult(v.Object)
	res.IsError = v.Thrown

	return res
}

// jsonResult renders v as indented JSON text.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ErrorResult("encode result: " + err.Error())
	}

	return TextResult(string(data))
}

func (t *debugTools) listScripts(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scripts []debugger.Script

	err := t.sess.GetScripts(ctx, func(s []debugger.Script, _ error) {
		scripts = s
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	if scripts == nil {
		scripts = []debugger.Script{}
	}

	return jsonResult(scripts), nil
}

func (t *debugTools) scriptSource(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return nil, err
	}

	id, err := argString(args, "script_id")
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	src, err := debugger.Await(ctx, func(cb func(string, error), syncCb relay.SyncCallback) relay.Ok {
		return t.sess.ScriptSource(ctx, id, cb, syncCb)
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return TextResult(src), nil
}

func (t *debugTools) setBreakpoint(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return nil, err
	}

	url, err := argString(args, "url")
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	line, err := argInt(args, "line")
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	if line < 1 {
		return ErrorResult("line must be 1 or greater"), nil
	}

	spec := debugger.BreakpointSpec{URL: url, Line: line - 1, Enabled: true}

	if _, ok := args["column"]; ok {
		col, err := argInt(args, "column")
		if err != nil {
			return ErrorResult(err.Error()), nil
		}

		if col > 0 {
			spec.Column = col - 1
		}
	}

	spec.Condition, _ = args["condition"].(string)

	if disabled, _ := args["disabled"].(bool); disabled {
		spec.Enabled = false
	}

	bp, err := debugger.Await(ctx, func(cb func(*debugger.Breakpoint, error), syncCb relay.SyncCallback) relay.Ok {
		return t.sess.SetBreakpoint(ctx, spec, cb, syncCb)
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return jsonResult(bp), nil
}

func (t *debugTools) removeBreakpoint(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return nil, err
	}

	id, err := argString(args, "id")
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	err = debugger.AwaitErr(ctx, func(cb debugger.ErrorCallback, syncCb relay.SyncCallback) relay.Ok {
		return t.sess.RemoveBreakpoint(ctx, id, cb, syncCb)
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return TextResult("removed " + id), nil
}

func (t *debugTools) updateBreakpoint(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return nil, err
	}

	id, err := argString(args, "id")
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	var cur *debugger.Breakpoint

	for _, bp := range t.sess.Breakpoints() {
		if bp.ID == id {
			cur = &bp

			break
		}
	}

	if cur == nil {
		return ErrorResult(fmt.Sprintf("%s: %s", errors.ErrBreakpointNotFound, id)), nil
	}

	enabled, condition := cur.Enabled, cur.Condition

	if v, ok := args["enabled"]; ok {
		b, isBool := v.(bool)
		if !isBool {
			return ErrorResult("enabled must be a boolean"), nil
		}

		enabled = b
	}

	if v, ok := args["condition"]; ok {
		c, isString := v.(string)
		if !isString {
			return ErrorResult("condition must be a string"), nil
		}

		condition = c
	}

	bp, err := debugger.Await(ctx, func(cb func(*debugger.Breakpoint, error), syncCb relay.SyncCallback) relay.Ok {
		return t.sess.UpdateBreakpoint(ctx, id, enabled, condition, cb, syncCb)
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return jsonResult(bp), nil
}

func (t *debugTools) listBreakpoints(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.sess.Breakpoints()), nil
}

func (t *debugTools) pause(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	err := debugger.AwaitErr(ctx, func(cb debugger.ErrorCallback, syncCb relay.SyncCallback) relay.Ok {
		return t.sess.Suspend(ctx, cb, syncCb)
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return TextResult("pause requested"), nil
}

func (t *debugTools) resume(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := ParseArguments(req)
	if err != nil {
		return nil, err
	}

	action := debugger.StepContinue

	if name, _ := args["action"].(string); name != "" {
		action, err = debugger.ParseStepAction(name)
		if err != nil {
			return ErrorResult(err.Error()), nil
		}
	}

	dc := t.sess.CurrentContext()
	if dc == nil {
		return ErrorResult(errors.ErrNotSuspended.Error()), nil
	}

	err = debugger.AwaitErr(ctx, func(cb debugger.ErrorCallback, syncCb relay.SyncCallback) relay.Ok {
		return dc.Continue(ctx, action, cb, syncCb)
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return TextResult("resumed (" + action.String() + ")"), nil
}

func (t *debugTools) status(context.Context, *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dc := t.sess.CurrentContext()
	if dc == nil || !dc.Valid() {
		return jsonResult(map[string]string{"state": "running"}), nil
	}

	snap := dc.Snapshot()
	snap.State = "suspended:" + snap.State

	return jsonResult(snap), nil
}

func (t *debugTools) version(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := debugger.Await(ctx, func(cb func(*debugger.Version, error), syncCb relay.SyncCallback) relay.Ok {
		return t.sess.Version(ctx, cb, syncCb)
	})
	if err != nil {
		return ErrorResult(err.Error()), nil
	}

	return jsonResult(v), nil
}

func argString(args map[string]any, name string) (string, error) {
	v, ok := args[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s is required", name)
	}

	return v, nil
}

func argInt(args map[string]any, name string) (int, error) {
	switch v := args[name].(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("%s must be an integer", name)
		}

		return int(v), nil
	case nil:
		return 0, fmt.Errorf("%s is required", name)
	default:
		return 0, fmt.Errorf("%s must be an integer", name)
	}
}
