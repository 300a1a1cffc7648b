package debugger

import (
	"context"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/protocol"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
)

// ChangeDescription summarizes the effect of a live edit on the running VM.
type ChangeDescription struct {
	// StackChanged reports that suspended frames were restarted.
	StackChanged bool

	// CallFrames is the new stack when StackChanged is set.
	CallFrames []wip.CallFrame
}

// UpdateCallback receives the change description, nil when the edit had no
// effect on the stack, or a failure.
type UpdateCallback func(change *ChangeDescription, err error)

// UpdateScript replaces the source of a loaded script. With preview set the VM
// only checks the change. A committed change drops the cached source and then
// reloads it; syncCb is released when that reload finishes.
func (s *Session) UpdateScript(
	ctx context.Context,
	scriptID string,
	newSource string,
	preview bool,
	cb UpdateCallback,
	syncCb relay.SyncCallback,
) relay.Ok {
	r := relay.NewRelay(syncCb)
	params := &wip.SetScriptSourceParams{
		ScriptID:     scriptID,
		ScriptSource: newSource,
		DryRun:       preview,
	}

	return protocol.Send(ctx, s.proc, wip.MethodDebuggerSetScriptSource, params,
		func(res wip.SetScriptSourceResult, err error) {
			defer r.Guard()

			if err == nil && res.ExceptionDetails != nil {
				err = &errors.CompileError{
					ScriptID: scriptID,
					Line:     res.ExceptionDetails.LineNumber,
					Column:   res.ExceptionDetails.ColumnNumber,
					Message:  res.ExceptionDetails.Text,
				}
			}

			if err != nil {
				if cb != nil {
					cb(nil, err)
				}

				r.Finish(err)

				return
			}

			var change *ChangeDescription
			if res.StackChanged || len(res.CallFrames) > 0 {
				change = &ChangeDescription{StackChanged: res.StackChanged, CallFrames: res.CallFrames}
			}

			if preview {
				if cb != nil {
					cb(change, nil)
				}

				r.Finish(nil)

				return
			}

			s.log.Info("Script updated", "script_id", scriptID, "stack_changed", res.StackChanged)
			s.dropSource(scriptID)

			if res.StackChanged {
				if dc := s.CurrentContext(); dc != nil {
					dc.replaceFrames(res.CallFrames)
				}
			}

			if cb != nil {
				cb(change, nil)
			}

			protocol.Send(ctx, s.proc, wip.MethodDebuggerGetScriptSource,
				&wip.GetScriptSourceParams{ScriptID: scriptID},
				func(src wip.GetScriptSourceResult, err error) {
					if err == nil {
						s.cacheSource(scriptID, src.ScriptSource)
					}
				}, r.Handoff())
		}, nil)
}
