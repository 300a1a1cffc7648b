package debugger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/protocol"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
)

// Script is a script compiled by the VM.
type Script struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	StartLine    int    `json:"startLine"`
	StartColumn  int    `json:"startColumn"`
	EndLine      int    `json:"endLine"`
	EndColumn    int    `json:"endColumn"`
	ContextID    int    `json:"contextId,omitempty"`
	Hash         string `json:"hash,omitempty"`
	SourceMapURL string `json:"sourceMapUrl,omitempty"`
}

// ScriptsCallback receives the loaded scripts or a failure.
type ScriptsCallback func(scripts []Script, err error)

// SourceCallback receives the source text of one script or a failure.
type SourceCallback func(source string, err error)

func scriptFromEvent(e *wip.ScriptParsedEvent) Script {
	return Script{
		ID:           e.ScriptID,
		URL:          e.URL,
		StartLine:    e.StartLine,
		StartColumn:  e.StartColumn,
		EndLine:      e.EndLine,
		EndColumn:    e.EndColumn,
		ContextID:    e.ExecutionContextID,
		Hash:         e.Hash,
		SourceMapURL: e.SourceMapURL,
	}
}

// Scripts returns the scripts seen so far, in load order.
func (s *Session) Scripts() []Script {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Script, 0, len(s.scriptOrder))
	for _, id := range s.scriptOrder {
		out = append(out, *s.scripts[id])
	}

	return out
}

// Script returns the script with id.
func (s *Session) Script(id string) (Script, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.scripts[id]
	if !ok {
		return Script{}, false
	}

	return *sc, true
}

// GetScriptsAsync reports every script the VM has compiled. Debugger.enable
// is reissued as a barrier: the VM announces all existing scripts before it
// answers, so the snapshot taken in the callback is complete.
func (s *Session) GetScriptsAsync(ctx context.Context, cb ScriptsCallback, syncCb relay.SyncCallback) relay.Ok {
	return protocol.Send(ctx, s.proc, wip.MethodDebuggerEnable, nil, func(_ json.RawMessage, err error) {
		if cb == nil {
			return
		}

		if err != nil {
			cb(nil, err)

			return
		}

		cb(s.Scripts(), nil)
	}, syncCb)
}

// GetScripts is the blocking form of GetScriptsAsync. It waits at most the
// session's scripts timeout; on expiry cb receives an error wrapping
// errors.ErrRequestTimeout and any later answer is ignored.
func (s *Session) GetScripts(ctx context.Context, cb ScriptsCallback) error {
	cb = onceScripts(cb)

	gate := relay.NewGateWithTimeouts(0, s.scriptsTimeout)
	ok := s.GetScriptsAsync(ctx, cb, gate)

	if !gate.TryAcquireDefault(ok) {
		err := fmt.Errorf("load scripts: %w", errors.ErrRequestTimeout)
		if cb != nil {
			cb(nil, err)
		}

		return err
	}

	return gate.Err()
}

// ScriptSource fetches the source of a script, serving repeated requests from
// a cache that is dropped when the script is re-parsed or edited.
func (s *Session) ScriptSource(
	ctx context.Context,
	scriptID string,
	cb SourceCallback,
	syncCb relay.SyncCallback,
) relay.Ok {
	s.mu.Lock()
	src, cached := s.sources[scriptID]
	s.mu.Unlock()

	if cached {
		if cb != nil {
			cb(src, nil)
		}

		return relay.Finish(syncCb)
	}

	return protocol.Send(ctx, s.proc, wip.MethodDebuggerGetScriptSource,
		&wip.GetScriptSourceParams{ScriptID: scriptID},
		func(res wip.GetScriptSourceResult, err error) {
			if err == nil {
				s.cacheSource(scriptID, res.ScriptSource)
			}

			if cb != nil {
				cb(res.ScriptSource, err)
			}
		}, syncCb)
}

func (s *Session) cacheSource(scriptID, src string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, known := s.scripts[scriptID]; known {
		s.sources[scriptID] = src
	}
}

func (s *Session) dropSource(scriptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sources, scriptID)
}

func onceScripts(cb ScriptsCallback) ScriptsCallback {
	if cb == nil {
		return nil
	}

	var once sync.Once

	return func(scripts []Script, err error) {
		once.Do(func() { cb(scripts, err) })
	}
}
