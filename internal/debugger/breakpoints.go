package debugger

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/protocol"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
)

const localBreakpointPrefix = "local:"

// BreakpointSpec describes where to break. Line and Column are 0-based.
type BreakpointSpec struct {
	URL       string `json:"url,omitempty"`
	URLRegex  string `json:"urlRegex,omitempty"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Condition string `json:"condition,omitempty"`
	Enabled   bool   `json:"enabled"`
}

// Breakpoint is a breakpoint known to the session.
type Breakpoint struct {
	ID string `json:"id"`
	BreakpointSpec

	// Locations are the resolved positions reported by the VM.
	Locations []wip.Location `json:"locations,omitempty"`
}

// Local reports whether the breakpoint exists only in the session registry
// because it was created disabled.
func (b *Breakpoint) Local() bool {
	return strings.HasPrefix(b.ID, localBreakpointPrefix)
}

// BreakpointCallback receives a created breakpoint or a failure.
type BreakpointCallback func(bp *Breakpoint, err error)

// BreakpointsCallback receives the breakpoint list or a failure.
type BreakpointsCallback func(bps []Breakpoint, err error)

// SetBreakpoint creates a breakpoint by URL. A disabled breakpoint is recorded
// locally without a round trip.
func (s *Session) SetBreakpoint(
	ctx context.Context,
	spec BreakpointSpec,
	cb BreakpointCallback,
	syncCb relay.SyncCallback,
) relay.Ok {
	if !spec.Enabled {
		s.mu.Lock()
		bp := s.newLocalBreakpointLocked(spec)
		s.addBreakpointLocked(bp)
		s.mu.Unlock()

		if cb != nil {
			cb(copyBreakpoint(bp), nil)
		}

		return relay.Finish(syncCb)
	}

	return s.setInVM(ctx, "", spec, false, cb, syncCb)
}

// UpdateBreakpoint changes whether a breakpoint is enabled and its condition.
// Enabling a local breakpoint creates it in the VM and disabling one removes it
// from the VM while keeping it in the registry. Changing the condition of an
// enabled breakpoint re-creates it. The ID changes whenever the VM side does;
// cb receives the breakpoint as it now stands.
func (s *Session) UpdateBreakpoint(
	ctx context.Context,
	id string,
	enabled bool,
	condition string,
	cb BreakpointCallback,
	syncCb relay.SyncCallback,
) relay.Ok {
	s.mu.Lock()
	cur, known := s.breakpoints[id]

	var bp *Breakpoint
	if known {
		bp = copyBreakpoint(cur)
	}
	s.mu.Unlock()

	if !known {
		err := fmt.Errorf("%w: %s", errors.ErrBreakpointNotFound, id)
		if cb != nil {
			cb(nil, err)
		}

		return relay.FinishWith(syncCb, err)
	}

	spec := bp.BreakpointSpec
	spec.Enabled = enabled
	spec.Condition = condition

	switch {
	case bp.Local() && !enabled:
		s.mu.Lock()
		if cur, ok := s.breakpoints[id]; ok {
			cur.BreakpointSpec = spec
			bp = copyBreakpoint(cur)
		}
		s.mu.Unlock()

		if cb != nil {
			cb(bp, nil)
		}

		return relay.Finish(syncCb)

	case bp.Local():
		return s.setInVM(ctx, id, spec, false, cb, syncCb)

	case !enabled:
		return s.command(ctx, wip.MethodDebuggerRemoveBreakpoint,
			&wip.RemoveBreakpointParams{BreakpointID: id},
			func(err error) {
				if err != nil {
					if cb != nil {
						cb(nil, err)
					}

					return
				}

				s.mu.Lock()
				local := s.newLocalBreakpointLocked(spec)
				s.replaceBreakpointLocked(id, local)
				s.mu.Unlock()

				s.log.Debug("Breakpoint disabled", "breakpoint_id", id, "local_id", local.ID)

				if cb != nil {
					cb(copyBreakpoint(local), nil)
				}
			}, syncCb)

	case condition == bp.Condition:
		if cb != nil {
			cb(bp, nil)
		}

		return relay.Finish(syncCb)
	}

	// The VM cannot edit a condition in place: remove, then set again. syncCb
	// is released by the second step.
	r := relay.NewRelay(syncCb)

	return protocol.Send(ctx, s.proc, wip.MethodDebuggerRemoveBreakpoint,
		&wip.RemoveBreakpointParams{BreakpointID: id},
		func(_ json.RawMessage, err error) {
			defer r.Guard()

			if err != nil {
				if cb != nil {
					cb(nil, err)
				}

				r.Finish(err)

				return
			}

			s.setInVM(ctx, id, spec, true, cb, r.Handoff())
		}, nil)
}

// setInVM creates spec in the VM. A non-empty replaces names the registry entry
// the new breakpoint takes the place of. With demote set, a failure leaves that
// entry as a disabled local breakpoint, for callers that already removed it
// from the VM.
func (s *Session) setInVM(
	ctx context.Context,
	replaces string,
	spec BreakpointSpec,
	demote bool,
	cb BreakpointCallback,
	syncCb relay.SyncCallback,
) relay.Ok {
	spec.Enabled = true
	params := &wip.SetBreakpointByURLParams{
		LineNumber:   spec.Line,
		URL:          spec.URL,
		URLRegex:     spec.URLRegex,
		ColumnNumber: spec.Column,
		Condition:    spec.Condition,
	}

	return protocol.Send(ctx, s.proc, wip.MethodDebuggerSetBreakpointByURL, params,
		func(res wip.SetBreakpointByURLResult, err error) {
			if err != nil {
				if demote {
					disabled := spec
					disabled.Enabled = false

					s.mu.Lock()
					s.replaceBreakpointLocked(replaces, s.newLocalBreakpointLocked(disabled))
					s.mu.Unlock()
				}

				if cb != nil {
					cb(nil, err)
				}

				return
			}

			bp := &Breakpoint{
				ID:             res.BreakpointID,
				BreakpointSpec: spec,
				Locations:      res.Locations,
			}

			s.mu.Lock()
			if replaces != "" {
				s.replaceBreakpointLocked(replaces, bp)
			} else {
				s.addBreakpointLocked(bp)
			}
			s.mu.Unlock()

			s.log.Debug("Breakpoint set", "breakpoint_id", bp.ID, "locations", len(bp.Locations))

			if cb != nil {
				cb(copyBreakpoint(bp), nil)
			}
		}, syncCb)
}

// RemoveBreakpoint deletes a breakpoint. Local breakpoints are removed without
// a round trip.
func (s *Session) RemoveBreakpoint(
	ctx context.Context,
	id string,
	cb ErrorCallback,
	syncCb relay.SyncCallback,
) relay.Ok {
	if strings.HasPrefix(id, localBreakpointPrefix) {
		s.mu.Lock()
		s.removeBreakpointLocked(id)
		s.mu.Unlock()

		if cb != nil {
			cb(nil)
		}

		return relay.Finish(syncCb)
	}

	return s.command(ctx, wip.MethodDebuggerRemoveBreakpoint,
		&wip.RemoveBreakpointParams{BreakpointID: id},
		func(err error) {
			if err == nil {
				s.mu.Lock()
				s.removeBreakpointLocked(id)
				s.mu.Unlock()
			}

			if cb != nil {
				cb(err)
			}
		}, syncCb)
}

// ListBreakpoints reports the session's breakpoint registry in creation order.
func (s *Session) ListBreakpoints(cb BreakpointsCallback, syncCb relay.SyncCallback) relay.Ok {
	if cb != nil {
		cb(s.Breakpoints(), nil)
	}

	return relay.Finish(syncCb)
}

// Breakpoints returns a snapshot of the breakpoint registry.
func (s *Session) Breakpoints() []Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Breakpoint, 0, len(s.bpOrder))
	for _, id := range s.bpOrder {
		out = append(out, *copyBreakpoint(s.breakpoints[id]))
	}

	return out
}

// EnableBreakpoints activates or deactivates all breakpoints at once.
func (s *Session) EnableBreakpoints(
	ctx context.Context,
	enabled bool,
	cb ErrorCallback,
	syncCb relay.SyncCallback,
) relay.Ok {
	return s.command(ctx, wip.MethodDebuggerSetBreakpointsActive,
		&wip.SetBreakpointsActiveParams{Active: enabled}, cb, syncCb)
}

// SetBreakOnException selects which exceptions suspend the VM.
func (s *Session) SetBreakOnException(
	ctx context.Context,
	state wip.PauseOnExceptionsState,
	cb ErrorCallback,
	syncCb relay.SyncCallback,
) relay.Ok {
	return s.command(ctx, wip.MethodDebuggerSetPauseOnExceptions,
		&wip.SetPauseOnExceptionsParams{State: state}, cb, syncCb)
}

func (s *Session) addBreakpointLocked(bp *Breakpoint) {
	if _, known := s.breakpoints[bp.ID]; !known {
		s.bpOrder = append(s.bpOrder, bp.ID)
	}

	s.breakpoints[bp.ID] = bp
}

func (s *Session) newLocalBreakpointLocked(spec BreakpointSpec) *Breakpoint {
	s.localBPSeq++

	return &Breakpoint{
		ID:             fmt.Sprintf("%s%d", localBreakpointPrefix, s.localBPSeq),
		BreakpointSpec: spec,
	}
}

// replaceBreakpointLocked swaps the entry for oldID with bp, keeping its place
// in creation order. bp is appended if oldID is gone.
func (s *Session) replaceBreakpointLocked(oldID string, bp *Breakpoint) {
	i := slices.Index(s.bpOrder, oldID)
	if i < 0 {
		s.addBreakpointLocked(bp)

		return
	}

	delete(s.breakpoints, oldID)
	s.bpOrder[i] = bp.ID
	s.breakpoints[bp.ID] = bp
}

func (s *Session) removeBreakpointLocked(id string) {
	if _, known := s.breakpoints[id]; !known {
		return
	}

	delete(s.breakpoints, id)
	s.bpOrder = slices.DeleteFunc(s.bpOrder, func(v string) bool { return v == id })
}

func copyBreakpoint(bp *Breakpoint) *Breakpoint {
	cp := *bp
	cp.Locations = slices.Clone(bp.Locations)

	return &cp
}
