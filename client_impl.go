package chromedevtools

import (
	"context"

	"github.com/cczw2010/chromedevtools/internal/client"
	"github.com/cczw2010/chromedevtools/internal/config"
	"github.com/cczw2010/chromedevtools/internal/debugger"
	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/relay"
)

// clientWrapper wraps the internal client to adapt it to the public interface.
type clientWrapper struct {
	impl *client.Client
}

// Compile-time check that *clientWrapper implements the Client interface.
var _ Client = (*clientWrapper)(nil)

// newClientImpl creates the internal client implementation.
func newClientImpl() Client {
	return &clientWrapper{impl: client.New()}
}

// Start connects to the VM and enables the debugger.
func (c *clientWrapper) Start(ctx context.Context, opts ...Option) error {
	return c.impl.Start(ctx, applyOptionsToConfig(opts))
}

// Session returns the underlying asynchronous session.
func (c *clientWrapper) Session() *Session {
	return c.impl.Session()
}

func (c *clientWrapper) session() (*debugger.Session, error) {
	s := c.impl.Session()
	if s == nil {
		return nil, errors.ErrClientNotConnected
	}

	return s, nil
}

// Evaluate evaluates expr in the global scope.
func (c *clientWrapper) Evaluate(ctx context.Context, expr string) (*Value, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}

	ec := s.GlobalEvaluateContext()

	return debugger.Await(ctx, func(cb func(*Value, error), syncCb relay.SyncCallback) relay.Ok {
		return ec.EvaluateAsync(ctx, expr, nil, cb, syncCb)
	})
}

// EvaluateInFrame evaluates expr in one call frame of the current suspension.
func (c *clientWrapper) EvaluateInFrame(ctx context.Context, frame int, expr string) (*Value, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}

	dc := s.CurrentContext()
	if dc == nil {
		return nil, errors.ErrNotSuspended
	}

	ec, err := dc.EvaluateContext(frame)
	if err != nil {
		return nil, err
	}

	return debugger.Await(ctx, func(cb func(*Value, error), syncCb relay.SyncCallback) relay.Ok {
		return ec.EvaluateAsync(ctx, expr, nil, cb, syncCb)
	})
}

// Scripts returns the scripts the VM has compiled so far.
func (c *clientWrapper) Scripts(ctx context.Context) ([]Script, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}

	var scripts []Script

	err = s.GetScripts(ctx, func(list []Script, err error) {
		if err == nil {
			scripts = list
		}
	})
	if err != nil {
		return nil, err
	}

	return scripts, nil
}

// ScriptSource returns the source text of a script.
func (c *clientWrapper) ScriptSource(ctx context.Context, scriptID string) (string, error) {
	s, err := c.session()
	if err != nil {
		return "", err
	}

	return debugger.Await(ctx, func(cb func(string, error), syncCb relay.SyncCallback) relay.Ok {
		return s.ScriptSource(ctx, scriptID, cb, syncCb)
	})
}

// SetBreakpoint creates a breakpoint.
func (c *clientWrapper) SetBreakpoint(ctx context.Context, spec BreakpointSpec) (*Breakpoint, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}

	return debugger.Await(ctx, func(cb func(*Breakpoint, error), syncCb relay.SyncCallback) relay.Ok {
		return s.SetBreakpoint(ctx, spec, cb, syncCb)
	})
}

// RemoveBreakpoint deletes a breakpoint by ID.
func (c *clientWrapper) RemoveBreakpoint(ctx context.Context, id string) error {
	s, err := c.session()
	if err != nil {
		return err
	}

	return debugger.AwaitErr(ctx, func(cb debugger.ErrorCallback, syncCb relay.SyncCallback) relay.Ok {
		return s.RemoveBreakpoint(ctx, id, cb, syncCb)
	})
}

// UpdateBreakpoint enables or disables a breakpoint and sets its condition.
func (c *clientWrapper) UpdateBreakpoint(
	ctx context.Context,
	id string,
	enabled bool,
	condition string,
) (*Breakpoint, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}

	return debugger.Await(ctx, func(cb func(*Breakpoint, error), syncCb relay.SyncCallback) relay.Ok {
		return s.UpdateBreakpoint(ctx, id, enabled, condition, cb, syncCb)
	})
}

// Breakpoints returns the breakpoints known to the session.
func (c *clientWrapper) Breakpoints() []Breakpoint {
	s := c.impl.Session()
	if s == nil {
		return nil
	}

	return s.Breakpoints()
}

// Suspend asks the running VM to pause.
func (c *clientWrapper) Suspend(ctx context.Context) error {
	s, err := c.session()
	if err != nil {
		return err
	}

	return debugger.AwaitErr(ctx, func(cb debugger.ErrorCallback, syncCb relay.SyncCallback) relay.Ok {
		return s.Suspend(ctx, cb, syncCb)
	})
}

// Suspension returns the current debug context.
func (c *clientWrapper) Suspension() *DebugContext {
	s := c.impl.Session()
	if s == nil {
		return nil
	}

	return s.CurrentContext()
}

// Resume continues a suspended VM.
func (c *clientWrapper) Resume(ctx context.Context, action StepAction) error {
	s, err := c.session()
	if err != nil {
		return err
	}

	dc := s.CurrentContext()
	if dc == nil {
		return errors.ErrNotSuspended
	}

	return debugger.AwaitErr(ctx, func(cb debugger.ErrorCallback, syncCb relay.SyncCallback) relay.Ok {
		return dc.Continue(ctx, action, cb, syncCb)
	})
}

// UpdateScript replaces a script's source.
func (c *clientWrapper) UpdateScript(
	ctx context.Context,
	scriptID, source string,
	preview bool,
) (*ChangeDescription, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}

	return debugger.Await(ctx, func(cb func(*ChangeDescription, error), syncCb relay.SyncCallback) relay.Ok {
		return s.UpdateScript(ctx, scriptID, source, preview, cb, syncCb)
	})
}

// Version reports the VM's version.
func (c *clientWrapper) Version(ctx context.Context) (*Version, error) {
	s, err := c.session()
	if err != nil {
		return nil, err
	}

	return debugger.Await(ctx, func(cb func(*Version, error), syncCb relay.SyncCallback) relay.Ok {
		return s.Version(ctx, cb, syncCb)
	})
}

// Done is closed when the connection to the VM ends.
func (c *clientWrapper) Done() <-chan struct{} {
	return c.impl.Done()
}

// Err reports why the connection ended.
func (c *clientWrapper) Err() error {
	return c.impl.Err()
}

// Close terminates the session and cleans up resources.
func (c *clientWrapper) Close() error {
	return c.impl.Close()
}

// applyOptionsToConfig converts public options to internal config.Options.
func applyOptionsToConfig(opts []Option) *config.Options {
	// Options is a type alias to config.Options, so no conversion is needed.
	return applyOptions(opts)
}
