package chromedevtools

import (
	"context"
)

// Client provides a blocking, stateful interface to one debugging session.
//
// Every method that talks to the VM waits for the VM's answer or for ctx to
// end. The asynchronous API underneath is available through Session().
//
// Lifecycle: Clients are single-use. After Close(), create a new client with NewClient().
//
// Example usage:
//
//	client := NewClient()
//	defer client.Close()
//
//	err := client.Start(ctx,
//	    WithLogger(slog.Default()),
//	    WithHTTPEndpoint("http://127.0.0.1:9229"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	v, err := client.Evaluate(ctx, "process.version")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(v.Object.Description)
type Client interface {
	// Start connects to the VM and enables the debugger.
	// Must be called before any other methods.
	// Returns NodeNotFoundError if node is needed but missing, ConnectionError
	// if the VM cannot be reached.
	Start(ctx context.Context, opts ...Option) error

	// Session returns the underlying asynchronous session, or nil before Start.
	Session() *Session

	// Evaluate evaluates expr in the global scope. A thrown exception is not
	// an error; it is reported through Value.Thrown.
	Evaluate(ctx context.Context, expr string) (*Value, error)

	// EvaluateInFrame evaluates expr in call frame index of the current
	// suspension. Returns ErrNotSuspended while the VM runs.
	EvaluateInFrame(ctx context.Context, frame int, expr string) (*Value, error)

	// Scripts returns the scripts the VM has compiled so far.
	Scripts(ctx context.Context) ([]Script, error)

	// ScriptSource returns the source text of a script.
	ScriptSource(ctx context.Context, scriptID string) (string, error)

	// SetBreakpoint creates a breakpoint. Positions are 0-based.
	SetBreakpoint(ctx context.Context, spec BreakpointSpec) (*Breakpoint, error)

	// RemoveBreakpoint deletes a breakpoint by ID.
	RemoveBreakpoint(ctx context.Context, id string) error

	// UpdateBreakpoint enables or disables a breakpoint and sets its
	// condition. The returned breakpoint may carry a new ID.
	UpdateBreakpoint(ctx context.Context, id string, enabled bool, condition string) (*Breakpoint, error)

	// Breakpoints returns the breakpoints known to the session.
	Breakpoints() []Breakpoint

	// Suspend asks the running VM to pause. The pause itself is reported to
	// the listener; Suspension returns it afterwards.
	Suspend(ctx context.Context) error

	// Suspension returns the current debug context, or nil while running.
	Suspension() *DebugContext

	// Resume continues a suspended VM with action.
	// Returns ErrNotSuspended while the VM runs.
	Resume(ctx context.Context, action StepAction) error

	// UpdateScript replaces a script's source. With preview set the VM only
	// checks the change.
	UpdateScript(ctx context.Context, scriptID, source string, preview bool) (*ChangeDescription, error)

	// Version reports the VM's version.
	Version(ctx context.Context) (*Version, error)

	// Done is closed when the connection to the VM ends.
	Done() <-chan struct{}

	// Err reports why the connection ended, or nil.
	Err() error

	// Close terminates the session and cleans up resources.
	// After Close(), the client cannot be reused. Safe to call multiple times.
	Close() error
}

// NewClient creates a new client.
//
// Call Start() with options to connect:
//
//	client := NewClient()
//	err := client.Start(ctx,
//	    WithScript("app.js"),
//	    WithBreakOnException("uncaught"),
//	)
func NewClient() Client {
	return newClientImpl()
}
