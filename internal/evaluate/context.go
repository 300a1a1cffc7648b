package evaluate

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/protocol"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/wip"
)

// ExceptionName is the name given to a value produced by a thrown exception.
const ExceptionName = "<exception>"

var errMissingResult = stderrors.New("response has no result object")

// Value is the outcome of a successful evaluation. A thrown exception is still
// a successful evaluation; Thrown marks it and Object holds the thrown value.
type Value struct {
	// Name is the expression text, or ExceptionName for thrown values.
	Name string

	// Object is the raw remote value.
	Object wip.RemoteObject

	// Thrown reports whether evaluation raised an exception.
	Thrown bool

	// Exception carries the backend's exception details when available.
	Exception *wip.ExceptionDetails
}

// Callback receives either a value or a failure, exactly once.
type Callback func(v *Value, err error)

// Context evaluates expressions through one Variant.
type Context struct {
	log     *slog.Logger
	proc    *protocol.Processor
	variant Variant
	group   string
}

// NewContext creates an evaluate context.
func NewContext(log *slog.Logger, proc *protocol.Processor, variant Variant) *Context {
	return &Context{
		log:     log.With("component", "evaluate"),
		proc:    proc,
		variant: variant,
	}
}

// WithObjectGroup returns a copy of c whose remote handles are allocated in
// group, so a caller can release them together.
func (c *Context) WithObjectGroup(group string) *Context {
	cp := *c
	cp.group = group

	return &cp
}

// Variant returns the variant this context evaluates with.
func (c *Context) Variant() Variant {
	return c.variant
}

// EvaluateAsync evaluates expr and reports the outcome to cb, then releases
// syncCb. A non-nil additional map is rejected without contacting the VM.
// Either of cb and syncCb may be nil.
func (c *Context) EvaluateAsync(
	ctx context.Context,
	expr string,
	additional map[string]string,
	cb Callback,
	syncCb relay.SyncCallback,
) relay.Ok {
	if additional != nil {
		c.log.Debug("Rejecting evaluate with additional context", "entries", len(additional))

		if cb != nil {
			cb(nil, errors.ErrAdditionalContextUnsupported)
		}

		return relay.FinishWith(syncCb, errors.ErrAdditionalContextUnsupported)
	}

	if v, ok := c.variant.(Validator); ok {
		if err := v.Validate(); err != nil {
			if cb != nil {
				cb(nil, err)
			}

			return relay.FinishWith(syncCb, err)
		}
	}

	method, params := c.variant.BuildRequest(expr, c.group)

	// Extraction failures must reach syncCb as well as cb.
	var extractErr error

	var chained relay.SyncCallback
	if syncCb != nil {
		chained = relay.SyncFunc(func(err error) {
			if err == nil {
				err = extractErr
			}

			syncCb.CallbackDone(err)
		})
	}

	return protocol.Send(ctx, c.proc, method, params, func(raw json.RawMessage, err error) {
		if err != nil {
			if cb != nil {
				cb(nil, err)
			}

			return
		}

		res, err := c.variant.ExtractValue(raw)
		if err != nil {
			extractErr = err

			if cb != nil {
				cb(nil, err)
			}

			return
		}

		if cb != nil {
			cb(toValue(expr, res), nil)
		}
	}, chained)
}

// EvaluateSync evaluates expr and blocks until cb has run or the default relay
// ceiling elapses. It must not be called from another callback.
func (c *Context) EvaluateSync(
	ctx context.Context,
	expr string,
	additional map[string]string,
	cb Callback,
) error {
	gate := relay.NewGate()

	return gate.AcquireDefault(c.EvaluateAsync(ctx, expr, additional, cb, gate))
}

// Evaluate is the value-returning form of EvaluateSync.
func (c *Context) Evaluate(ctx context.Context, expr string) (*Value, error) {
	var value *Value

	err := c.EvaluateSync(ctx, expr, nil, func(v *Value, _ error) {
		value = v
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

func toValue(expr string, res *wip.EvaluateResult) *Value {
	if res.Thrown() {
		return &Value{
			Name:      ExceptionName,
			Object:    res.Result,
			Thrown:    true,
			Exception: res.ExceptionDetails,
		}
	}

	return &Value{Name: expr, Object: res.Result}
}
