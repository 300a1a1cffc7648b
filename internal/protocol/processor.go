package protocol

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/relay"
)

const (
	// eventBufferSize is the number of notifications buffered ahead of the consumer.
	eventBufferSize = 256
)

// Transport defines the minimal interface needed for protocol operations.
//
// This interface is satisfied by the websocket transport but allows for testing
// with mock transports.
type Transport interface {
	ReadMessages(ctx context.Context) (<-chan []byte, <-chan error)
	SendMessage(ctx context.Context, data []byte) error
}

// Callback receives the outcome of one command: the decoded result, or a
// non-nil error. It is invoked exactly once, on the dispatch goroutine or
// synchronously from Send when the command fails before reaching the wire.
// It must not block waiting for another command's response.
type Callback[T any] func(result T, err error)

// Processor correlates commands with responses over one transport connection.
//
// The Processor handles:
//   - Assigning unique, monotonically increasing request ids
//   - Registering pending requests in the correlation table
//   - Routing responses to the matching pending request
//   - Forwarding notifications to consumers via the Events channel
//   - Failing every pending request once when the transport closes
//
// The Processor must be started with Start() before responses are delivered and
// manages its own goroutine for reading and routing messages.
type Processor struct {
	log       *slog.Logger
	transport Transport
	table     *Table
	nextID    atomic.Int64

	// Notifications forwarded to consumers
	events  chan *Event
	onEvent func(*Event)

	// Fatal error handling - stores error and broadcasts via done channel
	errMu    sync.RWMutex
	fatalErr error

	// Lifecycle management
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewProcessor creates a new command processor.
//
// The logger will receive debug, info, warn, and error messages during
// protocol operations. The transport must be connected before calling Start().
func NewProcessor(log *slog.Logger, transport Transport) *Processor {
	log = log.With("component", "protocol")

	return &Processor{
		log:       log,
		transport: transport,
		table:     NewTable(log),
		events:    make(chan *Event, eventBufferSize),
		done:      make(chan struct{}),
	}
}

// closeDone safely closes the done channel exactly once.
func (p *Processor) closeDone() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

// SetFatalError records a transport failure, fails every pending request with
// it, and broadcasts to all waiters by closing done. Repeated calls keep the
// first error and have no further effect.
func (p *Processor) SetFatalError(err error) {
	p.errMu.Lock()

	if p.fatalErr == nil {
		p.fatalErr = err
	}

	p.errMu.Unlock()

	p.table.FailAll(err)
	p.closeDone()
}

// FatalError returns the fatal error if one occurred.
func (p *Processor) FatalError() error {
	p.errMu.RLock()
	defer p.errMu.RUnlock()

	return p.fatalErr
}

// Done returns a channel that is closed when the processor stops.
func (p *Processor) Done() <-chan struct{} {
	return p.done
}

// Events returns a channel for receiving notifications.
//
// The channel is closed when the processor stops or the transport closes.
// Use Done() and FatalError() to detect and retrieve transport errors.
func (p *Processor) Events() <-chan *Event {
	return p.events
}

// SetEventHandler routes notifications to h on the dispatch goroutine instead
// of the Events channel. Notifications are then applied in wire order relative
// to responses. h must not block. It must be called before Start.
func (p *Processor) SetEventHandler(h func(*Event)) {
	p.onEvent = h
}

// Pending returns the number of requests awaiting a response.
func (p *Processor) Pending() int {
	return p.table.Len()
}

// Start begins reading messages from the transport and routing them.
//
// This method spawns the dispatch goroutine. The goroutine stops when the
// context is cancelled, Stop is called, or the transport is closed.
func (p *Processor) Start(ctx context.Context) error {
	p.log.Debug("Starting command processor")

	messages, errs := p.transport.ReadMessages(ctx)

	p.wg.Add(1)

	go p.readLoop(ctx, messages, errs)

	p.log.Info("Command processor started")

	return nil
}

// Stop gracefully shuts down the processor.
//
// Every request still pending fails with a disconnect error wrapping
// ErrSessionClosed. It's safe to call Stop multiple times.
func (p *Processor) Stop() {
	p.log.Debug("Stopping command processor")

	p.closeDone()
	p.table.FailAll(errors.ErrSessionClosed)
	p.wg.Wait()
	p.log.Info("Command processor stopped")
}

// Send issues method with params and arranges for cb and then syncCb to be
// invoked exactly once with the outcome.
//
// The success payload is decoded into T before cb runs; a decode failure is
// delivered as a *errors.DecodeError. If the command cannot be sent (marshal
// failure, closed session, transport write error) the failure is delivered
// through the same path. Either of cb and syncCb may be nil. Cancelling ctx
// before the response arrives cancels the request.
//
// Send always returns a valid relay token.
func Send[T any](
	ctx context.Context,
	p *Processor,
	method string,
	params any,
	cb Callback[T],
	syncCb relay.SyncCallback,
) relay.Ok {
	id := p.nextID.Add(1)
	syncCb = relay.Once(syncCb)

	var stopWatch atomic.Pointer[func() bool]

	complete := func(raw json.RawMessage, err error) {
		if stop := stopWatch.Load(); stop != nil {
			(*stop)()
		}

		var result T

		defer func() {
			if syncCb != nil {
				syncCb.CallbackDone(err)
			}
		}()

		if err == nil {
			result, err = decodeResult[T](method, raw)
		} else {
			err = attachMethod(method, err)
		}

		if err != nil {
			p.log.Debug("Command failed", "request_id", id, "method", method, "error", err)
		}

		if cb != nil {
			cb(result, err)
		}
	}

	p.log.Debug("Sending command", "request_id", id, "method", method)

	data, err := json.Marshal(&Request{ID: id, Method: method, Params: params})
	if err != nil {
		p.log.Error("Failed to marshal command", "method", method, "error", err)
		complete(nil, fmt.Errorf("marshal %s request: %w", method, err))

		return relay.Dispatched()
	}

	if err := p.table.Register(id, method, complete); err != nil {
		complete(nil, err)

		return relay.Dispatched()
	}

	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			p.table.Cancel(id)
		})
		stopWatch.Store(&stop)

		// The entry may have completed before the watch was stored.
		if !p.table.Has(id) {
			stop()
		}
	}

	if err := p.transport.SendMessage(ctx, data); err != nil {
		p.log.Error("Failed to send command", "request_id", id, "method", method, "error", err)
		p.table.Complete(id, nil, fmt.Errorf("send %s request: %w", method, err))
	}

	return relay.Dispatched()
}

// Call sends a command and blocks until its response arrives, ctx ends, or the
// default relay ceiling elapses. It must not be called from a Callback.
func Call[T any](ctx context.Context, p *Processor, method string, params any) (T, error) {
	var (
		result  T
		callErr error
	)

	gate := relay.NewGate()
	ok := Send(ctx, p, method, params, func(res T, err error) {
		result, callErr = res, err
	}, gate)

	if err := gate.AcquireContext(ctx, ok); err != nil {
		var zero T

		return zero, err
	}

	return result, callErr
}

// decodeResult unmarshals a success payload into T.
func decodeResult[T any](method string, raw json.RawMessage) (T, error) {
	var result T

	if len(raw) == 0 || string(raw) == "null" {
		return result, nil
	}

	if err := json.Unmarshal(raw, &result); err != nil {
		return result, &errors.DecodeError{
			Method:  method,
			RawData: string(raw),
			Err:     err,
		}
	}

	return result, nil
}

// attachMethod fills in the command name on errors produced by the dispatcher.
func attachMethod(method string, err error) error {
	if pe, ok := stderrors.AsType[*errors.ProtocolError](err); ok && pe.Method == "" {
		pe.Method = method
	}

	if de, ok := stderrors.AsType[*errors.DecodeError](err); ok && de.Method == "" {
		de.Method = method
	}

	return err
}

// readLoop reads messages from the transport and routes them.
func (p *Processor) readLoop(
	ctx context.Context,
	messages <-chan []byte,
	errs <-chan error,
) {
	defer p.wg.Done()
	defer close(p.events)
	defer p.log.Debug("Protocol read loop stopped")

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				p.log.Debug("Message channel closed")
				p.SetFatalError(closeReason(errs))

				return
			}

			p.handleMessage(ctx, msg)

		case err, ok := <-errs:
			if !ok {
				p.log.Debug("Error channel closed")
				p.SetFatalError(fmt.Errorf("transport closed: %w", io.EOF))

				return
			}

			if err != nil {
				p.log.Debug("Transport error in protocol", "error", err)
				p.SetFatalError(err)

				return
			}

		case <-p.done:
			p.log.Debug("Command processor stop signal received")

			return

		case <-ctx.Done():
			p.log.Debug("Context cancelled in protocol read loop")
			p.SetFatalError(ctx.Err())

			return
		}
	}
}

// closeReason reports why the transport's message stream ended. A transport
// queues its read error before closing the stream, so an error already waiting
// on errs is the reason; otherwise the stream ended cleanly.
func closeReason(errs <-chan error) error {
	select {
	case err, ok := <-errs:
		if ok && err != nil {
			return err
		}
	default:
	}

	return fmt.Errorf("transport closed: %w", io.EOF)
}

// handleMessage routes a message based on its envelope.
func (p *Processor) handleMessage(ctx context.Context, raw []byte) {
	switch classify(raw) {
	case kindResponse:
		p.handleResponse(raw)

	case kindEvent:
		p.handleEvent(ctx, raw)

	default:
		p.log.Warn("Discarding unrecognised message", "size", len(raw))
	}
}

// handleResponse completes the pending request matching the response id.
func (p *Processor) handleResponse(raw []byte) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		id, ok := peekID(raw)
		if !ok {
			p.log.Warn("Response with malformed id", "error", err)

			return
		}

		p.table.Complete(id, nil, &errors.DecodeError{RawData: string(raw), Err: err})

		return
	}

	if resp.IsError() {
		p.table.Complete(resp.ID, nil, resp.Error.toProtocolError())

		return
	}

	p.table.Complete(resp.ID, resp.Result, nil)
}

// handleEvent forwards a notification to consumers. The dispatch goroutine
// never blocks on a slow consumer; overflow is dropped.
func (p *Processor) handleEvent(ctx context.Context, raw []byte) {
	var evt Event
	if err := json.Unmarshal(raw, &evt); err != nil {
		p.log.Warn("Failed to decode notification", "error", err)

		return
	}

	p.log.Debug("Received notification", "method", evt.Method)

	if p.onEvent != nil {
		p.invokeEventHandler(&evt)

		return
	}

	select {
	case p.events <- &evt:
	case <-p.done:
	case <-ctx.Done():
	default:
		p.log.Warn("Event buffer full, dropping notification", "method", evt.Method)
	}
}

// invokeEventHandler runs the event hook, containing panics so a faulty
// handler cannot stop the dispatch goroutine.
func (p *Processor) invokeEventHandler(evt *Event) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("Event handler panicked", "method", evt.Method, "panic", r)
		}
	}()

	p.onEvent(evt)
}
