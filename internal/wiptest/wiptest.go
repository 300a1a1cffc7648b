// Package wiptest provides an in-memory remote VM for tests.
//
// FakeVM implements the client transport interface. Commands written to it
// are recorded and answered by per-method handlers; tests push notifications
// with Emit.
package wiptest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Handler answers one command. Returning a non-nil *Error produces an error
// response; returning NoReply leaves the command pending.
type Handler func(params json.RawMessage) (any, *Error)

// Error is a protocol error response body.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NoReply is returned by handlers that must not answer.
var NoReply = &Error{Code: -1}

// Hang is a Handler that never answers.
func Hang(json.RawMessage) (any, *Error) {
	return nil, NoReply
}

// Command is a recorded outgoing command.
type Command struct {
	ID     int64           `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// FakeVM is a scripted remote VM.
type FakeVM struct {
	mu       sync.Mutex
	handlers map[string]Handler
	commands []Command
	started  bool
	closed   bool
	startErr error
	sendErr  error

	messages chan []byte
	errs     chan error
}

// New creates a FakeVM that answers unknown methods with an empty result.
func New() *FakeVM {
	return &FakeVM{
		handlers: make(map[string]Handler),
		messages: make(chan []byte, 256),
		errs:     make(chan error, 1),
	}
}

// Handle installs the handler for method.
func (f *FakeVM) Handle(method string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.handlers[method] = h
}

// Reply installs a handler that always answers method with result.
func (f *FakeVM) Reply(method string, result any) {
	f.Handle(method, func(json.RawMessage) (any, *Error) {
		return result, nil
	})
}

// Fail installs a handler that always answers method with an error.
func (f *FakeVM) Fail(method string, code int, msg string) {
	f.Handle(method, func(json.RawMessage) (any, *Error) {
		return nil, &Error{Code: code, Message: msg}
	})
}

// SetSendError makes every subsequent SendMessage fail with err.
func (f *FakeVM) SetSendError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sendErr = err
}

// SetStartError makes Start fail with err.
func (f *FakeVM) SetStartError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.startErr = err
}

// Start marks the fake as connected.
func (f *FakeVM) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.startErr != nil {
		return f.startErr
	}

	f.started = true

	return nil
}

// IsReady reports whether Start succeeded and Close has not been called.
func (f *FakeVM) IsReady() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.started && !f.closed
}

// Closed reports whether Close has been called.
func (f *FakeVM) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

// ReadMessages implements the transport read side.
func (f *FakeVM) ReadMessages(_ context.Context) (<-chan []byte, <-chan error) {
	return f.messages, f.errs
}

// SendMessage records the command and answers it asynchronously.
func (f *FakeVM) SendMessage(_ context.Context, data []byte) error {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return fmt.Errorf("fake vm: malformed command: %w", err)
	}

	f.mu.Lock()

	if f.sendErr != nil {
		err := f.sendErr
		f.mu.Unlock()

		return err
	}

	f.commands = append(f.commands, cmd)
	h := f.handlers[cmd.Method]
	f.mu.Unlock()

	var (
		result any = struct{}{}
		rpcErr *Error
	)

	if h != nil {
		result, rpcErr = h(cmd.Params)
	}

	if rpcErr == NoReply {
		return nil
	}

	resp := map[string]any{"id": cmd.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}

	f.push(resp)

	return nil
}

// Emit pushes a notification to the client.
func (f *FakeVM) Emit(method string, params any) {
	f.push(map[string]any{"method": method, "params": params})
}

// Respond pushes a response for id, used with handlers that returned NoReply.
func (f *FakeVM) Respond(id int64, result any) {
	f.push(map[string]any{"id": id, "result": result})
}

// Close ends the message stream as if the connection dropped.
func (f *FakeVM) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.closed {
		f.closed = true
		close(f.messages)
	}

	return nil
}

// Commands returns the commands received so far.
func (f *FakeVM) Commands() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Command, len(f.commands))
	copy(out, f.commands)

	return out
}

// Methods returns the method names received so far, in order.
func (f *FakeVM) Methods() []string {
	cmds := f.Commands()

	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.Method
	}

	return out
}

// Last returns the most recent command for method.
func (f *FakeVM) Last(method string) (Command, bool) {
	cmds := f.Commands()

	for i := len(cmds) - 1; i >= 0; i-- {
		if cmds[i].Method == method {
			return cmds[i], true
		}
	}

	return Command{}, false
}

func (f *FakeVM) push(msg map[string]any) {
	data, err := json.Marshal(msg)
	if err != nil {
		panic(fmt.Sprintf("fake vm: marshal: %v", err))
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.messages <- data
}
