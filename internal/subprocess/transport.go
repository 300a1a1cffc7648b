package subprocess

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cczw2010/chromedevtools/internal/config"
	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/transport"
)

// exitGracePeriod is how long a dropped connection waits for node to exit
// so that its exit status can be reported.
const exitGracePeriod = 2 * time.Second

// NodeTransport implements config.Transport by launching a script under node
// and attaching to its inspector.
type NodeTransport struct {
	log     *slog.Logger
	options *config.Options
	proc    *Process

	mu sync.RWMutex
	ws *transport.WebSocket

	readOnce sync.Once
	messages chan []byte
	errs     chan error

	closeOnce sync.Once
	closed    chan struct{}
}

// Compile-time verification that NodeTransport implements the Transport interface.
var _ config.Transport = (*NodeTransport)(nil)

// NewNodeTransport creates a transport that launches options.Script on Start.
func NewNodeTransport(log *slog.Logger, options *config.Options) *NodeTransport {
	return &NodeTransport{
		log:      log.With("component", "node_transport"),
		options:  options,
		proc:     NewProcess(log, options),
		messages: make(chan []byte),
		errs:     make(chan error),
		closed:   make(chan struct{}),
	}
}

// Start launches node and connects to its inspector.
func (t *NodeTransport) Start(ctx context.Context) error {
	url, err := t.proc.Start(ctx)
	if err != nil {
		return err
	}

	ws := transport.New(t.log, transport.Config{
		URL:              url,
		HandshakeTimeout: t.options.HandshakeTimeout,
		WriteTimeout:     t.options.WriteTimeout,
	})

	if err := ws.Start(ctx); err != nil {
		_ = t.proc.Close()

		return err
	}

	t.mu.Lock()
	t.ws = ws
	t.mu.Unlock()

	return nil
}

// Process returns the launched node process.
func (t *NodeTransport) Process() *Process {
	return t.proc
}

// ReadMessages forwards inspector frames. When the connection ends, an
// abnormal node exit is reported as *errors.ProcessError in preference to the
// underlying websocket error.
func (t *NodeTransport) ReadMessages(ctx context.Context) (<-chan []byte, <-chan error) {
	t.readOnce.Do(func() {
		t.mu.RLock()
		ws := t.ws
		t.mu.RUnlock()

		if ws == nil {
			go func() {
				defer close(t.messages)
				defer close(t.errs)

				t.report(ctx, errors.ErrTransportNotConnected)
			}()

			return
		}

		wsMsgs, wsErrs := ws.ReadMessages(ctx)

		go t.forward(ctx, wsMsgs, wsErrs)
	})

	return t.messages, t.errs
}

func (t *NodeTransport) forward(ctx context.Context, wsMsgs <-chan []byte, wsErrs <-chan error) {
	defer close(t.messages)
	defer close(t.errs)

	var final error

	for wsMsgs != nil || wsErrs != nil {
		select {
		case msg, ok := <-wsMsgs:
			if !ok {
				wsMsgs = nil

				continue
			}

			select {
			case t.messages <- msg:
			case <-t.closed:
				return
			case <-ctx.Done():
				return
			}

		case err, ok := <-wsErrs:
			if !ok {
				wsErrs = nil

				continue
			}

			if err != nil && final == nil {
				final = err
			}
		}
	}

	select {
	case <-t.closed:
		return
	default:
	}

	timer := time.NewTimer(exitGracePeriod)
	defer timer.Stop()

	select {
	case <-t.proc.Exited():
		if perr := t.proc.Err(); perr != nil {
			final = perr
		}
	case <-timer.C:
		t.log.Debug("node still running after inspector connection ended")
	case <-t.closed:
		return
	}

	if final != nil {
		t.report(ctx, final)
	}
}

// report hands err to the reader before the channels close so it is never
// mistaken for a clean end of stream.
func (t *NodeTransport) report(ctx context.Context, err error) {
	select {
	case t.errs <- err:
	case <-t.closed:
	case <-ctx.Done():
	}
}

// SendMessage writes one protocol frame to the inspector.
func (t *NodeTransport) SendMessage(ctx context.Context, data []byte) error {
	t.mu.RLock()
	ws := t.ws
	t.mu.RUnlock()

	if ws == nil {
		return errors.ErrTransportNotConnected
	}

	return ws.SendMessage(ctx, data)
}

// IsReady reports whether node is running and the inspector connection open.
func (t *NodeTransport) IsReady() bool {
	select {
	case <-t.proc.Exited():
		return false
	default:
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.ws != nil && t.ws.IsReady()
}

// Close disconnects and kills node. It's safe to call Close multiple times.
func (t *NodeTransport) Close() error {
	var err error

	t.closeOnce.Do(func() {
		close(t.closed)

		t.mu.RLock()
		ws := t.ws
		t.mu.RUnlock()

		var wsErr error
		if ws != nil {
			wsErr = ws.Close()
		}

		err = stderrors.Join(wsErr, t.proc.Close())
	})

	return err
}
