package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cczw2010/chromedevtools/internal/config"
	"github.com/cczw2010/chromedevtools/internal/debugger"
	"github.com/cczw2010/chromedevtools/internal/errors"
	"github.com/cczw2010/chromedevtools/internal/protocol"
	"github.com/cczw2010/chromedevtools/internal/relay"
	"github.com/cczw2010/chromedevtools/internal/subprocess"
	"github.com/cczw2010/chromedevtools/internal/transport"
	"github.com/cczw2010/chromedevtools/internal/wip"
)

// Client owns one debugging connection.
type Client struct {
	log       *slog.Logger
	transport config.Transport
	proc      *protocol.Processor
	session   *debugger.Session
	options   *config.Options

	// Errgroup for goroutine management
	eg *errgroup.Group

	// Lifecycle management
	mu        sync.Mutex
	connected bool
	closed    bool
	closeOnce sync.Once
}

// New creates a new client.
//
// The client is not connected after creation. Call Start() with options to connect.
func New() *Client {
	return &Client{}
}

// Start connects to the VM and enables the debugging session.
//
// ctx bounds connection setup only. The connection stays up until Close or
// until the VM goes away.
func (c *Client) Start(ctx context.Context, options *config.Options) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrClientClosed
	}

	if c.connected {
		return errors.ErrClientAlreadyConnected
	}

	if options == nil {
		options = &config.Options{}
	}

	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c.log = log.With("component", "client")
	c.options = options

	pauseMode, hasPauseMode, err := pauseMode(options)
	if err != nil {
		return err
	}

	tr, err := c.newTransport(ctx, log)
	if err != nil {
		return err
	}

	if err := tr.Start(ctx); err != nil {
		return fmt.Errorf("start transport: %w", err)
	}

	c.transport = tr

	c.proc = protocol.NewProcessor(log, tr)
	c.session = debugger.New(log, c.proc, debugger.Options{
		Listener:       options.Listener,
		ScriptsTimeout: options.ScriptsTimeout,
	})

	// The errgroup uses context.Background() rather than ctx: ctx may carry
	// a setup deadline, and the connection must outlive it.
	var egCtx context.Context

	c.eg, egCtx = errgroup.WithContext(context.Background())

	if err := c.proc.Start(egCtx); err != nil {
		c.abort()

		return fmt.Errorf("start command processor: %w", err)
	}

	c.eg.Go(func() error {
		return c.session.Run(egCtx)
	})

	if err := c.session.Enable(ctx); err != nil {
		c.abort()

		return fmt.Errorf("enable debugger: %w", err)
	}

	if hasPauseMode {
		gate := relay.NewGate()

		ok := c.session.SetBreakOnException(ctx, pauseMode, nil, gate)
		if err := gate.AcquireContext(ctx, ok); err != nil {
			c.abort()

			return fmt.Errorf("set pause on exceptions: %w", err)
		}
	}

	// Breakpoints and pause mode are in place before a waiting VM starts.
	gate := relay.NewGate()
	if err := gate.AcquireContext(ctx, c.session.RunIfWaiting(ctx, nil, gate)); err != nil {
		c.log.Warn("Failed to release waiting VM", "error", err)
	}

	c.connected = true
	c.log.Info("Client started", "session_id", c.session.ID())

	return nil
}

func pauseMode(options *config.Options) (state wip.PauseOnExceptionsState, ok bool, err error) {
	if options.BreakOnException == "" {
		return "", false, nil
	}

	state, err = config.NormalizePauseMode(options.BreakOnException)
	if err != nil {
		return "", false, err
	}

	return state, true, nil
}

// newTransport picks the connection source. Precedence: injected transport,
// websocket URL, HTTP endpoint, script.
func (c *Client) newTransport(ctx context.Context, log *slog.Logger) (config.Transport, error) {
	opts := c.options

	wsConfig := func(url string) transport.Config {
		return transport.Config{
			URL:              url,
			HandshakeTimeout: opts.HandshakeTimeout,
			WriteTimeout:     opts.WriteTimeout,
		}
	}

	switch {
	case opts.Transport != nil:
		c.log.Debug("Using injected custom transport")

		return opts.Transport, nil

	case opts.URL != "":
		return transport.New(log, wsConfig(opts.URL)), nil

	case opts.HTTPEndpoint != "":
		url, err := transport.ResolveDebuggerURL(ctx, http.DefaultClient, opts.HTTPEndpoint)
		if err != nil {
			return nil, fmt.Errorf("resolve debugger url: %w", err)
		}

		c.log.Debug("Resolved debugger url", "endpoint", opts.HTTPEndpoint, "url", url)

		return transport.New(log, wsConfig(url)), nil

	case opts.Script != "":
		return subprocess.NewNodeTransport(log, opts), nil

	default:
		return nil, fmt.Errorf("%w: no url, http endpoint or script configured", errors.ErrNoTarget)
	}
}

// abort tears down a partially started connection. Caller must hold c.mu.
func (c *Client) abort() {
	if c.proc != nil {
		c.proc.Stop()
	}

	if c.transport != nil {
		_ = c.transport.Close()
	}

	if c.eg != nil {
		_ = c.eg.Wait()
	}
}

// Session returns the debugging session, or nil before Start.
func (c *Client) Session() *debugger.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.session
}

// Done is closed when the connection to the VM ends.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.proc == nil {
		ch := make(chan struct{})
		close(ch)

		return ch
	}

	return c.proc.Done()
}

// Err returns why the connection ended, or nil while it is up or after a
// clean Close.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.proc == nil {
		return nil
	}

	return c.proc.FatalError()
}

// Close terminates the session and cleans up resources.
//
// After Close(), the client cannot be reused - create a new client with New().
// This method is safe to call multiple times.
func (c *Client) Close() error {
	var closeErr error

	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		wasConnected := c.connected
		c.connected = false
		c.mu.Unlock()

		if !wasConnected {
			return
		}

		c.log.Info("Closing client")

		c.proc.Stop()

		closeErr = c.transport.Close()

		// Session.Run returns after the processor stops.
		if err := c.eg.Wait(); err != nil && closeErr == nil {
			closeErr = err
		}

		c.log.Info("Client closed")
	})

	return closeErr
}
