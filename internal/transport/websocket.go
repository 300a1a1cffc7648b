package transport

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cczw2010/chromedevtools/internal/config"
	"github.com/cczw2010/chromedevtools/internal/errors"
)

const (
	// readBufferSize is the number of inbound frames buffered ahead of the
	// dispatcher.
	readBufferSize = 64

	// maxMessageSize caps a single inbound frame. Script sources can be large.
	maxMessageSize = 64 * 1024 * 1024

	// closeGracePeriod bounds the close handshake.
	closeGracePeriod = time.Second
)

// Config configures a WebSocket transport.
type Config struct {
	// URL is the websocket debugger URL.
	URL string

	// HandshakeTimeout bounds the opening handshake.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration
}

// WebSocket implements config.Transport over a websocket connection.
type WebSocket struct {
	log *slog.Logger
	cfg Config

	connMu sync.RWMutex
	conn   *websocket.Conn

	writeMu sync.Mutex

	readOnce sync.Once
	messages chan []byte
	errs     chan error

	closeOnce sync.Once
	closed    chan struct{}
}

// Compile-time verification that WebSocket implements the Transport interface.
var _ config.Transport = (*WebSocket)(nil)

// New creates an unconnected websocket transport. Call Start to dial.
func New(log *slog.Logger, cfg Config) *WebSocket {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = config.DefaultHandshakeTimeout
	}

	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = config.DefaultWriteTimeout
	}

	return &WebSocket{
		log:      log.With("component", "ws_transport"),
		cfg:      cfg,
		messages: make(chan []byte, readBufferSize),
		errs:     make(chan error, 1),
		closed:   make(chan struct{}),
	}
}

// Start dials the debugger URL.
//
// Returns a *errors.ConnectionError if the URL is invalid or the handshake
// fails.
func (t *WebSocket) Start(ctx context.Context) error {
	u, err := url.Parse(t.cfg.URL)
	if err != nil {
		return &errors.ConnectionError{URL: t.cfg.URL, Err: fmt.Errorf("invalid url: %w", err)}
	}

	if u.Scheme != "ws" && u.Scheme != "wss" {
		return &errors.ConnectionError{URL: t.cfg.URL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	t.log.Info("Connecting to debugger", "url", u.String())

	// Inspector endpoints are almost always local; never route them through
	// HTTP_PROXY.
	dialer := websocket.Dialer{
		Proxy:            nil,
		HandshakeTimeout: t.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		t.log.Error("Failed to connect to debugger", "url", u.String(), "error", err)

		return &errors.ConnectionError{URL: u.String(), Err: err}
	}

	conn.SetReadLimit(maxMessageSize)

	t.connMu.Lock()
	t.conn = conn
	t.connMu.Unlock()

	t.log.Info("Connected to debugger", "url", u.String())

	return nil
}

// ReadMessages starts the reader goroutine on first call and returns its
// channels. Both channels are closed when the connection ends.
func (t *WebSocket) ReadMessages(ctx context.Context) (<-chan []byte, <-chan error) {
	t.readOnce.Do(func() {
		go t.readLoop(ctx)
	})

	return t.messages, t.errs
}

func (t *WebSocket) readLoop(ctx context.Context) {
	defer close(t.messages)
	defer close(t.errs)
	defer t.log.Debug("Websocket read loop stopped")

	t.connMu.RLock()
	conn := t.conn
	t.connMu.RUnlock()

	if conn == nil {
		t.errs <- errors.ErrTransportNotConnected

		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-t.closed:
				return
			default:
			}

			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				t.log.Info("Debugger closed the connection", "error", err)

				return
			}

			t.log.Error("Websocket read error", "error", err)
			t.errs <- fmt.Errorf("websocket read: %w", err)

			return
		}

		select {
		case t.messages <- data:
		case <-t.closed:
			return
		case <-ctx.Done():
			t.errs <- ctx.Err()

			return
		}
	}
}

// SendMessage writes one text frame. It is safe for concurrent use.
func (t *WebSocket) SendMessage(ctx context.Context, data []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.closed:
		return errors.ErrTransportNotConnected
	default:
	}

	t.connMu.RLock()
	conn := t.conn
	t.connMu.RUnlock()

	if conn == nil {
		return errors.ErrTransportNotConnected
	}

	deadline := time.Now().Add(t.cfg.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if err := conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.log.Error("Failed to write frame", "error", err)

		return fmt.Errorf("websocket write: %w", err)
	}

	t.log.Debug("Frame sent", "data_len", len(data))

	return nil
}

// IsReady reports whether the connection is open.
func (t *WebSocket) IsReady() bool {
	select {
	case <-t.closed:
		return false
	default:
	}

	t.connMu.RLock()
	defer t.connMu.RUnlock()

	return t.conn != nil
}

// Close sends a close frame and closes the connection. It's safe to call
// Close multiple times.
func (t *WebSocket) Close() error {
	var err error

	t.closeOnce.Do(func() {
		close(t.closed)

		t.connMu.Lock()
		conn := t.conn
		t.connMu.Unlock()

		if conn == nil {
			return
		}

		t.log.Debug("Closing websocket")

		t.writeMu.Lock()
		closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing")
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(closeGracePeriod))
		t.writeMu.Unlock()

		err = conn.Close()
	})

	return err
}
