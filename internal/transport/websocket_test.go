package transport

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/cczw2010/chromedevtools/internal/errors"
)

// echoServer upgrades every request and echoes text frames back, optionally
// pushing one unsolicited frame after the upgrade.
func echoServer(t *testing.T, greeting string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if greeting != "" {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(greeting)); err != nil {
				return
			}
		}

		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}

			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))

	t.Cleanup(srv.Close)

	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func recvFrame(t *testing.T, ch <-chan []byte) string {
	t.Helper()

	select {
	case data, ok := <-ch:
		require.True(t, ok, "message channel closed")

		return string(data)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")

		return ""
	}
}

func TestWebSocket_RoundTrip(t *testing.T) {
	srv := echoServer(t, `{"method":"Debugger.resumed","params":{}}`)

	tr := New(slog.Default(), Config{URL: wsURL(srv)})
	require.False(t, tr.IsReady())
	require.NoError(t, tr.Start(context.Background()))
	require.True(t, tr.IsReady())

	t.Cleanup(func() { _ = tr.Close() })

	msgs, _ := tr.ReadMessages(context.Background())

	require.JSONEq(t, `{"method":"Debugger.resumed","params":{}}`, recvFrame(t, msgs))

	require.NoError(t, tr.SendMessage(context.Background(), []byte(`{"id":1,"method":"Debugger.enable"}`)))
	require.JSONEq(t, `{"id":1,"method":"Debugger.enable"}`, recvFrame(t, msgs))
}

func TestWebSocket_ReadMessagesReturnsSameChannels(t *testing.T) {
	srv := echoServer(t, "")

	tr := New(slog.Default(), Config{URL: wsURL(srv)})
	require.NoError(t, tr.Start(context.Background()))

	t.Cleanup(func() { _ = tr.Close() })

	m1, e1 := tr.ReadMessages(context.Background())
	m2, e2 := tr.ReadMessages(context.Background())

	require.Equal(t, m1, m2)
	require.Equal(t, e1, e2)
}

func TestWebSocket_CloseIsIdempotent(t *testing.T) {
	srv := echoServer(t, "")

	tr := New(slog.Default(), Config{URL: wsURL(srv)})
	require.NoError(t, tr.Start(context.Background()))

	msgs, _ := tr.ReadMessages(context.Background())

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	require.False(t, tr.IsReady())

	err := tr.SendMessage(context.Background(), []byte(`{}`))
	require.ErrorIs(t, err, errors.ErrTransportNotConnected)

	select {
	case _, ok := <-msgs:
		require.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("message channel not closed after Close")
	}
}

func TestWebSocket_ServerDropSurfacesError(t *testing.T) {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		// Drop the TCP connection without a close frame.
		_ = conn.NetConn().Close()
	}))
	t.Cleanup(srv.Close)

	tr := New(slog.Default(), Config{URL: wsURL(srv)})
	require.NoError(t, tr.Start(context.Background()))

	t.Cleanup(func() { _ = tr.Close() })

	_, errs := tr.ReadMessages(context.Background())

	select {
	case err, ok := <-errs:
		require.True(t, ok)
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for read error")
	}
}

func TestWebSocket_StartErrors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "bad scheme", url: "http://127.0.0.1:1/x"},
		{name: "unparseable", url: "ws://[::1"},
		{name: "refused", url: "ws://127.0.0.1:1/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(slog.Default(), Config{URL: tt.url, HandshakeTimeout: time.Second})

			err := tr.Start(context.Background())
			require.Error(t, err)

			connErr, ok := stdAs[*errors.ConnectionError](err)
			require.True(t, ok)
			require.NotEmpty(t, connErr.URL)
		})
	}
}

func TestWebSocket_SendBeforeStart(t *testing.T) {
	tr := New(slog.Default(), Config{URL: "ws://127.0.0.1:1"})

	err := tr.SendMessage(context.Background(), []byte(`{}`))
	require.ErrorIs(t, err, errors.ErrTransportNotConnected)
}
