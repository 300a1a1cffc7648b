package config

import (
	"io"
	"log/slog"
	"time"

	"github.com/cczw2010/chromedevtools/internal/debugger"
)

const (
	// DefaultHandshakeTimeout bounds the websocket opening handshake.
	DefaultHandshakeTimeout = 45 * time.Second

	// DefaultWriteTimeout bounds a single frame write.
	DefaultWriteTimeout = 10 * time.Second
)

// Options configures how the client reaches a VM and how the session behaves.
//
// Exactly one connection source is used, in this order: Transport, URL,
// HTTPEndpoint, Script.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// URL is a websocket debugger URL, e.g. ws://127.0.0.1:9229/<uuid>.
	URL string

	// HTTPEndpoint is the inspector's HTTP address, e.g. http://127.0.0.1:9229.
	// The first target listed at /json/list is used.
	HTTPEndpoint string

	// Script is a JavaScript file to launch under node --inspect-brk.
	Script string

	// ScriptArgs are passed to the script.
	ScriptArgs []string

	// NodePath is an explicit node binary. Empty searches PATH and common
	// install locations.
	NodePath string

	// NodeArgs are extra node flags placed before the script.
	NodeArgs []string

	// Cwd sets the working directory for a launched script.
	Cwd string

	// Env provides additional environment variables for a launched script.
	Env map[string]string

	// Stdout receives the launched script's standard output. Nil discards it.
	Stdout io.Writer `json:"-"`

	// Stderr is a callback function for handling stderr output of a launched
	// script.
	Stderr func(string)

	// SkipVersionCheck skips the node version check during discovery.
	SkipVersionCheck bool

	// HandshakeTimeout bounds the websocket handshake. Zero means
	// DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each frame write. Zero means DefaultWriteTimeout.
	WriteTimeout time.Duration

	// ScriptsTimeout bounds GetScripts. Zero means the relay default.
	ScriptsTimeout time.Duration

	// BreakOnException selects which exceptions suspend the VM once the
	// session is enabled. Empty leaves the VM setting unchanged.
	BreakOnException string

	// Listener receives session notifications.
	Listener debugger.DebugEventListener

	// Transport allows injecting a custom transport implementation.
	// If nil, a websocket transport is created automatically.
	Transport Transport `json:"-"`
}
