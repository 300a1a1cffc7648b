package chromedevtools

import (
	"io"
	"log/slog"
	"time"
)

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithListener sets the receiver of suspend, resume, script and disconnect
// notifications.
func WithListener(listener DebugEventListener) Option {
	return func(o *Options) {
		o.Listener = listener
	}
}

// WithBreakOnException selects which exceptions suspend the VM.
// Valid values: "none", "uncaught", "all".
func WithBreakOnException(mode string) Option {
	return func(o *Options) {
		o.BreakOnException = mode
	}
}

// ===== Connection =====

// WithURL attaches to a websocket debugger URL directly.
func WithURL(url string) Option {
	return func(o *Options) {
		o.URL = url
	}
}

// WithHTTPEndpoint attaches to the first target listed by an inspector's
// HTTP endpoint, e.g. "http://127.0.0.1:9229".
func WithHTTPEndpoint(endpoint string) Option {
	return func(o *Options) {
		o.HTTPEndpoint = endpoint
	}
}

// WithTransport injects a custom transport. It takes precedence over every
// other connection source.
func WithTransport(t Transport) Option {
	return func(o *Options) {
		o.Transport = t
	}
}

// WithHandshakeTimeout bounds the websocket handshake, and the wait for a
// launched script's inspector to come up.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.HandshakeTimeout = d
	}
}

// WithWriteTimeout bounds each websocket frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.WriteTimeout = d
	}
}

// WithScriptsTimeout bounds Scripts.
func WithScriptsTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ScriptsTimeout = d
	}
}

// ===== Launching node =====

// WithScript launches script under node with the inspector enabled and
// attaches to it.
func WithScript(script string, args ...string) Option {
	return func(o *Options) {
		o.Script = script
		o.ScriptArgs = args
	}
}

// WithNodePath sets the explicit path to the node binary.
// If not set, node will be searched in PATH.
func WithNodePath(path string) Option {
	return func(o *Options) {
		o.NodePath = path
	}
}

// WithNodeArgs adds node flags placed before the script.
func WithNodeArgs(args ...string) Option {
	return func(o *Options) {
		o.NodeArgs = args
	}
}

// WithCwd sets the working directory for the node process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithEnv provides additional environment variables for the node process.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithStdout sets where the node process's standard output goes.
func WithStdout(w io.Writer) Option {
	return func(o *Options) {
		o.Stdout = w
	}
}

// WithStderr sets a callback for stderr lines of the node process.
func WithStderr(handler func(string)) Option {
	return func(o *Options) {
		o.Stderr = handler
	}
}

// WithSkipVersionCheck disables the node version check.
func WithSkipVersionCheck(skip bool) Option {
	return func(o *Options) {
		o.SkipVersionCheck = skip
	}
}
