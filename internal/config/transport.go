package config

import "context"

// Transport defines the interface for talking to a remote VM.
// Implement this to provide custom transports for testing, mocking,
// or alternative connection methods.
//
// The default implementation is the websocket transport. Custom transports can
// be injected via Options.Transport.
type Transport interface {
	// Start establishes the connection.
	// This is called before any messages are sent or received.
	Start(ctx context.Context) error

	// ReadMessages returns channels for receiving raw protocol frames and
	// errors. Both channels are closed when reading completes.
	ReadMessages(ctx context.Context) (<-chan []byte, <-chan error)

	// SendMessage writes one protocol frame.
	// This method must be safe for concurrent use.
	SendMessage(ctx context.Context, data []byte) error

	// Close terminates the connection and releases resources.
	// It's safe to call Close multiple times.
	Close() error

	// IsReady returns true if the transport is ready for communication.
	IsReady() bool
}
