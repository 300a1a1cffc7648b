// Package transport connects to a remote VM's inspector endpoint.
//
// WebSocket implements config.Transport over a gorilla/websocket connection:
// one text frame per protocol message, writes serialized by a mutex, a single
// reader goroutine feeding ReadMessages. ListTargets queries the inspector's
// HTTP discovery endpoint (/json/list) for attachable targets.
package transport
