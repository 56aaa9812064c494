// Package transport defines the interface for pluggable message transports.
//
// Each transport (HTTP/WebSocket, gRPC) implements this interface and hands
// every incoming message to the dispatcher. The dispatcher doesn't care how
// messages arrive; it only works with the Transport contract.
package transport

import (
	"context"

	"github.com/nadzzz/dictado/internal/message"
)

// Handler is a function that processes an incoming message and returns a response.
// The dispatcher provides this handler to each transport.
type Handler func(ctx context.Context, msg *message.Message) (*message.Response, error)

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http").
	Name() string

	// Listen starts accepting incoming messages and dispatches them to the handler.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, handler Handler) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
