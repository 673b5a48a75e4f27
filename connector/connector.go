// Package connector contains the buffers used to hand items from producers to consumers.
package connector

import (
	"context"
	"errors"
)

var (
	// ErrClosed is returned when writing to a closed connector,
	// or when reading from a connector that is closed and drained.
	ErrClosed = errors.New("connector: closed")
	// ErrInvalidCapacity is returned when a connector is created with a capacity lower than 1.
	ErrInvalidCapacity = errors.New("connector: capacity must be at least 1")
)

// Connector joins the goroutines writing items with the ones reading them.
type Connector[T any] interface {
	// Write adds an item to the connector.
	Write(item T) error
	// WriteContext is like Write, but it gives up when ctx is done.
	WriteContext(ctx context.Context, item T) error
	// Read removes the oldest item, blocking while the connector is empty.
	Read() (T, error)
	// ReadContext is like Read, but it gives up when ctx is done.
	ReadContext(ctx context.Context) (T, error)
	// Close stops further writes and wakes every blocked reader.
	Close()
}
