package connector

import (
	"context"
	"fmt"
	"sync"
)

var _ Connector[int] = (*Channel[int])(nil)

// Channel implements a fixed size [Connector] on top of a buffered channel.
// Unlike [ResizingRingBuffer], writes block while the channel is full.
type Channel[T any] struct {
	buffer chan T

	done      chan struct{}
	closeOnce sync.Once
}

// NewChannel creates a new [Channel] with the given capacity.
func NewChannel[T any](capacity int) (*Channel[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	return &Channel[T]{
		buffer: make(chan T, capacity),

		done: make(chan struct{}),
	}, nil
}

func (c *Channel[T]) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Channel[T]) Write(item T) error {
	return c.WriteContext(context.Background(), item)
}

func (c *Channel[T]) WriteContext(ctx context.Context, item T) error {
	if c.isClosed() {
		return ErrClosed
	}

	// Try to send the item without blocking
	select {
	case c.buffer <- item:
		return nil
	default:
	}

	// The channel is full, block until there is space or the channel is closed
	select {
	case c.buffer <- item:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Channel[T]) Read() (T, error) {
	return c.ReadContext(context.Background())
}

func (c *Channel[T]) ReadContext(ctx context.Context) (T, error) {
	// Try to receive without blocking
	select {
	case item := <-c.buffer:
		return item, nil
	default:
	}

	select {
	case item := <-c.buffer:
		return item, nil

	case <-c.done:
		// Drain what was written before closing
		select {
		case item := <-c.buffer:
			return item, nil
		default:
			return *new(T), ErrClosed
		}

	case <-ctx.Done():
		return *new(T), ctx.Err()
	}
}

// Close closes the [Channel] connector.
func (c *Channel[T]) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Len returns the number of buffered items.
func (c *Channel[T]) Len() int {
	return len(c.buffer)
}

func (c *Channel[T]) Cap() int {
	return cap(c.buffer)
}
