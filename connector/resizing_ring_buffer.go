package connector

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/squadracorsepolito/elasticq/event"
	"golang.org/x/sys/cpu"
)

var _ Connector[int] = (*ResizingRingBuffer[int])(nil)

// ResizingRingBuffer is a FIFO ring buffer guarded by a single mutex.
//
// When a write finds the buffer full the capacity is doubled,
// so writers never block unless a maximum capacity is set.
// When a read finds at most a quarter of the slots occupied the capacity is halved.
// Every resize copies the items into a new slice starting at index 0.
type ResizingRingBuffer[T any] struct {
	mux      *sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond

	buffer []T

	capacity int
	size     int
	front    int

	// maxCapacity is the growth ceiling, 0 means unbounded.
	maxCapacity int

	closed bool

	sink event.Sink

	_ cpu.CacheLinePad

	// written and consumed are running totals readable without the lock.
	written atomic.Uint64

	_ cpu.CacheLinePad

	consumed atomic.Uint64

	_ cpu.CacheLinePad

	grows   atomic.Uint64
	shrinks atomic.Uint64
}

type Option func(*options)

type options struct {
	sink        event.Sink
	maxCapacity int
}

// WithSink sets the [event.Sink] notified on every resize.
func WithSink(sink event.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithMaxCapacity limits the growth of the buffer.
// Once the capacity reaches maxCapacity, writes to a full buffer block until
// a read frees a slot.
func WithMaxCapacity(maxCapacity int) Option {
	return func(o *options) {
		o.maxCapacity = maxCapacity
	}
}

// NewResizingRingBuffer returns an empty [ResizingRingBuffer] with the given initial capacity.
//
// Returns [ErrInvalidCapacity] if capacity is lower than 1
// or if the maximum capacity is set below it.
func NewResizingRingBuffer[T any](capacity int, opts ...Option) (*ResizingRingBuffer[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.maxCapacity < 0 || (o.maxCapacity > 0 && o.maxCapacity < capacity) {
		return nil, fmt.Errorf("%w: maximum capacity %d is lower than initial capacity %d", ErrInvalidCapacity, o.maxCapacity, capacity)
	}

	mux := &sync.Mutex{}

	return &ResizingRingBuffer[T]{
		mux:      mux,
		notEmpty: sync.NewCond(mux),
		notFull:  sync.NewCond(mux),

		buffer: make([]T, capacity),

		capacity: capacity,

		maxCapacity: o.maxCapacity,

		sink: o.sink,
	}, nil
}

// linearize copies the occupied slots, oldest first, into dst.
func (rb *ResizingRingBuffer[T]) linearize(dst []T) {
	n := copy(dst, rb.buffer[rb.front:min(rb.front+rb.size, rb.capacity)])
	copy(dst[n:], rb.buffer[:rb.size-n])
}

func (rb *ResizingRingBuffer[T]) resize(newCapacity int) {
	newBuffer := make([]T, newCapacity)
	rb.linearize(newBuffer)

	rb.buffer = newBuffer
	rb.capacity = newCapacity
	rb.front = 0
}

func (rb *ResizingRingBuffer[T]) notify(kind event.ResizeKind, oldCapacity int) {
	if rb.sink == nil {
		return
	}

	rb.sink.Notify(event.NewResizeEvent(kind, oldCapacity, rb.capacity, rb.size))
}

func (rb *ResizingRingBuffer[T]) canGrow() bool {
	return rb.maxCapacity == 0 || rb.capacity < rb.maxCapacity
}

func (rb *ResizingRingBuffer[T]) grow() {
	oldCapacity := rb.capacity

	newCapacity := oldCapacity * 2
	if rb.maxCapacity > 0 {
		newCapacity = min(newCapacity, rb.maxCapacity)
	}

	rb.resize(newCapacity)
	rb.grows.Add(1)

	rb.notify(event.ResizeKindGrow, oldCapacity)
}

// shrinkIfSparse halves the capacity when at most a quarter of it is occupied.
// It must be called before an item is removed.
func (rb *ResizingRingBuffer[T]) shrinkIfSparse() {
	if rb.capacity <= 1 || rb.size > rb.capacity/4 {
		return
	}

	oldCapacity := rb.capacity

	rb.resize(max(oldCapacity/2, 1))
	rb.shrinks.Add(1)

	rb.notify(event.ResizeKindShrink, oldCapacity)
}

// wait blocks on cond until it is signaled or ctx is done.
// The lock must be held by the caller, and it is held again when wait returns.
func (rb *ResizingRingBuffer[T]) wait(ctx context.Context, cond *sync.Cond) error {
	if ctx.Done() == nil {
		cond.Wait()
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// The callback needs the lock, so it cannot broadcast before Wait has released it.
	stop := context.AfterFunc(ctx, func() {
		rb.mux.Lock()
		cond.Broadcast()
		rb.mux.Unlock()
	})

	cond.Wait()
	stop()

	return nil
}

func (rb *ResizingRingBuffer[T]) push(item T) {
	rb.buffer[(rb.front+rb.size)%rb.capacity] = item
	rb.size++

	rb.written.Add(1)

	rb.notEmpty.Signal()
}

func (rb *ResizingRingBuffer[T]) pop() T {
	rb.shrinkIfSparse()

	var zero T

	item := rb.buffer[rb.front]
	rb.buffer[rb.front] = zero

	rb.front = (rb.front + 1) % rb.capacity
	rb.size--

	rb.consumed.Add(1)

	if rb.maxCapacity > 0 {
		rb.notFull.Signal()
	}

	return item
}

// Write adds an item to the [ResizingRingBuffer], growing it if it is full.
// It blocks only when a maximum capacity is set and reached.
//
// Returns [ErrClosed] if the buffer is closed.
func (rb *ResizingRingBuffer[T]) Write(item T) error {
	return rb.WriteContext(context.Background(), item)
}

// WriteContext is like [ResizingRingBuffer.Write],
// but it returns the context error if ctx is done while waiting for a free slot.
func (rb *ResizingRingBuffer[T]) WriteContext(ctx context.Context, item T) error {
	rb.mux.Lock()
	defer rb.mux.Unlock()

	for {
		if rb.closed {
			return ErrClosed
		}

		if rb.size < rb.capacity {
			break
		}

		if rb.canGrow() {
			rb.grow()
			break
		}

		if err := rb.wait(ctx, rb.notFull); err != nil {
			return err
		}
	}

	rb.push(item)

	return nil
}

// Read removes the oldest item from the [ResizingRingBuffer].
// It blocks while the buffer is empty.
//
// Items written before Close are still returned;
// [ErrClosed] is returned once the buffer is closed and empty.
func (rb *ResizingRingBuffer[T]) Read() (T, error) {
	return rb.ReadContext(context.Background())
}

// ReadContext is like [ResizingRingBuffer.Read],
// but it returns the context error if ctx is done while the buffer is empty.
func (rb *ResizingRingBuffer[T]) ReadContext(ctx context.Context) (T, error) {
	rb.mux.Lock()
	defer rb.mux.Unlock()

	for rb.size == 0 {
		if rb.closed {
			return *new(T), ErrClosed
		}

		if err := rb.wait(ctx, rb.notEmpty); err != nil {
			return *new(T), err
		}
	}

	return rb.pop(), nil
}

// TryRead removes the oldest item without blocking.
// It returns false if the buffer is empty.
func (rb *ResizingRingBuffer[T]) TryRead() (T, bool) {
	rb.mux.Lock()
	defer rb.mux.Unlock()

	if rb.size == 0 {
		return *new(T), false
	}

	return rb.pop(), true
}

// Close marks the [ResizingRingBuffer] as closed and wakes all the blocked goroutines.
// Calling Close more than once has no effect.
func (rb *ResizingRingBuffer[T]) Close() {
	rb.mux.Lock()
	defer rb.mux.Unlock()

	if rb.closed {
		return
	}

	rb.closed = true

	rb.notEmpty.Broadcast()
	rb.notFull.Broadcast()
}

// Len returns the number of items in the buffer.
func (rb *ResizingRingBuffer[T]) Len() int {
	rb.mux.Lock()
	defer rb.mux.Unlock()

	return rb.size
}

// Cap returns the current capacity of the buffer.
func (rb *ResizingRingBuffer[T]) Cap() int {
	rb.mux.Lock()
	defer rb.mux.Unlock()

	return rb.capacity
}

func (rb *ResizingRingBuffer[T]) IsClosed() bool {
	rb.mux.Lock()
	defer rb.mux.Unlock()

	return rb.closed
}

// Written returns the number of items written since creation.
func (rb *ResizingRingBuffer[T]) Written() uint64 {
	return rb.written.Load()
}

// Consumed returns the number of items read since creation.
func (rb *ResizingRingBuffer[T]) Consumed() uint64 {
	return rb.consumed.Load()
}

func (rb *ResizingRingBuffer[T]) Grows() uint64 {
	return rb.grows.Load()
}

func (rb *ResizingRingBuffer[T]) Shrinks() uint64 {
	return rb.shrinks.Load()
}
