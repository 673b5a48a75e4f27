package event

import (
	"time"
)

// ResizeKind is the direction of a capacity change.
type ResizeKind uint8

const (
	// ResizeKindGrow is emitted when a write finds the buffer full and doubles it.
	ResizeKindGrow ResizeKind = iota
	// ResizeKindShrink is emitted when a read finds the buffer sparsely occupied and halves it.
	ResizeKindShrink
)

func (rk ResizeKind) String() string {
	switch rk {
	case ResizeKindGrow:
		return "GROW"
	case ResizeKindShrink:
		return "SHRINK"
	default:
		return "unknown"
	}
}

// ResizeEvent describes a single reallocation of a ring buffer.
type ResizeEvent struct {
	Kind ResizeKind

	OldCapacity int
	NewCapacity int

	// Size is the number of occupied slots at the time of the resize.
	Size int

	Time time.Time
}

// NewResizeEvent returns a [ResizeEvent] stamped with the current time.
func NewResizeEvent(kind ResizeKind, oldCapacity, newCapacity, size int) ResizeEvent {
	return ResizeEvent{
		Kind: kind,

		OldCapacity: oldCapacity,
		NewCapacity: newCapacity,
		Size:        size,

		Time: time.Now(),
	}
}

// Sink receives resize notifications.
//
// Notify is called while the ring buffer lock is held,
// so implementations must return quickly and must not call back into the buffer.
type Sink interface {
	Notify(ev ResizeEvent)
}

// SinkFunc adapts a function to the [Sink] interface.
type SinkFunc func(ev ResizeEvent)

func (f SinkFunc) Notify(ev ResizeEvent) {
	f(ev)
}

type multiSink []Sink

// Multi returns a [Sink] that forwards every event to all the given sinks, in order.
// Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	ms := make(multiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			ms = append(ms, s)
		}
	}
	return ms
}

func (ms multiSink) Notify(ev ResizeEvent) {
	for _, s := range ms {
		s.Notify(ev)
	}
}
