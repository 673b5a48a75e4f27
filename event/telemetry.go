package event

import (
	"sync/atomic"

	"github.com/squadracorsepolito/elasticq/internal"
)

// TelemetrySink exposes resize activity as OpenTelemetry metrics.
type TelemetrySink struct {
	grows    atomic.Int64
	shrinks  atomic.Int64
	capacity atomic.Int64
}

// NewTelemetrySink registers the sink metrics on tel.
// initialCapacity is reported until the first resize happens.
func NewTelemetrySink(tel *internal.Telemetry, initialCapacity int) *TelemetrySink {
	s := &TelemetrySink{}
	s.capacity.Store(int64(initialCapacity))

	tel.NewCounter("grows", func() int64 { return s.grows.Load() })
	tel.NewCounter("shrinks", func() int64 { return s.shrinks.Load() })
	tel.NewGauge("capacity", func() int64 { return s.capacity.Load() })

	return s
}

func (s *TelemetrySink) Notify(ev ResizeEvent) {
	switch ev.Kind {
	case ResizeKindGrow:
		s.grows.Add(1)
	case ResizeKindShrink:
		s.shrinks.Add(1)
	}

	s.capacity.Store(int64(ev.NewCapacity))
}
