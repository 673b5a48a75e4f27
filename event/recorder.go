package event

import (
	"slices"
	"sync"
)

// Recorder is a [Sink] that keeps every event in memory.
type Recorder struct {
	mux    sync.Mutex
	events []ResizeEvent
}

func NewRecorder() *Recorder {
	return &Recorder{
		events: []ResizeEvent{},
	}
}

func (r *Recorder) Notify(ev ResizeEvent) {
	r.mux.Lock()
	r.events = append(r.events, ev)
	r.mux.Unlock()
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []ResizeEvent {
	r.mux.Lock()
	defer r.mux.Unlock()

	return slices.Clone(r.events)
}

// Count returns how many events of the given kind were recorded.
func (r *Recorder) Count(kind ResizeKind) int {
	r.mux.Lock()
	defer r.mux.Unlock()

	count := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			count++
		}
	}
	return count
}

// Capacities returns the sequence of new capacities, in emission order.
func (r *Recorder) Capacities() []int {
	r.mux.Lock()
	defer r.mux.Unlock()

	capacities := make([]int, 0, len(r.events))
	for _, ev := range r.events {
		capacities = append(capacities, ev.NewCapacity)
	}
	return capacities
}

func (r *Recorder) Reset() {
	r.mux.Lock()
	r.events = r.events[:0]
	r.mux.Unlock()
}
