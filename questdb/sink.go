// Package questdb stores resize events into QuestDB.
package questdb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	qdb "github.com/questdb/go-questdb-client/v3"
	"github.com/squadracorsepolito/elasticq/connector"
	"github.com/squadracorsepolito/elasticq/event"
	"github.com/squadracorsepolito/elasticq/internal"
	"go.opentelemetry.io/otel/attribute"
)

var _ event.Sink = (*Sink)(nil)

// Sink is an [event.Sink] writing every resize event as a QuestDB row.
//
// Notify only enqueues the event; rows are sent by [Sink.Run].
type Sink struct {
	tel *internal.Telemetry
	cfg *Config

	queue *connector.ResizingRingBuffer[event.ResizeEvent]

	senderPool *qdb.LineSenderPool
	sender     qdb.LineSender

	mux     sync.Mutex
	started bool
	stopped bool
	done    chan struct{}

	// Telemetry metrics
	insertedRows  atomic.Int64
	droppedEvents atomic.Int64
	insertErrors  atomic.Int64
}

func NewSink(cfg *Config) (*Sink, error) {
	queue, err := connector.NewResizingRingBuffer[event.ResizeEvent](cfg.QueueSize)
	if err != nil {
		return nil, err
	}

	return &Sink{
		tel: internal.NewTelemetry("sink", "questdb"),
		cfg: cfg,

		queue: queue,

		done: make(chan struct{}),
	}, nil
}

func (s *Sink) initMetrics() {
	s.tel.NewCounter("inserted_rows", func() int64 { return s.insertedRows.Load() })
	s.tel.NewCounter("dropped_events", func() int64 { return s.droppedEvents.Load() })
	s.tel.NewCounter("insert_errors", func() int64 { return s.insertErrors.Load() })
}

func (s *Sink) Init(ctx context.Context) error {
	defer s.tel.LogInfo("initialized", "address", s.cfg.Address)

	senderPool, err := qdb.PoolFromOptions(
		qdb.WithAddress(s.cfg.Address),
		qdb.WithHttp(),
		qdb.WithAutoFlushRows(s.cfg.AutoFlushRows),
		qdb.WithAutoFlushInterval(s.cfg.AutoFlushInterval),
		qdb.WithRetryTimeout(s.cfg.RetryTimeout),
	)
	if err != nil {
		return err
	}
	s.senderPool = senderPool

	sender, err := senderPool.Sender(ctx)
	if err != nil {
		return err
	}
	s.sender = sender

	s.initMetrics()

	return nil
}

// Notify enqueues ev without blocking.
func (s *Sink) Notify(ev event.ResizeEvent) {
	if err := s.queue.Write(ev); err != nil {
		s.droppedEvents.Add(1)
	}
}

// Run sends the queued events until the sink is stopped or ctx is done.
func (s *Sink) Run(ctx context.Context) {
	defer close(s.done)

	s.mux.Lock()
	if s.stopped {
		s.mux.Unlock()
		return
	}
	s.started = true
	s.mux.Unlock()

	s.tel.LogInfo("running")
	defer s.tel.LogInfo("stopped")

	for {
		ev, err := s.queue.ReadContext(ctx)
		if err != nil {
			if !errors.Is(err, connector.ErrClosed) && !errors.Is(err, context.Canceled) {
				s.tel.LogError("failed to read event", err)
			}
			return
		}

		if err := s.insert(ctx, ev); err != nil {
			s.insertErrors.Add(1)
			s.tel.LogError("failed to insert resize event", err, "kind", ev.Kind)
		}
	}
}

func (s *Sink) insert(ctx context.Context, ev event.ResizeEvent) error {
	ctx, span := s.tel.NewTrace(ctx, "insert resize event")
	defer span.End()

	span.SetAttributes(
		attribute.String("kind", ev.Kind.String()),
		attribute.Int("new_capacity", ev.NewCapacity),
	)

	err := s.sender.Table(s.cfg.Table).
		Symbol("kind", ev.Kind.String()).
		Int64Column("old_capacity", int64(ev.OldCapacity)).
		Int64Column("new_capacity", int64(ev.NewCapacity)).
		Int64Column("size", int64(ev.Size)).
		At(ctx, ev.Time)
	if err != nil {
		return err
	}

	s.insertedRows.Add(1)

	return nil
}

// Stop drains the pending events, flushes them and closes the sender.
func (s *Sink) Stop() {
	s.queue.Close()

	s.mux.Lock()
	s.stopped = true
	started := s.started
	s.mux.Unlock()

	if started {
		<-s.done
	}

	if s.sender == nil {
		return
	}

	ctx := context.Background()

	if err := s.sender.Flush(ctx); err != nil {
		s.tel.LogError("failed to flush sender", err)
	}

	if err := s.sender.Close(ctx); err != nil {
		s.tel.LogError("failed to close sender", err)
	}

	if err := s.senderPool.Close(ctx); err != nil {
		s.tel.LogError("failed to close sender pool", err)
	}
}

// Inserted returns the number of rows handed to the sender.
func (s *Sink) Inserted() int64 {
	return s.insertedRows.Load()
}

// Dropped returns the number of events received after the sink was stopped.
func (s *Sink) Dropped() int64 {
	return s.droppedEvents.Load()
}
