package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/squadracorsepolito/elasticq/connector"
	"github.com/squadracorsepolito/elasticq/internal"
)

// sizer is implemented by connectors that can report their occupancy.
type sizer interface {
	Len() int
	Cap() int
}

// Group runs a set of producers and consumers sharing one connector.
//
// Once every producer is done the connector is closed, so the consumers
// can drain it. Consumers still running when the grace period expires are cancelled.
type Group struct {
	tel *internal.Telemetry
	cfg *Config

	conn connector.Connector[int]

	journal   *internal.Logger
	generator Generator
	handler   Handler
	stats     *internal.Stats

	mux     sync.Mutex
	cancel  context.CancelFunc
	started bool
	stopped bool

	done chan struct{}

	// Telemetry metrics
	producedItems atomic.Int64
	consumedItems atomic.Int64
	workerErrors  atomic.Int64
}

func NewGroup(conn connector.Connector[int], cfg *Config) *Group {
	tel := internal.NewTelemetry("worker", "group")

	return &Group{
		tel: tel,
		cfg: cfg,

		conn: conn,

		generator: RandomGenerator(100),
		stats:     internal.NewStats(tel.Logger(), cfg.StatsInterval),

		done: make(chan struct{}),
	}
}

// SetJournal sets the logger receiving one line per produced and consumed item.
func (g *Group) SetJournal(journal *internal.Logger) {
	g.journal = journal
}

func (g *Group) SetGenerator(generator Generator) {
	g.generator = generator
}

func (g *Group) SetHandler(handler Handler) {
	g.handler = handler
}

func (g *Group) initMetrics() {
	g.tel.NewCounter("produced_items", func() int64 { return g.producedItems.Load() })
	g.tel.NewCounter("consumed_items", func() int64 { return g.consumedItems.Load() })
	g.tel.NewCounter("worker_errors", func() int64 { return g.workerErrors.Load() })

	if s, ok := g.conn.(sizer); ok {
		g.tel.NewGauge("queue_size", func() int64 { return int64(s.Len()) })
		g.tel.NewGauge("queue_capacity", func() int64 { return int64(s.Cap()) })
	}
}

func (g *Group) Init(_ context.Context) error {
	defer g.tel.LogInfo("initialized")

	if err := g.cfg.Validate(); err != nil {
		return err
	}

	g.initMetrics()

	return nil
}

// Run starts the workers and returns once all of them are done.
func (g *Group) Run(ctx context.Context) {
	defer close(g.done)

	g.mux.Lock()
	if g.stopped {
		g.mux.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.started = true
	g.mux.Unlock()

	defer cancel()

	g.tel.LogInfo("running", "producers", g.cfg.Producers, "consumers", g.cfg.Consumers)
	defer g.tel.LogInfo("stopped", "produced", g.producedItems.Load(), "consumed", g.consumedItems.Load())

	go g.stats.RunStats(ctx)

	consumerCtx, cancelConsumers := context.WithCancel(ctx)
	defer cancelConsumers()

	consumerWg := &sync.WaitGroup{}
	consumerWg.Add(g.cfg.Consumers)
	for id := 1; id <= g.cfg.Consumers; id++ {
		go func() {
			defer consumerWg.Done()
			g.runConsumer(consumerCtx, id)
		}()
	}

	producerWg := &sync.WaitGroup{}
	producerWg.Add(g.cfg.Producers)
	for id := 1; id <= g.cfg.Producers; id++ {
		go func() {
			defer producerWg.Done()
			g.runProducer(ctx, id)
		}()
	}

	producerWg.Wait()

	g.tel.LogInfo("producers done, draining", "produced", g.producedItems.Load())
	g.conn.Close()

	drained := make(chan struct{})
	go func() {
		consumerWg.Wait()
		close(drained)
	}()

	grace := time.NewTimer(g.cfg.Grace)
	defer grace.Stop()

	select {
	case <-drained:
		return

	case <-grace.C:
		g.tel.LogWarn("grace period expired, cancelling consumers", "grace", g.cfg.Grace)

	case <-ctx.Done():
	}

	cancelConsumers()
	<-drained
}

func (g *Group) runProducer(ctx context.Context, id int) {
	p := NewProducer(id, g.conn, g.cfg.ItemsPerProducer, g.cfg.ProducerDelay, g.generator)
	p.SetJournal(g.journal)
	p.SetStats(g.stats)

	produced, err := p.Run(ctx)
	g.producedItems.Add(int64(produced))

	if err != nil && !errors.Is(err, context.Canceled) {
		g.workerErrors.Add(1)
		g.tel.LogError("producer failed", err, "producer_id", id)
	}
}

func (g *Group) runConsumer(ctx context.Context, id int) {
	c := NewConsumer(id, g.conn, g.cfg.ConsumerDelay)
	c.SetJournal(g.journal)
	c.SetStats(g.stats)
	c.SetHandler(g.handler)

	consumed, err := c.Run(ctx)
	g.consumedItems.Add(int64(consumed))

	if err != nil && !errors.Is(err, context.Canceled) {
		g.workerErrors.Add(1)
		g.tel.LogError("consumer failed", err, "consumer_id", id)
	}
}

// Stop cancels the workers and waits for [Group.Run] to return.
func (g *Group) Stop() {
	g.mux.Lock()
	g.stopped = true
	started := g.started
	if g.cancel != nil {
		g.cancel()
	}
	g.mux.Unlock()

	if started {
		<-g.done
	}
}

// Done is closed when [Group.Run] returns.
func (g *Group) Done() <-chan struct{} {
	return g.done
}

// Produced returns the number of items written by all the producers.
func (g *Group) Produced() int64 {
	return g.producedItems.Load()
}

// Consumed returns the number of items read by all the consumers.
func (g *Group) Consumed() int64 {
	return g.consumedItems.Load()
}
