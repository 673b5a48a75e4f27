package elasticq

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/squadracorsepolito/elasticq/connector"
	"github.com/squadracorsepolito/elasticq/event"
	"github.com/squadracorsepolito/elasticq/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStage struct {
	name    string
	initErr error

	mux   *sync.Mutex
	calls *[]string

	stop chan struct{}
}

func newFakeStage(name string, mux *sync.Mutex, calls *[]string) *fakeStage {
	return &fakeStage{
		name:  name,
		mux:   mux,
		calls: calls,
		stop:  make(chan struct{}),
	}
}

func (s *fakeStage) record(call string) {
	s.mux.Lock()
	*s.calls = append(*s.calls, s.name+":"+call)
	s.mux.Unlock()
}

func (s *fakeStage) Init(_ context.Context) error {
	s.record("init")
	return s.initErr
}

func (s *fakeStage) Run(_ context.Context) {
	<-s.stop
}

func (s *fakeStage) Stop() {
	s.record("stop")
	close(s.stop)
}

func Test_Pipeline(t *testing.T) {
	assert := assert.New(t)

	mux := &sync.Mutex{}
	calls := []string{}

	first := newFakeStage("first", mux, &calls)
	second := newFakeStage("second", mux, &calls)

	p := NewPipeline()
	p.AddStage(first)
	p.AddStage(second)

	ctx := context.Background()
	require.NoError(t, p.Init(ctx))

	p.Run(ctx)
	p.AddStage(newFakeStage("late", mux, &calls))
	p.Stop()

	assert.Equal([]string{"first:init", "second:init", "first:stop", "second:stop"}, calls)
}

func Test_Pipeline_InitError(t *testing.T) {
	mux := &sync.Mutex{}
	calls := []string{}

	failing := newFakeStage("failing", mux, &calls)
	failing.initErr = errors.New("boom")

	p := NewPipeline()
	p.AddStage(failing)
	p.AddStage(newFakeStage("next", mux, &calls))

	assert.ErrorContains(t, p.Init(context.Background()), "boom")
	assert.Equal(t, []string{"failing:init"}, calls)
}

func Test_Pipeline_ProducersConsumers(t *testing.T) {
	assert := assert.New(t)

	rec := event.NewRecorder()
	queue, err := connector.NewResizingRingBuffer[int](1, connector.WithSink(rec))
	require.NoError(t, err)

	cfg := worker.NewDefaultConfig()
	cfg.Producers = 8
	cfg.Consumers = 2
	cfg.ItemsPerProducer = 100
	cfg.ProducerDelay = 0

	group := worker.NewGroup(queue, cfg)

	p := NewPipeline()
	p.AddStage(group)

	ctx := context.Background()
	require.NoError(t, p.Init(ctx))

	p.Run(ctx)
	<-group.Done()
	p.Stop()

	assert.Equal(int64(800), group.Produced())
	assert.Equal(group.Produced(), group.Consumed())
	assert.Equal(0, queue.Len())
	assert.Equal(int(queue.Grows()), rec.Count(event.ResizeKindGrow))
	assert.Equal(int(queue.Shrinks()), rec.Count(event.ResizeKindShrink))
}
