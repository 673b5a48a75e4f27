package questdb

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/squadracorsepolito/elasticq/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ilpServer struct {
	*httptest.Server

	mux    sync.Mutex
	bodies []string
}

func newILPServer() *ilpServer {
	s := &ilpServer{}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		s.mux.Lock()
		s.bodies = append(s.bodies, string(body))
		s.mux.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}))

	return s
}

func (s *ilpServer) received() string {
	s.mux.Lock()
	defer s.mux.Unlock()

	return strings.Join(s.bodies, "")
}

func (s *ilpServer) address() string {
	return strings.TrimPrefix(s.URL, "http://")
}

func Test_Sink(t *testing.T) {
	assert := assert.New(t)

	srv := newILPServer()
	defer srv.Close()

	cfg := NewDefaultConfig()
	cfg.Address = srv.address()

	sink, err := NewSink(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, sink.Init(ctx))

	go sink.Run(ctx)

	sink.Notify(event.NewResizeEvent(event.ResizeKindGrow, 4, 8, 4))
	sink.Notify(event.NewResizeEvent(event.ResizeKindGrow, 8, 16, 8))
	sink.Notify(event.NewResizeEvent(event.ResizeKindShrink, 16, 8, 4))

	assert.Eventually(func() bool { return sink.Inserted() == 3 }, 2*time.Second, 10*time.Millisecond)

	sink.Stop()

	received := srv.received()
	assert.Contains(received, "queue_resizes,kind=GROW")
	assert.Contains(received, "queue_resizes,kind=SHRINK")
	assert.Contains(received, "new_capacity=16i")
	assert.Contains(received, "old_capacity=16i")

	// Events after stop are dropped
	sink.Notify(event.NewResizeEvent(event.ResizeKindGrow, 8, 16, 8))
	assert.Equal(int64(1), sink.Dropped())
}

func Test_Sink_StopBeforeRun(t *testing.T) {
	sink, err := NewSink(NewDefaultConfig())
	require.NoError(t, err)

	sink.Stop()
	sink.Run(context.Background())

	assert.Zero(t, sink.Inserted())
}

func Test_Sink_InvalidQueueSize(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.QueueSize = 0

	_, err := NewSink(cfg)
	assert.Error(t, err)
}
