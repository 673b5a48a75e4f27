package internal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/squadracorsepolito/elasticq/internal/telemetrytest"
	"github.com/stretchr/testify/assert"
)

func Test_Logger(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	l := NewLoggerTo(buf, "worker", "producer_1")

	l.Info("producer added", "item", 42)
	l.Warn("slow consumer")
	l.Error("failed to write", errors.New("closed"))

	out := buf.String()
	assert.Contains(out, "producer added")
	assert.Contains(out, "info.kind=worker")
	assert.Contains(out, "info.name=producer_1")
	assert.Contains(out, "item=42")
	assert.Contains(out, "slow consumer")
	assert.Contains(out, "closed")

	// Colors are never written to a plain buffer
	assert.NotContains(out, "\x1b[")
}

func Test_Logger_Level(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	l := NewLoggerTo(buf, "cmd", "test")

	l.Debug("hidden")
	assert.Empty(buf.String())

	LogLevel.Set(slog.LevelDebug)
	defer LogLevel.Set(slog.LevelInfo)

	l.Debug("visible")
	assert.Contains(buf.String(), "visible")
}

func Test_Telemetry_Metrics(t *testing.T) {
	assert := assert.New(t)

	provider, reader := telemetrytest.NewMeterProvider()
	tel := NewTelemetry("worker", "group", WithMeterProvider(provider), WithLogger(NewLoggerTo(&bytes.Buffer{}, "worker", "group")))

	assert.Equal("worker_group_items", tel.MetricName("items"))

	count := int64(0)
	tel.NewCounter("items", func() int64 { return count })
	tel.NewGauge("size", func() int64 { return count * 2 })

	count = 21

	values := telemetrytest.Collect(t, reader)
	assert.Equal(int64(21), values["worker_group_items"])
	assert.Equal(int64(42), values["worker_group_size"])

	_, span := tel.NewTrace(context.Background(), "noop")
	span.End()
}

func Test_Stats(t *testing.T) {
	assert := assert.New(t)

	buf := &bytes.Buffer{}
	stats := NewStats(NewLoggerTo(buf, "worker", "group"), 0)
	assert.Equal(time.Second, stats.interval)

	stats.flush()
	assert.Empty(buf.String())

	stats.IncrementWrittenCount()
	stats.IncrementWrittenCount()
	stats.IncrementReadCount()
	stats.flush()

	out := buf.String()
	assert.Equal(1, strings.Count(out, "stats"))
	assert.Contains(out, "written=2")
	assert.Contains(out, "read=1")

	// Counters are reset after every flush
	buf.Reset()
	stats.flush()
	assert.Empty(buf.String())
}
