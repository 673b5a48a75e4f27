package internal

import (
	"context"
	"sync/atomic"
	"time"
)

// Stats periodically logs how many items were written and read.
type Stats struct {
	l *Logger

	interval time.Duration

	writtenCount atomic.Uint64
	readCount    atomic.Uint64
}

func NewStats(l *Logger, interval time.Duration) *Stats {
	if interval <= 0 {
		interval = time.Second
	}

	return &Stats{
		l: l,

		interval: interval,
	}
}

func (s *Stats) RunStats(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.flush()
		}
	}
}

func (s *Stats) flush() {
	writtenCount := s.writtenCount.Swap(0)
	readCount := s.readCount.Swap(0)

	if writtenCount == 0 && readCount == 0 {
		return
	}

	s.l.Info("stats", "interval", s.interval, "written", writtenCount, "read", readCount)
}

func (s *Stats) IncrementWrittenCount() {
	s.writtenCount.Add(1)
}

func (s *Stats) IncrementReadCount() {
	s.readCount.Add(1)
}
