// Package worker implements the producer and consumer roles
// that write to and read from a [connector.Connector].
package worker

import (
	"context"
	"time"

	"github.com/squadracorsepolito/elasticq/internal"
)

// Handler processes an item read by a [Consumer].
type Handler func(ctx context.Context, consumerID, item int)

// base holds what producers and consumers share.
type base struct {
	id int

	tel     *internal.Telemetry
	journal *internal.Logger
	stats   *internal.Stats

	delay time.Duration
}

func (b *base) SetTelemetry(tel *internal.Telemetry) {
	b.tel = tel
}

// SetJournal sets the logger receiving one line per item.
func (b *base) SetJournal(journal *internal.Logger) {
	b.journal = journal
}

func (b *base) SetStats(stats *internal.Stats) {
	b.stats = stats
}

func (b *base) ID() int {
	return b.id
}

// sleep waits for d, or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
