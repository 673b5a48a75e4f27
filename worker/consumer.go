package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/squadracorsepolito/elasticq/connector"
	"github.com/squadracorsepolito/elasticq/internal"
	"go.opentelemetry.io/otel/attribute"
)

// Consumer reads items from a connector until it is closed and drained,
// or until its context is done.
type Consumer struct {
	base

	input connector.Connector[int]

	handler Handler
}

func NewConsumer(id int, input connector.Connector[int], delay time.Duration) *Consumer {
	return &Consumer{
		base: base{
			id:    id,
			tel:   internal.NewTelemetry("worker", fmt.Sprintf("consumer_%d", id)),
			delay: delay,
		},

		input: input,
	}
}

// SetHandler sets the function called with every item read.
func (c *Consumer) SetHandler(handler Handler) {
	c.handler = handler
}

// Run reads items, waiting for the consumer delay after each of them.
// It returns the number of items read. A closed connector ends the loop without error,
// a done context ends it with the context error.
func (c *Consumer) Run(ctx context.Context) (int, error) {
	consumed := 0

	for {
		item, err := c.input.ReadContext(ctx)
		if err != nil {
			if errors.Is(err, connector.ErrClosed) {
				return consumed, nil
			}
			return consumed, err
		}

		consumed++
		c.consume(ctx, item)

		if err := sleep(ctx, c.delay); err != nil {
			return consumed, err
		}
	}
}

func (c *Consumer) consume(ctx context.Context, item int) {
	ctx, span := c.tel.NewTrace(ctx, "consume item")
	defer span.End()

	span.SetAttributes(attribute.Int("consumer_id", c.id), attribute.Int("item", item))

	if c.journal != nil {
		c.journal.Info("consumer extracted", "consumer_id", c.id, "item", item)
	}

	if c.stats != nil {
		c.stats.IncrementReadCount()
	}

	if c.handler != nil {
		c.handler(ctx, c.id, item)
	}
}
