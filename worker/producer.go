package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/squadracorsepolito/elasticq/connector"
	"github.com/squadracorsepolito/elasticq/internal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Producer writes a fixed number of generated items to a connector.
type Producer struct {
	base

	output connector.Connector[int]

	generator Generator
	items     int
}

func NewProducer(id int, output connector.Connector[int], items int, delay time.Duration, generator Generator) *Producer {
	return &Producer{
		base: base{
			id:    id,
			tel:   internal.NewTelemetry("worker", fmt.Sprintf("producer_%d", id)),
			delay: delay,
		},

		output: output,

		generator: generator,
		items:     items,
	}
}

// Run writes the items, waiting for the producer delay after each of them.
// It returns the number of items written, stopping early if ctx is done
// or the connector is closed.
func (p *Producer) Run(ctx context.Context) (int, error) {
	produced := 0

	for idx := range p.items {
		item := p.generator()

		if err := p.produce(ctx, item); err != nil {
			return produced, err
		}

		produced++

		if idx == p.items-1 {
			break
		}

		if err := sleep(ctx, p.delay); err != nil {
			return produced, err
		}
	}

	return produced, nil
}

func (p *Producer) produce(ctx context.Context, item int) error {
	ctx, span := p.tel.NewTrace(ctx, "produce item")
	defer span.End()

	span.SetAttributes(attribute.Int("producer_id", p.id), attribute.Int("item", item))

	if err := p.output.WriteContext(ctx, item); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to write item")
		return err
	}

	if p.journal != nil {
		p.journal.Info("producer added", "producer_id", p.id, "item", item)
	}

	if p.stats != nil {
		p.stats.IncrementWrittenCount()
	}

	return nil
}
