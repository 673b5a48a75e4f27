package worker

import (
	"errors"
	"fmt"
	"time"
)

type Config struct {
	// Producers is the number of producer goroutines.
	Producers int
	// Consumers is the number of consumer goroutines.
	Consumers int

	// ItemsPerProducer is how many items each producer writes before stopping.
	ItemsPerProducer int

	ProducerDelay time.Duration
	ConsumerDelay time.Duration

	// Grace is how long consumers may keep draining after the producers are done.
	// When it expires the consumers are cancelled.
	Grace time.Duration

	StatsInterval time.Duration
}

func NewDefaultConfig() *Config {
	return &Config{
		Producers: 1,
		Consumers: 1,

		ItemsPerProducer: 1,

		ProducerDelay: 100 * time.Millisecond,
		ConsumerDelay: 0,

		Grace: 2 * time.Second,

		StatsInterval: time.Second,
	}
}

// Validate reports every invalid field.
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.Producers < 1 {
		errs = append(errs, fmt.Errorf("producers must be at least 1, got %d", cfg.Producers))
	}
	if cfg.Consumers < 1 {
		errs = append(errs, fmt.Errorf("consumers must be at least 1, got %d", cfg.Consumers))
	}
	if cfg.ItemsPerProducer < 0 {
		errs = append(errs, fmt.Errorf("items per producer must not be negative, got %d", cfg.ItemsPerProducer))
	}
	if cfg.ProducerDelay < 0 {
		errs = append(errs, fmt.Errorf("producer delay must not be negative, got %s", cfg.ProducerDelay))
	}
	if cfg.ConsumerDelay < 0 {
		errs = append(errs, fmt.Errorf("consumer delay must not be negative, got %s", cfg.ConsumerDelay))
	}
	if cfg.Grace < 0 {
		errs = append(errs, fmt.Errorf("grace period must not be negative, got %s", cfg.Grace))
	}

	return errors.Join(errs...)
}
