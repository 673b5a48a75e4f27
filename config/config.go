// Package config holds the run configuration of the elasticq command.
package config

import (
	"errors"
	"fmt"

	"github.com/squadracorsepolito/elasticq/questdb"
	"github.com/squadracorsepolito/elasticq/telemetry"
	"github.com/squadracorsepolito/elasticq/worker"
)

// ErrUsage wraps every configuration problem the operator has to fix.
var ErrUsage = errors.New("usage error")

type Config struct {
	// QueueSize is the initial capacity of the queue.
	QueueSize int
	// MaxQueueSize caps the queue growth, 0 disables the cap.
	MaxQueueSize int

	// LogFile receives the resize events and the per item lines.
	LogFile string

	// Verbose enables debug logging on stderr.
	Verbose bool

	Worker *worker.Config

	// Telemetry is nil when the OTLP export is disabled.
	Telemetry *telemetry.Config

	// QuestDB is nil when resize events are not stored.
	QuestDB *questdb.Config
}

func NewDefault() *Config {
	return &Config{
		QueueSize:    1,
		MaxQueueSize: 0,

		LogFile: "elasticq.log",

		Worker: worker.NewDefaultConfig(),
	}
}

// Validate reports every invalid field, wrapped in [ErrUsage].
func (cfg *Config) Validate() error {
	var errs []error

	if cfg.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("queue size must be at least 1, got %d", cfg.QueueSize))
	}

	if cfg.MaxQueueSize < 0 || (cfg.MaxQueueSize > 0 && cfg.MaxQueueSize < cfg.QueueSize) {
		errs = append(errs, fmt.Errorf("maximum queue size must be 0 or at least the queue size (%d), got %d", cfg.QueueSize, cfg.MaxQueueSize))
	}

	if cfg.LogFile == "" {
		errs = append(errs, errors.New("log file must not be empty"))
	}

	if cfg.Worker == nil {
		errs = append(errs, errors.New("worker configuration is missing"))
	} else if err := cfg.Worker.Validate(); err != nil {
		errs = append(errs, err)
	}

	if cfg.QuestDB != nil && cfg.QuestDB.Address == "" {
		errs = append(errs, errors.New("questdb address must not be empty"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	return nil
}
