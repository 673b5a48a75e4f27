package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/squadracorsepolito/elasticq/questdb"
	"github.com/squadracorsepolito/elasticq/telemetry"
)

var requiredFlags = []string{"p", "c", "s", "t"}

// Parse builds a [Config] from the command line arguments, program name excluded.
//
// The -p, -c, -s and -t flags are required. Any problem is reported to output
// together with the usage, and returned wrapped in [ErrUsage].
// Asking for help returns [flag.ErrHelp].
func Parse(name string, args []string, output io.Writer) (*Config, error) {
	cfg := NewDefault()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s -p <producers> -c <consumers> -s <size> -t <wait ms> [options]\n\n", name)
		fs.PrintDefaults()
	}

	fs.IntVar(&cfg.Worker.Producers, "p", 0, "number of producers (required)")
	fs.IntVar(&cfg.Worker.Consumers, "c", 0, "number of consumers (required)")
	fs.IntVar(&cfg.QueueSize, "s", 0, "initial queue capacity (required)")
	consumerDelay := fs.Int("t", 0, "consumer wait after each item, in milliseconds (required)")

	fs.IntVar(&cfg.Worker.ItemsPerProducer, "n", cfg.Worker.ItemsPerProducer, "items written by each producer")
	producerDelay := fs.Int("pd", int(cfg.Worker.ProducerDelay/time.Millisecond), "producer wait after each item, in milliseconds")
	fs.DurationVar(&cfg.Worker.Grace, "grace", cfg.Worker.Grace, "time given to consumers to drain the queue once producers are done")
	fs.DurationVar(&cfg.Worker.StatsInterval, "stats", cfg.Worker.StatsInterval, "interval between throughput log lines")
	fs.IntVar(&cfg.MaxQueueSize, "max", cfg.MaxQueueSize, "maximum queue capacity, 0 for unbounded growth")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "file receiving resize events and item lines")
	fs.BoolVar(&cfg.Verbose, "v", false, "enable debug logging")
	otlp := fs.Bool("otlp", false, "export traces and metrics over OTLP")
	questDBAddress := fs.String("questdb", "", "QuestDB HTTP address receiving resize events, empty to disable")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	if fs.NArg() > 0 {
		return nil, usageError(fs, "unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	set := []string{}
	fs.Visit(func(f *flag.Flag) {
		set = append(set, f.Name)
	})

	missing := []string{}
	for _, flagName := range requiredFlags {
		if !slices.Contains(set, flagName) {
			missing = append(missing, "-"+flagName)
		}
	}
	if len(missing) > 0 {
		return nil, usageError(fs, "missing required flags: %s", strings.Join(missing, ", "))
	}

	cfg.Worker.ConsumerDelay = time.Duration(*consumerDelay) * time.Millisecond
	cfg.Worker.ProducerDelay = time.Duration(*producerDelay) * time.Millisecond

	if *otlp {
		cfg.Telemetry = telemetry.NewDefaultConfig()
	}

	if *questDBAddress != "" {
		cfg.QuestDB = questdb.NewDefaultConfig()
		cfg.QuestDB.Address = *questDBAddress
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(output, err)
		fs.Usage()
		return nil, err
	}

	return cfg, nil
}

func usageError(fs *flag.FlagSet, format string, args ...any) error {
	err := fmt.Errorf("%w: "+format, append([]any{ErrUsage}, args...)...)

	fmt.Fprintln(fs.Output(), err)
	fs.Usage()

	return err
}
