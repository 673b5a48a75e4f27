package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/squadracorsepolito/elasticq"
	"github.com/squadracorsepolito/elasticq/config"
	"github.com/squadracorsepolito/elasticq/connector"
	"github.com/squadracorsepolito/elasticq/event"
	"github.com/squadracorsepolito/elasticq/internal"
	"github.com/squadracorsepolito/elasticq/questdb"
	"github.com/squadracorsepolito/elasticq/telemetry"
	"github.com/squadracorsepolito/elasticq/worker"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Parse(filepath.Base(os.Args[0]), os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if cfg.Verbose {
		internal.LogLevel.Set(slog.LevelDebug)
	}

	l := internal.NewLogger("cmd", "elasticq")

	ctx, cancelCtx := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancelCtx()

	if cfg.Telemetry != nil {
		shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
		if err != nil {
			l.Error("failed to init telemetry", err)
			return 1
		}

		defer func() {
			if err := shutdown(context.Background()); err != nil {
				l.Error("failed to shutdown telemetry", err)
			}
		}()
	}

	logFile, err := os.Create(cfg.LogFile)
	if err != nil {
		l.Error("failed to open log file", err, "path", cfg.LogFile)
		return 1
	}
	defer logFile.Close()

	journal := internal.NewLoggerTo(logFile, "queue", "journal")

	sinks := []event.Sink{
		event.NewLogSink(journal),
		event.NewTelemetrySink(internal.NewTelemetry("connector", "resizing_ring_buffer"), cfg.QueueSize),
	}

	var qdbSink *questdb.Sink
	if cfg.QuestDB != nil {
		qdbSink, err = questdb.NewSink(cfg.QuestDB)
		if err != nil {
			l.Error("failed to create questdb sink", err)
			return 1
		}
		sinks = append(sinks, qdbSink)
	}

	opts := []connector.Option{connector.WithSink(event.Multi(sinks...))}
	if cfg.MaxQueueSize > 0 {
		opts = append(opts, connector.WithMaxCapacity(cfg.MaxQueueSize))
	}

	queue, err := connector.NewResizingRingBuffer[int](cfg.QueueSize, opts...)
	if err != nil {
		l.Error("failed to create queue", err)
		return 1
	}

	group := worker.NewGroup(queue, cfg.Worker)
	group.SetJournal(journal)

	pipeline := elasticq.NewPipeline()
	pipeline.AddStage(group)
	if qdbSink != nil {
		pipeline.AddStage(qdbSink)
	}

	if err := pipeline.Init(ctx); err != nil {
		l.Error("failed to init pipeline", err)
		return 1
	}

	pipeline.Run(ctx)

	select {
	case <-group.Done():
	case <-ctx.Done():
		l.Info("interrupted")
	}

	pipeline.Stop()

	l.Info("done",
		"produced", group.Produced(), "consumed", group.Consumed(),
		"grows", queue.Grows(), "shrinks", queue.Shrinks(),
		"capacity", queue.Cap(), "remaining", queue.Len(),
	)

	return 0
}
