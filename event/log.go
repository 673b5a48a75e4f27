package event

import (
	"github.com/squadracorsepolito/elasticq/internal"
)

// LogSink writes a line for every resize to a [internal.Logger].
type LogSink struct {
	l *internal.Logger
}

func NewLogSink(l *internal.Logger) *LogSink {
	return &LogSink{
		l: l,
	}
}

func (s *LogSink) Notify(ev ResizeEvent) {
	msg := "queue doubled"
	if ev.Kind == ResizeKindShrink {
		msg = "queue halved"
	}

	s.l.Info(msg, "capacity", ev.NewCapacity, "old_capacity", ev.OldCapacity, "size", ev.Size)
}
