package internal

import (
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// LogLevel is shared by every [Logger] handler, so the level can be changed at runtime.
var LogLevel = new(slog.LevelVar)

type Logger struct {
	*slog.Logger

	kind string
	name string
}

// NewLogger returns a [Logger] writing to stderr.
func NewLogger(kind, name string) *Logger {
	return NewLoggerTo(os.Stderr, kind, name)
}

// NewLoggerTo returns a [Logger] writing to w.
// Colors are enabled only when w is a terminal.
func NewLoggerTo(w io.Writer, kind, name string) *Logger {
	noColor := true

	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())

		if runtime.GOOS == "windows" && !noColor {
			w = colorable.NewColorable(f)
		}
	}

	handler := tint.NewHandler(w, &tint.Options{
		Level:      LogLevel,
		NoColor:    noColor,
		TimeFormat: time.StampMicro,
	})

	return &Logger{
		Logger: slog.New(handler),

		kind: kind,
		name: name,
	}
}

func (l *Logger) getInfo() slog.Attr {
	return slog.Group("info", slog.String("kind", l.kind), slog.String("name", l.name))
}

func (l *Logger) getArgs(args ...any) []any {
	return append([]any{l.getInfo()}, args...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.Logger.Debug(msg, l.getArgs(args...)...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, l.getArgs(args...)...)
}

func (l *Logger) Error(msg string, err error, args ...any) {
	tmpArgs := append([]any{tint.Err(err)}, args...)
	l.Logger.Error(msg, l.getArgs(tmpArgs...)...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, l.getArgs(args...)...)
}
