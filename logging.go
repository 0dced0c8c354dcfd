package settings

import (
	"context"
	"log/slog"
	"time"
)

// Stages reported through Event.Stage.
const (
	StageStoreRead = "store.read"
	StageResolve   = "resolve"
)

// Event describes a notable step while reading an option, such as a failed
// store read or a rule evaluation.
type Event struct {
	Option   string
	Stage    string
	Engine   string
	Expr     string
	Duration time.Duration
	Err      error
}

// Logger records accessor and resolver events.
type Logger interface {
	LogEvent(Event)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(Event)

// LogEvent implements Logger.
func (f LoggerFunc) LogEvent(event Event) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogEvent(Event) {}

// SlogLogger forwards events to logger. Events carrying an error are logged
// at warn level, the rest at debug level.
func SlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return slogLogger{logger: logger}
}

type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) LogEvent(event Event) {
	attrs := []slog.Attr{
		slog.String("option", event.Option),
		slog.String("stage", event.Stage),
	}
	if event.Engine != "" {
		attrs = append(attrs, slog.String("engine", event.Engine))
	}
	if event.Expr != "" {
		attrs = append(attrs, slog.String("expr", event.Expr))
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
		l.logger.LogAttrs(context.Background(), slog.LevelWarn, "settings: "+event.Stage+" failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "settings: "+event.Stage, attrs...)
}
