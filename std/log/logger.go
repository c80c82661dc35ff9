package log

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"sync/atomic"
)

// Logger is a leveled slog wrapper. Every call carries an optional tag,
// usually the component doing the logging, rendered as the "tag" attribute.
type Logger struct {
	slog  *slog.Logger
	level atomic.Int64

	// number of records emitted at LevelWarn or above
	warnings atomic.Uint64
}

type Tag interface {
	String() string
}

func NewText(w io.Writer) *Logger {
	return newLogger(slog.NewTextHandler(w, handlerOptions()))
}

func NewJson(w io.Writer) *Logger {
	return newLogger(slog.NewJSONHandler(w, handlerOptions()))
}

func newLogger(h slog.Handler) *Logger {
	l := &Logger{slog: slog.New(h)}
	l.level.Store(int64(LevelInfo))
	return l
}

func handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level:       slog.Level(LevelTrace),
		ReplaceAttr: replaceAttr,
	}
}

// SetLevel sets the logging level and returns the previous level.
func (l *Logger) SetLevel(level Level) (prev Level) {
	return Level(l.level.Swap(int64(level)))
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// Warnings returns how many records at WARN or above were emitted.
func (l *Logger) Warnings() uint64 {
	return l.warnings.Load()
}

func (l *Logger) log(t any, msg string, level Level, v ...any) {
	if l.Level() > level {
		return
	}
	if level >= LevelWarn {
		l.warnings.Add(1)
	}

	// Source function for debug logs
	if l.Level() <= LevelDebug {
		if pc, _, _, ok := runtime.Caller(2); ok {
			if f := runtime.FuncForPC(pc); f != nil {
				v = append(v, slog.SourceKey, f.Name())
			}
		}
	}

	if t != nil {
		if tag, ok := t.(Tag); ok {
			v = append([]any{"tag", tag.String()}, v...)
		} else {
			v = append([]any{"tag", t}, v...)
		}
	}

	l.slog.Log(context.Background(), slog.Level(level), msg, v...)
}

// Trace level message.
func (l *Logger) Trace(t any, msg string, v ...any) {
	l.log(t, msg, LevelTrace, v...)
}

// Debug level message.
func (l *Logger) Debug(t any, msg string, v ...any) {
	l.log(t, msg, LevelDebug, v...)
}

// Info level message.
func (l *Logger) Info(t any, msg string, v ...any) {
	l.log(t, msg, LevelInfo, v...)
}

// Warn level message.
func (l *Logger) Warn(t any, msg string, v ...any) {
	l.log(t, msg, LevelWarn, v...)
}

// Error level message.
func (l *Logger) Error(t any, msg string, v ...any) {
	l.log(t, msg, LevelError, v...)
}

// Fatal level message. The caller decides whether to exit.
func (l *Logger) Fatal(t any, msg string, v ...any) {
	l.log(t, msg, LevelFatal, v...)
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(Level(level).String())
		}
	}
	return a
}
