// Package diag is the diagnostic channel for reflection queries.
//
// Reflection operations never return errors for usage mistakes. They report
// them here and hand back a benign result instead.
package diag

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Reporter receives usage errors and debug notes. loc names the operation
// that raised the message, for example "ClassInfo.Next".
type Reporter interface {
	Errorf(loc, format string, args ...any)
	Debugf(loc, format string, args ...any)
	Fatalf(loc, format string, args ...any)
}

// Exit is called by Logger.Fatalf after the message is written.
var Exit = os.Exit

// Logger writes diagnostics through slog.
type Logger struct {
	log *slog.Logger
}

// NewLogger creates a Logger writing text records to w. Debug records are
// only emitted when verbose is set.
func NewLogger(w io.Writer, verbose bool) *Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})
	return &Logger{log: slog.New(h)}
}

// Default returns a Logger on stderr without debug output.
func Default() *Logger {
	return NewLogger(os.Stderr, false)
}

func (l *Logger) Errorf(loc, format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...), "loc", loc)
}

func (l *Logger) Debugf(loc, format string, args ...any) {
	if !l.log.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	l.log.Debug(fmt.Sprintf(format, args...), "loc", loc)
}

// Fatalf logs the message at error level with fatal=true and calls Exit(1).
func (l *Logger) Fatalf(loc, format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...), "loc", loc, "fatal", true)
	Exit(1)
}

// Level of a recorded message.
type Level int

const (
	LevelDebug Level = iota
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Message is one recorded diagnostic.
type Message struct {
	Level Level
	Loc   string
	Text  string
}

// Recorder keeps diagnostics in memory. Fatalf is recorded but does not
// exit, so callers can observe it.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) add(level Level, loc, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Level: level, Loc: loc, Text: fmt.Sprintf(format, args...)})
}

func (r *Recorder) Errorf(loc, format string, args ...any) { r.add(LevelError, loc, format, args...) }
func (r *Recorder) Debugf(loc, format string, args ...any) { r.add(LevelDebug, loc, format, args...) }
func (r *Recorder) Fatalf(loc, format string, args ...any) { r.add(LevelFatal, loc, format, args...) }

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Count returns how many messages of the given level were recorded.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.messages {
		if m.Level == level {
			n++
		}
	}
	return n
}

// Reset drops all recorded messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}

// Discard drops everything, including fatal messages.
type Discard struct{}

func (Discard) Errorf(string, string, ...any) {}
func (Discard) Debugf(string, string, ...any) {}
func (Discard) Fatalf(string, string, ...any) {}
