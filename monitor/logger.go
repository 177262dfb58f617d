// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package monitor

import (
	"fmt"
	"log"
	"sync"
)

// Logger is the printf style logging interface used by the loop.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// stdLogger logs through the standard log package. Debug lines are only
// printed when enabled.
type stdLogger struct {
	l      *log.Logger
	prefix string
	debug  bool
}

// NewStdLogger returns a Logger writing to the standard logger. The prefix is
// prepended to all messages (e.g. "[monitor]").
func NewStdLogger(prefix string, debug bool) Logger {
	return &stdLogger{l: log.Default(), prefix: prefix, debug: debug}
}

func (l *stdLogger) Debug(format string, args ...any) {
	if l.debug {
		l.l.Printf(l.prefix+" DEBUG: "+format, args...)
	}
}

func (l *stdLogger) Info(format string, args ...any) {
	l.l.Printf(l.prefix+" "+format, args...)
}

func (l *stdLogger) Warn(format string, args ...any) {
	l.l.Printf(l.prefix+" WARN: "+format, args...)
}

func (l *stdLogger) Error(format string, args ...any) {
	l.l.Printf(l.prefix+" ERROR: "+format, args...)
}

type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for inspection in tests. It is safe for
// concurrent use.
type BufferLogger struct {
	mu       sync.Mutex
	messages []LogMessage
}

func (l *BufferLogger) add(level, format string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...any) { l.add("debug", format, args) }
func (l *BufferLogger) Info(format string, args ...any)  { l.add("info", format, args) }
func (l *BufferLogger) Warn(format string, args ...any)  { l.add("warn", format, args) }
func (l *BufferLogger) Error(format string, args ...any) { l.add("error", format, args) }

// Messages returns a copy of the captured messages.
func (l *BufferLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogMessage(nil), l.messages...)
}

// Count returns the number of messages logged at level.
func (l *BufferLogger) Count(level string) int {
	n := 0
	for _, m := range l.Messages() {
		if m.Level == level {
			n++
		}
	}
	return n
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
}
