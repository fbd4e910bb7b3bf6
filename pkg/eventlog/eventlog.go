// Package eventlog implements the buffered last-error/warning/info
// event log the expression and instruction front-ends rely on for
// diagnostics (section 4.9).
package eventlog

import (
	"log/slog"
	"sync"
	"time"
)

// Level identifies the severity of a logged event.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one buffered log entry.
type Event struct {
	Level    Level
	Message  string
	Position int
	HasPos   bool
	Time     time.Time
}

// DefaultCapacity matches the source's "typically 10" buffered event count.
const DefaultCapacity = 10

// Log buffers events up to Capacity, flushing the oldest-first to Sink
// on overflow and on Close. It tracks the most recent event of each
// level for get_last_error/warning/info-style lookups.
type Log struct {
	mu       sync.Mutex
	capacity int
	sink     *slog.Logger
	buffer   []Event

	lastError   *Event
	lastWarning *Event
	lastInfo    *Event
}

// New creates a Log flushing to sink (typically pkg/logger.GetLogger())
// with the given buffer capacity; capacity <= 0 uses DefaultCapacity.
func New(sink *slog.Logger, capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity, sink: sink}
}

func (l *Log) record(level Level, message string, position int, hasPos bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ev := Event{Level: level, Message: message, Position: position, HasPos: hasPos, Time: time.Now()}
	switch level {
	case Error:
		l.lastError = &ev
	case Warning:
		l.lastWarning = &ev
	case Info:
		l.lastInfo = &ev
	}

	l.buffer = append(l.buffer, ev)
	if len(l.buffer) >= l.capacity {
		l.flushLocked()
	}
}

// Error records a parse/evaluation error, optionally with a source position.
func (l *Log) Error(message string, position ...int) {
	pos, has := firstPos(position)
	l.record(Error, message, pos, has)
}

// Warning records a non-fatal diagnostic.
func (l *Log) Warning(message string, position ...int) {
	pos, has := firstPos(position)
	l.record(Warning, message, pos, has)
}

// Info records an informational event.
func (l *Log) Info(message string, position ...int) {
	pos, has := firstPos(position)
	l.record(Info, message, pos, has)
}

func firstPos(position []int) (int, bool) {
	if len(position) == 0 {
		return 0, false
	}
	return position[0], true
}

// LastError, LastWarning, and LastInfo return the most recent event of
// each level, or nil if none has been recorded.
func (l *Log) LastError() *Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastError
}

func (l *Log) LastWarning() *Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastWarning
}

func (l *Log) LastInfo() *Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastInfo
}

// LastErrorMessage returns the most recent error's message, or "".
func (l *Log) LastErrorMessage() string {
	if e := l.LastError(); e != nil {
		return e.Message
	}
	return ""
}

// LastErrorPosition returns the most recent error's position, if any.
func (l *Log) LastErrorPosition() (int, bool) {
	if e := l.LastError(); e != nil {
		return e.Position, e.HasPos
	}
	return 0, false
}

// Flush drains the buffer to Sink.
func (l *Log) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.flushLocked()
}

func (l *Log) flushLocked() {
	if l.sink == nil {
		l.buffer = l.buffer[:0]
		return
	}
	for _, ev := range l.buffer {
		attrs := []any{"kind", ev.Level.String()}
		if ev.HasPos {
			attrs = append(attrs, "position", ev.Position)
		}
		switch ev.Level {
		case Error:
			l.sink.Error(ev.Message, attrs...)
		case Warning:
			l.sink.Warn(ev.Message, attrs...)
		default:
			l.sink.Info(ev.Message, attrs...)
		}
	}
	l.buffer = l.buffer[:0]
}

// Close flushes any remaining buffered events.
func (l *Log) Close() {
	l.Flush()
}
