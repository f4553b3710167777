package eventlog

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"fsmonitor/internal/models"
)

// MaxVerbosity enables every event regardless of its band.
const MaxVerbosity = 1337

// DefaultLevel is used when the configured level is out of range.
const DefaultLevel = 2

// Sink receives entries that passed the verbosity filter. Sinks do not filter.
type Sink interface {
	Write(severity models.Severity, id EventID, message string)
}

// Logger filters events by verbosity before handing them to a Sink.
type Logger struct {
	sink      Sink
	level     atomic.Int64
	threshold atomic.Int64
}

// New creates a logger writing to sink at the given verbosity level.
func New(sink Sink, level int) *Logger {
	l := &Logger{sink: sink}
	l.apply(NormalizeLevel(level))
	return l
}

// ValidLevel reports whether level is an accepted verbosity value.
func ValidLevel(level int) bool {
	return level == MaxVerbosity || (level >= 1 && level <= 5)
}

// NormalizeLevel maps invalid levels to DefaultLevel.
func NormalizeLevel(level int) int {
	if !ValidLevel(level) {
		return DefaultLevel
	}
	return level
}

// SetLevel changes the verbosity level.
func (l *Logger) SetLevel(level int) {
	if l == nil {
		return
	}
	level = NormalizeLevel(level)
	l.apply(level)
	l.Info(LevelChanged, fmt.Sprintf("Logging level set to: %d", level))
}

// Level returns the current verbosity level.
func (l *Logger) Level() int {
	if l == nil {
		return 0
	}
	return int(l.level.Load())
}

// Enabled reports whether an event with the given id would be written.
func (l *Logger) Enabled(id EventID) bool {
	if l == nil || l.sink == nil {
		return false
	}
	return int64(id) < l.threshold.Load()
}

func (l *Logger) Info(id EventID, message string) {
	l.Event(id, models.SeverityInfo, message)
}

func (l *Logger) Warn(id EventID, message string) {
	l.Event(id, models.SeverityWarning, message)
}

func (l *Logger) Error(id EventID, message string) {
	l.Event(id, models.SeverityError, message)
}

// Event writes a single entry if its id is within the verbosity band.
func (l *Logger) Event(id EventID, severity models.Severity, message string) {
	if !l.Enabled(id) {
		return
	}
	l.sink.Write(severity, id, message)
}

// List writes lines as one entry, joined by newlines.
func (l *Logger) List(id EventID, severity models.Severity, lines []string) {
	if len(lines) == 0 || !l.Enabled(id) {
		return
	}
	l.sink.Write(severity, id, strings.Join(lines, "\n"))
}

// Trace records err as an error entry. Traces are never filtered; above
// level 3 the full error chain is included.
func (l *Logger) Trace(id EventID, err error, message string) {
	if l == nil || l.sink == nil {
		return
	}
	var b strings.Builder
	if message != "" {
		b.WriteString(message)
		b.WriteString("\n\n")
	}
	if err == nil {
		b.WriteString("Unable to print error message!")
		l.sink.Write(models.SeverityError, id, b.String())
		return
	}
	fmt.Fprintf(&b, "Error Message: %s\nType: %T", err.Error(), err)
	if l.Level() > 3 {
		depth := 0
		for inner := errors.Unwrap(err); inner != nil; inner = errors.Unwrap(inner) {
			depth++
			fmt.Fprintf(&b, "\nInner %d: %T: %s", depth, inner, inner.Error())
		}
	}
	l.sink.Write(models.SeverityError, id, b.String())
}

func (l *Logger) apply(level int) {
	l.level.Store(int64(level))
	if level == MaxVerbosity {
		l.threshold.Store(32000)
		return
	}
	l.threshold.Store(int64(level+1) * 1000)
}
