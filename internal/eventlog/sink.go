package eventlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"fsmonitor/internal/models"
)

// SlogSink writes entries as structured slog records.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a JSON sink on w. Every record is emitted; filtering
// happens in Logger.
func NewSlogSink(w io.Writer) *SlogSink {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &SlogSink{logger: slog.New(handler)}
}

func (s *SlogSink) Write(severity models.Severity, id EventID, message string) {
	s.logger.LogAttrs(context.Background(), slogLevel(severity), message,
		slog.Int("event_id", int(id)),
		slog.Int("category", int(id)/1000),
	)
}

func slogLevel(severity models.Severity) slog.Level {
	switch severity {
	case models.SeverityError:
		return slog.LevelError
	case models.SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// FileOptions configures the rotating log file.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// OpenOutput returns stderr, teed into a rotating file when a path is set.
// The returned closer releases the file.
func OpenOutput(opts FileOptions) (io.Writer, io.Closer) {
	if opts.Path == "" {
		return os.Stderr, nopCloser{}
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 20
	}
	if opts.MaxBackups <= 0 {
		opts.MaxBackups = 5
	}
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = 30
	}
	file := &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   true,
	}
	return io.MultiWriter(os.Stderr, file), file
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Entry is a captured log entry.
type Entry struct {
	Severity models.Severity
	ID       EventID
	Message  string
}

// Recorder keeps entries in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Write(severity models.Severity, id EventID, message string) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Severity: severity, ID: id, Message: message})
	r.mu.Unlock()
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns how many entries carry id.
func (r *Recorder) Count(id EventID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.ID == id {
			n++
		}
	}
	return n
}
