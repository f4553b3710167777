package eventlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"fsmonitor/internal/models"
)

func TestLoggerFiltersByBand(t *testing.T) {
	rec := &Recorder{}
	logger := New(rec, 2)

	logger.Error(FailedBacklog, "failed")
	logger.Info(UsersUpdated, "updated")
	logger.Info(AttachPollers, "pollers")
	logger.Info(UpdateDir, "dir")

	if rec.Count(FailedBacklog) != 1 || rec.Count(UsersUpdated) != 1 {
		t.Fatalf("expected level 1 and 2 events, got %+v", rec.Entries())
	}
	if rec.Count(AttachPollers) != 0 || rec.Count(UpdateDir) != 0 {
		t.Fatalf("expected level 3 and 4 events to be filtered, got %+v", rec.Entries())
	}
}

func TestLoggerMaxVerbosity(t *testing.T) {
	rec := &Recorder{}
	logger := New(rec, MaxVerbosity)
	logger.Info(CacheExpiredDebug, "debug")
	if rec.Count(CacheExpiredDebug) != 1 {
		t.Fatalf("expected development events at max verbosity")
	}
	if logger.Level() != MaxVerbosity {
		t.Fatalf("expected level %d, got %d", MaxVerbosity, logger.Level())
	}
}

func TestNormalizeLevel(t *testing.T) {
	cases := map[int]int{0: DefaultLevel, 1: 1, 4: 4, 5: 5, 6: DefaultLevel, -3: DefaultLevel, 1337: 1337}
	for in, want := range cases {
		if got := NormalizeLevel(in); got != want {
			t.Fatalf("NormalizeLevel(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestTraceBypassesFilter(t *testing.T) {
	rec := &Recorder{}
	logger := New(rec, 1)
	logger.Trace(ConfigDebug, fmt.Errorf("outer: %w", errors.New("inner")), "while verifying")

	entries := rec.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 trace entry, got %d", len(entries))
	}
	if entries[0].Severity != models.SeverityError {
		t.Fatalf("expected error severity, got %s", entries[0].Severity)
	}
	if !strings.Contains(entries[0].Message, "while verifying") || !strings.Contains(entries[0].Message, "outer: inner") {
		t.Fatalf("unexpected trace message %q", entries[0].Message)
	}
	if strings.Contains(entries[0].Message, "Inner 1") {
		t.Fatalf("did not expect inner chain at level 1: %q", entries[0].Message)
	}
}

func TestListJoinsLines(t *testing.T) {
	rec := &Recorder{}
	logger := New(rec, 3)
	logger.List(ConfigVerify, models.SeverityInfo, []string{"a", "b"})
	entries := rec.Entries()
	if len(entries) != 1 || entries[0].Message != "a\nb" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestSlogSinkWritesEventID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(NewSlogSink(&buf), 2)
	logger.Warn(UsersFileStale, "stale")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["level"] != "WARN" {
		t.Fatalf("expected WARN level, got %v", record["level"])
	}
	if record["event_id"] != float64(UsersFileStale) {
		t.Fatalf("expected event_id %d, got %v", UsersFileStale, record["event_id"])
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Error(GenericError, "ignored")
	logger.Trace(GenericError, errors.New("x"), "")
	if logger.Enabled(GenericError) {
		t.Fatalf("nil logger must not be enabled")
	}
}
