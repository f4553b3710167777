package monitor

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"fsmonitor/internal/alerting"
	"fsmonitor/internal/config"
	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
	"fsmonitor/internal/probe"
)

type fieldRecorder struct {
	mu      sync.Mutex
	ints    map[string]int
	strings map[string]string
}

func newFieldRecorder() *fieldRecorder {
	return &fieldRecorder{ints: map[string]int{}, strings: map[string]string{}}
}

func (f *fieldRecorder) SetInt(field string, value int) {
	f.mu.Lock()
	f.ints[field] = value
	f.mu.Unlock()
}

func (f *fieldRecorder) SetString(field string, value string) {
	f.mu.Lock()
	f.strings[field] = value
	f.mu.Unlock()
}

func testDeps(pub *fieldRecorder, rec *eventlog.Recorder) Deps {
	return Deps{
		Publisher: pub,
		Logger:    eventlog.New(rec, eventlog.MaxVerbosity),
		Probe:     probe.Static{"cups": probe.StatusRunning, "client": probe.StatusStopped},
	}
}

func bucketDir(t *testing.T, name string, files int, mtime time.Time) config.Directory {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for i := 0; i < files; i++ {
		file := filepath.Join(path, "report"+string(rune('a'+i))+".pdf")
		if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
		if err := os.Chtimes(file, mtime, mtime); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(path, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}
	field := models.FieldProcessedBacklog
	if name == "Failed" {
		field = models.FieldFailedBacklog
	}
	return config.Directory{
		Target: models.Target{ID: name, Kind: models.KindDirectory, Path: path + string(os.PathSeparator), Field: field},
		Name:   name,
	}
}

var buckets = config.Buckets{Failed: "Failed", Processed: "Processed"}

func TestFailedDirectoryAlertsEveryEvaluation(t *testing.T) {
	now := time.Now()
	dir := bucketDir(t, "Failed", 3, now)
	pub := newFieldRecorder()
	d := NewDirectory(dir, buckets, testDeps(pub, &eventlog.Recorder{}))

	for i := 0; i < 2; i++ {
		alerts := d.Evaluate(context.Background(), now)
		if len(alerts) != 1 || alerts[0].Severity != models.SeverityError || alerts[0].EventID != int(eventlog.FailedBacklog) {
			t.Fatalf("evaluation %d: expected one backlog error, got %+v", i, alerts)
		}
	}
	if pub.ints[models.FieldFailedBacklog] != 3 {
		t.Fatalf("expected count 3, got %d", pub.ints[models.FieldFailedBacklog])
	}
	if d.Snapshot().Count != 3 {
		t.Fatalf("unexpected snapshot %+v", d.Snapshot())
	}
}

func TestProcessedDirectoryEmpty(t *testing.T) {
	dir := bucketDir(t, "Processed", 0, time.Now())
	pub := newFieldRecorder()
	d := NewDirectory(dir, buckets, testDeps(pub, &eventlog.Recorder{}))

	alerts := d.Evaluate(context.Background(), time.Now())
	if len(alerts) != 1 || alerts[0].EventID != int(eventlog.ProcessedEmpty) {
		t.Fatalf("expected processed empty error, got %+v", alerts)
	}
	if pub.ints[models.FieldProcessedBacklog] != 0 {
		t.Fatalf("expected 0 processed, got %d", pub.ints[models.FieldProcessedBacklog])
	}
}

func TestProcessedDirectoryAge(t *testing.T) {
	now := time.Now()
	dir := bucketDir(t, "Processed", 1, now.Add(-42*time.Minute))
	pub := newFieldRecorder()
	d := NewDirectory(dir, buckets, testDeps(pub, &eventlog.Recorder{}))

	if alerts := d.Evaluate(context.Background(), now); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
	if pub.ints[models.FieldProcessedAgeMinutes] != 42 || pub.ints[models.FieldProcessedBacklog] != 1 {
		t.Fatalf("unexpected fields %+v", pub.ints)
	}
	if d.Snapshot().AgeMinutes != 42 {
		t.Fatalf("unexpected snapshot %+v", d.Snapshot())
	}
}

func TestMissingDirectoryPublishesSentinel(t *testing.T) {
	dir := bucketDir(t, "Failed", 0, time.Now())
	if err := os.RemoveAll(dir.Target.Path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	pub := newFieldRecorder()
	d := NewDirectory(dir, buckets, testDeps(pub, &eventlog.Recorder{}))

	if alerts := d.Evaluate(context.Background(), time.Now()); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
	if pub.ints[models.FieldFailedBacklog] != models.Unknown {
		t.Fatalf("expected sentinel, got %d", pub.ints[models.FieldFailedBacklog])
	}
	if d.Snapshot().State != models.StateUnknown {
		t.Fatalf("unexpected state %q", d.Snapshot().State)
	}
}

func usersFile(t *testing.T, written time.Time) models.Target {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.xml")
	if err := os.WriteFile(path, []byte("<users/>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(path, written, written); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	return models.Target{ID: "users", Kind: models.KindFile, Path: path, Field: models.FieldUserFileAgeMinutes}
}

func TestFileCriticalScenario(t *testing.T) {
	now := time.Now()
	target := usersFile(t, now.Add(-12*time.Minute))
	pub := newFieldRecorder()
	f := NewFile(target, alerting.Freshness{Threshold: 5, Interval: 10}, testDeps(pub, &eventlog.Recorder{}))

	alerts := f.Evaluate(context.Background(), now)
	if len(alerts) != 1 || alerts[0].Severity != models.SeverityError || alerts[0].EventID != int(eventlog.UsersFileCritical) {
		t.Fatalf("expected one critical alert, got %+v", alerts)
	}
	if pub.ints[models.FieldUserFileAgeMinutes] != 12 || f.Snapshot().AgeMinutes != 12 {
		t.Fatalf("expected age 12, got %d", pub.ints[models.FieldUserFileAgeMinutes])
	}
	if f.Incident().Raised != 1 {
		t.Fatalf("expected raised counter 1, got %+v", f.Incident())
	}
}

func TestFileFreshResetsIncident(t *testing.T) {
	now := time.Now()
	target := usersFile(t, now.Add(-time.Minute))
	f := NewFile(target, alerting.Freshness{Threshold: 5, Interval: 10}, testDeps(newFieldRecorder(), &eventlog.Recorder{}))
	f.incident = alerting.Incident{Raised: 3}

	alerts := f.Evaluate(context.Background(), now)
	if len(alerts) != 1 || alerts[0].Severity != models.SeverityInfo || alerts[0].Message != "Users file updated" {
		t.Fatalf("expected updated info, got %+v", alerts)
	}
	if f.Incident().Raised != 0 {
		t.Fatalf("expected reset counter, got %+v", f.Incident())
	}
}

func TestFileBelowThresholdKeepsOpenIncident(t *testing.T) {
	now := time.Now()
	target := usersFile(t, now.Add(-30*time.Minute))
	rec := &eventlog.Recorder{}
	f := NewFile(target, alerting.Freshness{Threshold: 60, Interval: 10}, testDeps(newFieldRecorder(), rec))
	f.incident = alerting.Incident{Raised: 1}

	if alerts := f.Evaluate(context.Background(), now); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
	if f.Incident().Raised != 1 {
		t.Fatalf("expected incident left open, got %+v", f.Incident())
	}
}

func TestFileDeletedOnce(t *testing.T) {
	target := usersFile(t, time.Now())
	if err := os.Remove(target.Path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	pub := newFieldRecorder()
	f := NewFile(target, alerting.Freshness{Threshold: 5, Interval: 10}, testDeps(pub, &eventlog.Recorder{}))

	first := f.Evaluate(context.Background(), time.Now())
	second := f.Evaluate(context.Background(), time.Now())
	if len(first) != 1 || first[0].EventID != int(eventlog.UsersFileDeleted) {
		t.Fatalf("expected deleted alert, got %+v", first)
	}
	if len(second) != 0 {
		t.Fatalf("expected deleted alert once, got %+v", second)
	}
	if f.Snapshot().State != models.StateDeleted {
		t.Fatalf("unexpected state %q", f.Snapshot().State)
	}
	if _, ok := pub.ints[models.FieldUserFileAgeMinutes]; ok {
		t.Fatalf("expected no published age for a missing file")
	}
}

func TestServiceEvaluator(t *testing.T) {
	pub := newFieldRecorder()
	rec := &eventlog.Recorder{}
	deps := testDeps(pub, rec)

	running := NewService(models.Target{ID: "print", Service: "cups", Field: models.FieldPrintServiceStatus}, deps)
	if alerts := running.Evaluate(context.Background(), time.Now()); len(alerts) != 0 {
		t.Fatalf("expected no alerts for running service, got %+v", alerts)
	}
	stopped := NewService(models.Target{ID: "client", Service: "client", Field: models.FieldClientServiceStatus}, deps)
	alerts := stopped.Evaluate(context.Background(), time.Now())
	if len(alerts) != 1 || alerts[0].Severity != models.SeverityWarning {
		t.Fatalf("expected a warning for stopped service, got %+v", alerts)
	}
	if pub.strings[models.FieldPrintServiceStatus] != probe.StatusRunning || pub.strings[models.FieldClientServiceStatus] != probe.StatusStopped {
		t.Fatalf("unexpected statuses %+v", pub.strings)
	}
}

func TestServiceQueryFailureKeepsSnapshot(t *testing.T) {
	pub := newFieldRecorder()
	rec := &eventlog.Recorder{}
	s := NewService(models.Target{ID: "client", Service: "absent", Field: models.FieldClientServiceStatus}, testDeps(pub, rec))

	if alerts := s.Evaluate(context.Background(), time.Now()); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
	if _, ok := pub.strings[models.FieldClientServiceStatus]; ok {
		t.Fatalf("expected field untouched on query failure")
	}
	if s.Snapshot().State != models.StateUnknown {
		t.Fatalf("expected initial snapshot retained, got %+v", s.Snapshot())
	}
	if rec.Count(eventlog.ServiceQueryFail) != 1 {
		t.Fatalf("expected one trace entry")
	}
}

func TestBuildOrder(t *testing.T) {
	settings := config.Settings{
		Print:     &config.Service{Target: models.Target{ID: "print"}},
		Failed:    &config.Directory{Target: models.Target{ID: "failed"}},
		UsersFile: &config.File{Target: models.Target{ID: "users"}, ThresholdMinutes: 5},
	}
	evals := Build(settings, testDeps(newFieldRecorder(), &eventlog.Recorder{}))
	var ids []string
	for _, e := range evals {
		ids = append(ids, e.Target().ID)
	}
	if len(ids) != 3 || ids[0] != "print" || ids[1] != "failed" || ids[2] != "users" {
		t.Fatalf("unexpected order %v", ids)
	}
}
