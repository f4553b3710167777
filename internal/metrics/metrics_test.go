package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"fsmonitor/internal/models"
)

type recordingPublisher struct {
	ints    map[string]int
	strings map[string]string
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{ints: map[string]int{}, strings: map[string]string{}}
}

func (r *recordingPublisher) SetInt(field string, value int)       { r.ints[field] = value }
func (r *recordingPublisher) SetString(field string, value string) { r.strings[field] = value }

func TestMultiAndUnknown(t *testing.T) {
	a, b := newRecordingPublisher(), newRecordingPublisher()
	pub := Multi{a, b}

	PublishUnknown(pub, models.FieldFailedBacklog)
	PublishUnknown(pub, models.FieldClientServiceStatus)

	for _, r := range []*recordingPublisher{a, b} {
		if r.ints[models.FieldFailedBacklog] != models.Unknown {
			t.Fatalf("expected -1 sentinel, got %d", r.ints[models.FieldFailedBacklog])
		}
		if r.strings[models.FieldClientServiceStatus] != StatusUnknown {
			t.Fatalf("expected Unknown status, got %q", r.strings[models.FieldClientServiceStatus])
		}
	}
}

func TestPrometheusGauges(t *testing.T) {
	p := NewPrometheus()
	p.SetInt(models.FieldFailedBacklog, 3)
	p.SetString(models.FieldPrintServiceStatus, "Running")
	p.SetString(models.FieldPrintServiceStatus, "Stopped")
	p.SetInt("not_a_field", 7)

	if got := testutil.ToFloat64(p.ints[models.FieldFailedBacklog]); got != 3 {
		t.Fatalf("expected 3, got %v", got)
	}

	expected := `
# HELP fsmonitor_print_service_status Print service status; the current status label is 1.
# TYPE fsmonitor_print_service_status gauge
fsmonitor_print_service_status{status="Stopped"} 1
`
	if err := testutil.GatherAndCompare(p.Registry(), strings.NewReader(expected), "fsmonitor_print_service_status"); err != nil {
		t.Fatalf("unexpected exposition: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	alerts := []models.Alert{
		{TargetID: "failed", Severity: models.SeverityError, Message: "one", RaisedAt: base},
		{TargetID: "failed", Severity: models.SeverityError, Message: "two", RaisedAt: base.Add(time.Minute)},
		{TargetID: "users", Severity: models.SeverityWarning, Message: "stale", RaisedAt: base},
	}
	summary := Summarize(alerts)
	if len(summary) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(summary))
	}
	if summary[0].TargetID != "failed" || summary[0].Errors != 2 || summary[0].LastMessage != "two" {
		t.Fatalf("unexpected summary %+v", summary[0])
	}
	if summary[1].Warnings != 1 || summary[1].Total != 1 {
		t.Fatalf("unexpected summary %+v", summary[1])
	}
	if Summarize(nil) != nil {
		t.Fatalf("expected nil summary for no alerts")
	}
}
