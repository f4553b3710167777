package monitor

import (
	"context"
	"sync"
	"time"

	"fsmonitor/internal/alerting"
	"fsmonitor/internal/config"
	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/metrics"
	"fsmonitor/internal/models"
	"fsmonitor/internal/probe"
)

// Evaluator measures one target. Evaluate is not safe for concurrent use on
// the same evaluator; callers serialize invocations per target.
type Evaluator interface {
	Target() models.Target
	Evaluate(ctx context.Context, now time.Time) []models.Alert
	Snapshot() models.Snapshot
}

// Deps are shared by every evaluator.
type Deps struct {
	Publisher metrics.Publisher
	Logger    *eventlog.Logger
	Probe     probe.Probe
}

// Build returns an evaluator for every verified target, in registration order.
func Build(settings config.Settings, deps Deps) []Evaluator {
	var out []Evaluator
	for _, svc := range []*config.Service{settings.Print, settings.Client} {
		if svc != nil {
			out = append(out, NewService(svc.Target, deps))
		}
	}
	for _, dir := range []*config.Directory{settings.Processed, settings.Failed} {
		if dir != nil {
			out = append(out, NewDirectory(*dir, settings.Buckets, deps))
		}
	}
	if f := settings.UsersFile; f != nil {
		policy := alerting.Freshness{Threshold: f.ThresholdMinutes, Interval: settings.IntervalMinutes}
		out = append(out, NewFile(f.Target, policy, deps))
	}
	return out
}

// snapshotter guards the snapshot read by the HTTP layer while the owning
// evaluator writes it.
type snapshotter struct {
	mu   sync.RWMutex
	snap models.Snapshot
}

func (s *snapshotter) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *snapshotter) store(snap models.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func newSnapshot(targetID string) models.Snapshot {
	return models.Snapshot{TargetID: targetID, State: models.StateUnknown}
}

func alertFor(target models.Target, d alerting.Decision, now time.Time) models.Alert {
	return models.NewAlert(target.ID, int(d.EventID), d.Severity, d.Message, now)
}
