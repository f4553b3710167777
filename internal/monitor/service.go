package monitor

import (
	"context"
	"errors"
	"strings"
	"time"

	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
	"fsmonitor/internal/probe"
)

// Service publishes the status of an OS service.
type Service struct {
	snapshotter
	target models.Target
	deps   Deps
}

func NewService(target models.Target, deps Deps) *Service {
	s := &Service{target: target, deps: deps}
	s.snap = newSnapshot(target.ID)
	return s
}

func (s *Service) Target() models.Target { return s.target }

// Evaluate queries the probe. A failed query is logged and leaves both the
// snapshot and the published field untouched.
func (s *Service) Evaluate(ctx context.Context, now time.Time) []models.Alert {
	lines := []string{"Service", "----------", "Service Name: " + s.target.Service}
	s.deps.Logger.Info(eventlog.UpdateServiceDebug, "Service Name: "+s.target.Service)

	status, err := s.deps.Probe.Status(ctx, s.target.Service)
	if err != nil {
		msg := "Unable to query service " + s.target.Service
		if errors.Is(err, probe.ErrNotInstalled) {
			msg = "Service " + s.target.Service + " is not installed"
		}
		s.deps.Logger.Trace(eventlog.ServiceQueryFail, err, msg)
		s.deps.Logger.List(eventlog.UpdateService, models.SeverityInfo, lines)
		return nil
	}

	lines = append(lines, "Service Status: "+status)
	s.deps.Logger.Info(eventlog.UpdateServiceDebug, "Service Status: "+status)
	s.deps.Publisher.SetString(s.target.Field, status)

	state := models.StateOK
	if status != probe.StatusRunning {
		state = models.StateStale
	}
	s.store(models.Snapshot{
		TargetID:  s.target.ID,
		Status:    status,
		State:     state,
		UpdatedAt: now,
	})

	if status == probe.StatusRunning {
		s.deps.Logger.List(eventlog.UpdateService, models.SeverityInfo, lines)
		return nil
	}
	return []models.Alert{models.NewAlert(s.target.ID, int(eventlog.ServiceNotReady),
		models.SeverityWarning, strings.Join(lines, "\n"), now)}
}
