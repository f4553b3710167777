package monitor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"time"

	"fsmonitor/internal/alerting"
	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
)

// ElapsedMinutes rounds the time since lastWrite to whole minutes.
func ElapsedMinutes(now, lastWrite time.Time) int {
	return int(math.Round(now.Sub(lastWrite).Minutes()))
}

// File evaluates the freshness of a single file.
type File struct {
	snapshotter
	target   models.Target
	policy   alerting.Freshness
	incident alerting.Incident
	deps     Deps
}

func NewFile(target models.Target, policy alerting.Freshness, deps Deps) *File {
	f := &File{target: target, policy: policy, deps: deps}
	f.snap = newSnapshot(target.ID)
	f.snap.AgeMinutes = models.DefaultUserFileAge
	return f
}

func (f *File) Target() models.Target { return f.target }

// Incident returns the current hysteresis state.
func (f *File) Incident() alerting.Incident { return f.incident }

func (f *File) Evaluate(_ context.Context, now time.Time) []models.Alert {
	info, err := os.Stat(f.target.Path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.deps.Logger.Trace(eventlog.GenericError, err, "Unable to stat "+f.target.Path)
			return nil
		}
		f.deps.Logger.List(eventlog.UpdateFile, models.SeverityInfo,
			[]string{"Users file", "----------", "Path is null or file does not exist."})

		decision, next := f.policy.Missing(f.incident, f.target.Path)
		f.incident = next
		snap := f.Snapshot()
		snap.State = models.StateDeleted
		snap.UpdatedAt = now
		f.store(snap)
		if !decision.Raise {
			return nil
		}
		return []models.Alert{alertFor(f.target, decision, now)}
	}

	f.incident = f.policy.Present(f.incident)
	elapsed := ElapsedMinutes(now, info.ModTime())
	f.deps.Publisher.SetInt(f.target.Field, elapsed)

	lines := []string{
		"Users file",
		"----------",
		fmt.Sprintf("Threshold: %d", f.policy.Threshold),
		"Now: " + now.Format(time.RFC3339),
		"Last Write: " + info.ModTime().Format(time.RFC3339),
		fmt.Sprintf("Elapsed (T_min):%d minutes", elapsed),
	}

	decision, next := f.policy.Evaluate(f.incident, elapsed)
	f.incident = next

	state := models.StateOK
	if elapsed > f.policy.Threshold {
		state = models.StateStale
	}
	f.store(models.Snapshot{
		TargetID:   f.target.ID,
		AgeMinutes: elapsed,
		State:      state,
		UpdatedAt:  now,
	})

	if decision.Raise && decision.Severity != models.SeverityInfo {
		lines = append(lines, decision.Message)
	}
	f.deps.Logger.List(eventlog.UpdateFile, models.SeverityInfo, lines)
	if !decision.Raise {
		return nil
	}
	return []models.Alert{alertFor(f.target, decision, now)}
}
