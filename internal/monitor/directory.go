package monitor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"fsmonitor/internal/alerting"
	"fsmonitor/internal/config"
	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
)

// DirReading is what one directory scan observed.
type DirReading struct {
	Missing bool
	Count   int
	Latest  time.Time
}

// DirOutcome is the result of judging a directory reading.
type DirOutcome struct {
	Snapshot  models.Snapshot
	Decisions []alerting.Decision
	// Fields are the publisher values to set.
	Fields map[string]int
}

// JudgeDirectory applies the bucket rules to a reading. A directory whose
// name matches the failed bucket is faulty with any file in it; one matching
// the processed bucket is faulty when empty and otherwise reports the age of
// its newest file.
func JudgeDirectory(dir config.Directory, buckets config.Buckets, prev models.Snapshot, r DirReading, now time.Time) DirOutcome {
	out := DirOutcome{Snapshot: prev, Fields: map[string]int{}}
	out.Snapshot.UpdatedAt = now

	if r.Missing {
		out.Snapshot.Count = models.Unknown
		out.Snapshot.State = models.StateUnknown
		out.Fields[dir.Target.Field] = models.Unknown
		return out
	}

	out.Snapshot.Count = r.Count
	out.Snapshot.State = models.StateOK

	if buckets.Failed != "" && dir.Name == buckets.Failed {
		out.Fields[models.FieldFailedBacklog] = r.Count
		if r.Count > 0 {
			out.Snapshot.State = models.StateStale
			out.Decisions = append(out.Decisions, alerting.Decision{
				Raise:    true,
				Severity: models.SeverityError,
				EventID:  eventlog.FailedBacklog,
				Message:  fmt.Sprintf("Failed folder has > 0 reports!\n%s\n%d files", dir.Target.Path, r.Count),
			})
		}
	}
	if buckets.Processed != "" && dir.Name == buckets.Processed {
		out.Fields[models.FieldProcessedBacklog] = r.Count
		if r.Count < 1 {
			out.Snapshot.State = models.StateStale
			out.Decisions = append(out.Decisions, alerting.Decision{
				Raise:    true,
				Severity: models.SeverityError,
				EventID:  eventlog.ProcessedEmpty,
				Message:  fmt.Sprintf("Processed folder has 0 reports!\n%s\n%d files", dir.Target.Path, r.Count),
			})
		} else {
			age := int(now.Sub(r.Latest).Minutes())
			out.Snapshot.AgeMinutes = age
			out.Fields[models.FieldProcessedAgeMinutes] = age
		}
	}
	return out
}

// ScanDirectory counts the top-level files in path and finds the newest
// modification time. Files removed mid-scan are skipped.
func ScanDirectory(path string) (DirReading, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DirReading{Missing: true}, nil
		}
		return DirReading{Missing: true}, err
	}
	var r DirReading
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		r.Count++
		if info.ModTime().After(r.Latest) {
			r.Latest = info.ModTime()
		}
	}
	return r, nil
}

// Directory evaluates a processed or failed bucket directory.
type Directory struct {
	snapshotter
	dir     config.Directory
	buckets config.Buckets
	deps    Deps
}

func NewDirectory(dir config.Directory, buckets config.Buckets, deps Deps) *Directory {
	d := &Directory{dir: dir, buckets: buckets, deps: deps}
	d.snap = newSnapshot(dir.Target.ID)
	return d
}

func (d *Directory) Target() models.Target { return d.dir.Target }

func (d *Directory) Evaluate(_ context.Context, now time.Time) []models.Alert {
	lines := []string{"Update Folder", "----------------", "[ i ]Path: " + d.dir.Target.Path}

	reading, err := ScanDirectory(d.dir.Target.Path)
	if err != nil {
		d.deps.Logger.Trace(eventlog.GenericError, err, "Unable to read "+d.dir.Target.Path)
	}
	if reading.Missing {
		lines = append(lines, "[ ! ] Path is null or folder does not exist.")
	} else {
		lines = append(lines, "Folder Name: "+d.dir.Name, fmt.Sprintf("Files: %d files", reading.Count))
		d.deps.Logger.Info(eventlog.UpdateDirDebug, fmt.Sprintf("%s Files: %d files", d.dir.Name, reading.Count))
	}

	outcome := JudgeDirectory(d.dir, d.buckets, d.Snapshot(), reading, now)
	for _, field := range []string{models.FieldFailedBacklog, models.FieldProcessedBacklog, models.FieldProcessedAgeMinutes} {
		if v, ok := outcome.Fields[field]; ok {
			d.deps.Publisher.SetInt(field, v)
		}
	}
	d.store(outcome.Snapshot)

	alerts := make([]models.Alert, 0, len(outcome.Decisions))
	for _, decision := range outcome.Decisions {
		lines = append(lines, decision.Message)
		alerts = append(alerts, alertFor(d.dir.Target, decision, now))
	}
	d.deps.Logger.List(eventlog.UpdateDir, models.SeverityInfo, lines)
	return alerts
}
