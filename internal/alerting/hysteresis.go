package alerting

import (
	"fmt"

	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
)

// Incident records what has been raised for the current incident of a
// freshness target. The zero value means no incident is in progress.
type Incident struct {
	Raised  int
	Deleted bool
}

// Freshness is the stale-file alert policy. Threshold and Interval are in
// minutes.
type Freshness struct {
	Threshold int
	Interval  float64
}

// Decision is the outcome of a single freshness evaluation.
type Decision struct {
	Raise    bool
	Severity models.Severity
	EventID  eventlog.EventID
	Message  string
}

// Evaluate applies the policy to elapsed minutes since the last write.
//
// Above 2x threshold an error is raised for the first observation of the
// incident and while still inside 2x threshold + 2x interval. Above the
// threshold a warning follows the same rule against threshold + 2x
// interval. At or below the threshold the incident only ends on a fresh
// write (elapsed of at most one minute) or when nothing was raised yet; in
// between, an open incident is left as is.
func (f Freshness) Evaluate(state Incident, elapsed int) (Decision, Incident) {
	critical := 2 * f.Threshold
	grace := 2 * f.Interval

	switch {
	case elapsed > critical:
		if state.Raised > 0 && float64(elapsed) >= float64(critical)+grace {
			return Decision{}, state
		}
		state.Raised++
		return Decision{
			Raise:    true,
			Severity: models.SeverityError,
			EventID:  eventlog.UsersFileCritical,
			Message: fmt.Sprintf("Users file time elapsed is greater than 2x threshold!\nThreshold: %d\nElapsed: %d minutes",
				f.Threshold, elapsed),
		}, state
	case elapsed > f.Threshold:
		if state.Raised > 0 && float64(elapsed) >= float64(f.Threshold)+grace {
			return Decision{}, state
		}
		state.Raised++
		return Decision{
			Raise:    true,
			Severity: models.SeverityWarning,
			EventID:  eventlog.UsersFileStale,
			Message: fmt.Sprintf("Users file time elapsed is greater than threshold!\nThreshold: %d\nElapsed: %d minutes",
				f.Threshold, elapsed),
		}, state
	case elapsed <= 1 || state.Raised == 0:
		state.Raised = 0
		return Decision{
			Raise:    true,
			Severity: models.SeverityInfo,
			EventID:  eventlog.UsersUpdated,
			Message:  "Users file updated",
		}, state
	default:
		return Decision{}, state
	}
}

// Missing handles an evaluation that found no file. The deleted alert is
// raised once until the file reappears.
func (f Freshness) Missing(state Incident, path string) (Decision, Incident) {
	if state.Deleted {
		return Decision{}, state
	}
	state.Deleted = true
	return Decision{
		Raise:    true,
		Severity: models.SeverityError,
		EventID:  eventlog.UsersFileDeleted,
		Message:  fmt.Sprintf("Users file deleted!\nPath: %s", path),
	}, state
}

// Present clears the deleted flag once the file exists again.
func (f Freshness) Present(state Incident) Incident {
	state.Deleted = false
	return state
}
