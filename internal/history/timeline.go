// Package history folds stored alerts into compact per-target timelines.
package history

import (
	"sort"
	"strings"
	"time"

	"fsmonitor/internal/models"
)

const (
	// DefaultTimelinePoints controls how many dots we generate per target.
	DefaultTimelinePoints = 48
	maxDetailsPerPoint    = 4
)

// BuildAlertTimelines buckets alerts raised between start and end into points
// per target. Targets without alerts still get a quiet timeline.
func BuildAlertTimelines(alerts []models.Alert, targets []models.Target, start, end time.Time, points int) []models.TargetTimeline {
	if points <= 0 {
		points = DefaultTimelinePoints
	}
	if !end.After(start) {
		end = start.Add(time.Minute)
	}

	nameMap := make(map[string]string)
	registerName := func(id, name string) {
		if id == "" {
			return
		}
		if name == "" {
			name = id
		}
		if existing, ok := nameMap[id]; !ok || existing == "" || existing == id {
			nameMap[id] = name
		}
	}
	for _, target := range targets {
		registerName(target.ID, target.Name)
	}

	byTarget := make(map[string][]models.Alert)
	for _, alert := range alerts {
		registerName(alert.TargetID, "")
		byTarget[alert.TargetID] = append(byTarget[alert.TargetID], alert)
	}
	if len(nameMap) == 0 {
		return nil
	}

	ids := make([]string, 0, len(nameMap))
	for id := range nameMap {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return strings.ToLower(nameMap[ids[i]]) < strings.ToLower(nameMap[ids[j]])
	})

	result := make([]models.TargetTimeline, 0, len(ids))
	for _, id := range ids {
		result = append(result, models.TargetTimeline{
			TargetID:   id,
			TargetName: nameMap[id],
			Timeline:   buildTimeline(byTarget[id], start, end, points),
		})
	}
	return result
}

func buildTimeline(alerts []models.Alert, start, end time.Time, points int) []models.TimelinePoint {
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].RaisedAt.Before(alerts[j].RaisedAt)
	})

	bucketDuration := end.Sub(start) / time.Duration(points)
	if bucketDuration <= 0 {
		bucketDuration = time.Minute
	}

	output := make([]models.TimelinePoint, 0, points)
	cursor := 0
	for i := 0; i < points; i++ {
		bucketStart := start.Add(time.Duration(i) * bucketDuration)
		bucketEnd := bucketStart.Add(bucketDuration)
		if i == points-1 {
			bucketEnd = end
		}
		var bucket []models.Alert
		bucket, cursor = collectBucket(alerts, bucketStart, bucketEnd, cursor)
		class, label, details := evaluateBucket(bucket)
		output = append(output, models.TimelinePoint{
			ClassName: class,
			Label:     label,
			Start:     bucketStart,
			End:       bucketEnd,
			Details:   details,
		})
	}
	return output
}

func collectBucket(alerts []models.Alert, start, end time.Time, cursor int) ([]models.Alert, int) {
	total := len(alerts)
	i := cursor
	for i < total && alerts[i].RaisedAt.Before(start) {
		i++
	}
	j := i
	for j < total && alerts[j].RaisedAt.Before(end) {
		j++
	}
	if i >= j {
		return nil, j
	}
	return alerts[i:j], j
}

func evaluateBucket(alerts []models.Alert) (className, label string, details []models.TimelineDetail) {
	var hasError, hasWarning bool
	for _, alert := range alerts {
		switch alert.Severity {
		case models.SeverityError:
			hasError = true
		case models.SeverityWarning:
			hasWarning = true
		default:
			continue
		}
		if len(details) < maxDetailsPerPoint {
			details = append(details, models.TimelineDetail{
				Timestamp: alert.RaisedAt,
				Severity:  alert.Severity,
				Message:   alert.Message,
			})
		}
	}

	switch {
	case hasError:
		return "state-error", "Error", details
	case hasWarning:
		return "state-warning", "Warning", details
	default:
		return "state-success", "Quiet", nil
	}
}
