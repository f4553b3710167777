package models

import "time"

// TimelinePoint represents a single compact point in a target timeline.
type TimelinePoint struct {
	ClassName string           `json:"className"`
	Label     string           `json:"label"`
	Start     time.Time        `json:"start"`
	End       time.Time        `json:"end"`
	Details   []TimelineDetail `json:"details,omitempty"`
}

// TimelineDetail carries the alerts behind a problematic bucket.
type TimelineDetail struct {
	Timestamp time.Time `json:"timestamp"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
}

// TargetTimeline aggregates timeline points for a single target.
type TargetTimeline struct {
	TargetID   string          `json:"target_id"`
	TargetName string          `json:"target_name"`
	Timeline   []TimelinePoint `json:"timeline"`
}
