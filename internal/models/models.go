package models

import "time"

// TargetKind identifies what a watched target points at.
type TargetKind string

const (
	KindDirectory TargetKind = "directory"
	KindFile      TargetKind = "file"
	KindService   TargetKind = "service"
)

// Target describes a single monitored directory, file or service.
type Target struct {
	ID      string     `yaml:"id" json:"id"`
	Name    string     `yaml:"name" json:"name"`
	Kind    TargetKind `yaml:"kind" json:"kind"`
	Path    string     `yaml:"path,omitempty" json:"path,omitempty"`
	Service string     `yaml:"service,omitempty" json:"service,omitempty"`
	Field   string     `yaml:"field" json:"field"`
}

// Snapshot holds the latest values computed for a target.
type Snapshot struct {
	TargetID   string    `json:"target_id"`
	Count      int       `json:"count"`
	AgeMinutes int       `json:"age_minutes"`
	Status     string    `json:"status,omitempty"`
	State      string    `json:"state,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Snapshot states.
const (
	StateOK      = "ok"
	StateUnknown = "unknown"
	StateDeleted = "deleted"
	StateStale   = "stale"
)

// Unknown is published for values that could not be measured.
const Unknown = -1
