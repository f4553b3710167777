package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity orders alert and log levels.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Alert is a single raised condition for a target.
type Alert struct {
	ID       string    `json:"id"`
	TargetID string    `json:"target_id"`
	EventID  int       `json:"event_id"`
	Severity Severity  `json:"severity"`
	Message  string    `json:"message"`
	RaisedAt time.Time `json:"raised_at"`
}

// NewAlert stamps an alert with a fresh id.
func NewAlert(targetID string, eventID int, severity Severity, message string, at time.Time) Alert {
	return Alert{
		ID:       uuid.NewString(),
		TargetID: targetID,
		EventID:  eventID,
		Severity: severity,
		Message:  message,
		RaisedAt: at.UTC(),
	}
}
