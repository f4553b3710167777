package metrics

import (
	"sort"
	"time"

	"fsmonitor/internal/models"
)

// AlertSummary summarises alerts raised for a target.
type AlertSummary struct {
	TargetID    string `json:"target_id"`
	Total       int    `json:"total"`
	Warnings    int    `json:"warnings"`
	Errors      int    `json:"errors"`
	LastMessage string `json:"last_message,omitempty"`
	LastRaised  string `json:"last_raised,omitempty"`
}

// Summarize aggregates alert counts per target from history entries.
func Summarize(alerts []models.Alert) []AlertSummary {
	type acc struct {
		warnings int
		errors   int
		lastMsg  string
		lastTime time.Time
	}
	state := make(map[string]*acc)
	for _, alert := range alerts {
		target := state[alert.TargetID]
		if target == nil {
			target = &acc{}
			state[alert.TargetID] = target
		}
		switch alert.Severity {
		case models.SeverityError:
			target.errors++
		case models.SeverityWarning:
			target.warnings++
		}
		if !alert.RaisedAt.Before(target.lastTime) {
			target.lastMsg = alert.Message
			target.lastTime = alert.RaisedAt
		}
	}
	if len(state) == 0 {
		return nil
	}

	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	results := make([]AlertSummary, 0, len(keys))
	for _, id := range keys {
		data := state[id]
		result := AlertSummary{
			TargetID:    id,
			Total:       data.warnings + data.errors,
			Warnings:    data.warnings,
			Errors:      data.errors,
			LastMessage: data.lastMsg,
		}
		if !data.lastTime.IsZero() {
			result.LastRaised = data.lastTime.UTC().Format(time.RFC3339)
		}
		results = append(results, result)
	}
	return results
}
