package alerting

import (
	"sync"

	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
)

// Notifier receives warning and error alerts after they were logged.
type Notifier interface {
	Notify(alert models.Alert)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(models.Alert)

func (f NotifierFunc) Notify(alert models.Alert) { f(alert) }

// Alerter writes alerts to the event log and fans them out to notifiers.
type Alerter struct {
	logger *eventlog.Logger

	mu        sync.RWMutex
	notifiers []Notifier
}

func NewAlerter(logger *eventlog.Logger) *Alerter {
	return &Alerter{logger: logger}
}

// AddNotifier registers n for future alerts.
func (a *Alerter) AddNotifier(n Notifier) {
	a.mu.Lock()
	a.notifiers = append(a.notifiers, n)
	a.mu.Unlock()
}

// ProcessAlerts logs every alert. Informational alerts stop at the log.
func (a *Alerter) ProcessAlerts(alerts []models.Alert) {
	if a == nil || len(alerts) == 0 {
		return
	}

	a.mu.RLock()
	notifiers := make([]Notifier, len(a.notifiers))
	copy(notifiers, a.notifiers)
	a.mu.RUnlock()

	for _, alert := range alerts {
		a.logger.Event(eventlog.EventID(alert.EventID), alert.Severity, alert.Message)
		if alert.Severity == models.SeverityInfo {
			continue
		}
		for _, n := range notifiers {
			n.Notify(alert)
		}
	}
}
