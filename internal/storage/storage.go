package storage

import (
	"sync"

	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
)

// DefaultAlertLimit bounds the alert history kept on disk.
const DefaultAlertLimit = 500

// AlertStorage handles persistence of raised alerts to disk.
type AlertStorage struct {
	mu      sync.RWMutex
	path    string
	limit   int
	history []models.Alert
	logger  *eventlog.Logger
}

// NewAlertStorage creates a storage instance and loads existing history if present.
func NewAlertStorage(path string, limit int, logger *eventlog.Logger) (*AlertStorage, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultAlertLimit
	}

	s := &AlertStorage{path: path, limit: limit, logger: logger}
	if err := readJSON(path, &s.history); err != nil {
		return nil, err
	}
	s.trim()
	return s, nil
}

// Append adds an alert and persists the history.
func (s *AlertStorage) Append(alert models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, alert)
	s.trim()
	return writeJSON(s.path, s.history)
}

// Notify stores alerts handed over by the alerter. Persistence failures are
// logged; the alert stays in memory.
func (s *AlertStorage) Notify(alert models.Alert) {
	if err := s.Append(alert); err != nil {
		s.logger.Trace(eventlog.GenericError, err, "Unable to persist alert "+alert.ID)
	}
}

// History returns a copy of the entire history, oldest first.
func (s *AlertStorage) History() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]models.Alert, len(s.history))
	copy(copied, s.history)
	return copied
}

// Recent returns up to limit alerts, newest first.
func (s *AlertStorage) Recent(limit int) []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]models.Alert, 0, limit)
	for i := len(s.history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.history[i])
	}
	return out
}

func (s *AlertStorage) trim() {
	if over := len(s.history) - s.limit; over > 0 {
		s.history = append([]models.Alert(nil), s.history[over:]...)
	}
}
