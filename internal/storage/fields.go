package storage

import (
	"sync"
	"time"

	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
)

type fieldsFile struct {
	models.Fields
	UpdatedAt time.Time `json:"updated_at"`
}

// FieldStore keeps the latest published fields and writes them through to
// disk so the last known values survive a restart.
type FieldStore struct {
	mu      sync.RWMutex
	path    string
	current fieldsFile
	logger  *eventlog.Logger
}

// NewFieldStore loads persisted fields over the defaults.
func NewFieldStore(path string, logger *eventlog.Logger) (*FieldStore, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	s := &FieldStore{path: path, logger: logger}

	var saved fieldsFile
	if err := readJSON(path, &saved); err != nil {
		return nil, err
	}
	s.current = fieldsFile{Fields: models.DefaultFields(), UpdatedAt: saved.UpdatedAt}
	for k, v := range saved.Ints {
		s.current.Ints[k] = v
	}
	for k, v := range saved.Strings {
		s.current.Strings[k] = v
	}
	return s, nil
}

func (s *FieldStore) SetInt(field string, value int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.current.Ints[field]; ok && prev == value {
		return
	}
	s.current.Ints[field] = value
	s.persistLocked()
}

func (s *FieldStore) SetString(field string, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.current.Strings[field]; ok && prev == value {
		return
	}
	s.current.Strings[field] = value
	s.persistLocked()
}

// Fields returns a copy of the current values.
func (s *FieldStore) Fields() models.Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := models.Fields{
		Ints:    make(map[string]int, len(s.current.Ints)),
		Strings: make(map[string]string, len(s.current.Strings)),
	}
	for k, v := range s.current.Ints {
		out.Ints[k] = v
	}
	for k, v := range s.current.Strings {
		out.Strings[k] = v
	}
	return out
}

// UpdatedAt reports when a field last changed.
func (s *FieldStore) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.UpdatedAt
}

func (s *FieldStore) persistLocked() {
	s.current.UpdatedAt = time.Now().UTC()
	if err := writeJSON(s.path, s.current); err != nil {
		s.logger.Trace(eventlog.GenericError, err, "Unable to persist fields")
	}
}
