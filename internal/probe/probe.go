// Package probe queries the state of OS-managed services.
package probe

import (
	"context"
	"errors"
	"fmt"
)

// Service status names reported to publishers.
const (
	StatusRunning      = "Running"
	StatusStopped      = "Stopped"
	StatusStartPending = "StartPending"
	StatusStopPending  = "StopPending"
	StatusPaused       = "Paused"
	StatusFailed       = "Failed"
	StatusUnknown      = "Unknown"
)

// ErrNotInstalled is returned when the named service does not exist.
var ErrNotInstalled = errors.New("service not installed")

// Probe reports the status of a named service.
type Probe interface {
	Status(ctx context.Context, name string) (string, error)
}

// Backend names accepted by New.
const (
	BackendSystemd = "systemd"
	BackendProcess = "process"
)

// New returns the probe implementation named by backend.
func New(backend string) (Probe, error) {
	switch backend {
	case "", BackendSystemd:
		return NewSystemd(), nil
	case BackendProcess:
		return NewProcess(), nil
	default:
		return nil, fmt.Errorf("unknown service probe %q", backend)
	}
}

// Static is a fixed status table, useful when embedding the monitor.
type Static map[string]string

func (s Static) Status(_ context.Context, name string) (string, error) {
	status, ok := s[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	return status, nil
}
