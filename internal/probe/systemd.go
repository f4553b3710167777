package probe

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Systemd queries unit state through systemctl.
type Systemd struct {
	command string
	run     func(ctx context.Context, name string, args ...string) ([]byte, error)
}

func NewSystemd() *Systemd {
	return &Systemd{
		command: "systemctl",
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

func (s *Systemd) Status(ctx context.Context, name string) (string, error) {
	out, err := s.run(ctx, s.command, "show", name, "--property=LoadState,ActiveState")
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("query %s: %w", name, ctx.Err())
		}
		return "", fmt.Errorf("query %s: %w", name, err)
	}
	props := parseProperties(out)
	if props["LoadState"] == "not-found" {
		return "", fmt.Errorf("%s: %w", name, ErrNotInstalled)
	}
	return mapActiveState(props["ActiveState"]), nil
}

func parseProperties(out []byte) map[string]string {
	props := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		props[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return props
}

func mapActiveState(active string) string {
	switch active {
	case "active", "reloading":
		return StatusRunning
	case "inactive":
		return StatusStopped
	case "activating":
		return StatusStartPending
	case "deactivating":
		return StatusStopPending
	case "failed":
		return StatusFailed
	case "maintenance":
		return StatusPaused
	default:
		return StatusUnknown
	}
}
