package probe

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/process"
)

type processInfo struct {
	name   string
	status []string
}

// Process treats a service as running while a process with its name exists.
// A missing process is reported as stopped rather than not installed.
type Process struct {
	list func(ctx context.Context) ([]processInfo, error)
}

func NewProcess() *Process {
	return &Process{list: listProcesses}
}

func (p *Process) Status(ctx context.Context, name string) (string, error) {
	procs, err := p.list(ctx)
	if err != nil {
		return "", fmt.Errorf("list processes: %w", err)
	}
	status := StatusStopped
	for _, proc := range procs {
		if proc.name != name {
			continue
		}
		status = mapProcessStatus(proc.status)
		if status == StatusRunning {
			break
		}
	}
	return status, nil
}

func listProcesses(ctx context.Context) ([]processInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]processInfo, 0, len(procs))
	for _, proc := range procs {
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			// Process exited between listing and inspection.
			continue
		}
		status, err := proc.StatusWithContext(ctx)
		if err != nil {
			status = nil
		}
		out = append(out, processInfo{name: name, status: status})
	}
	return out, nil
}

func mapProcessStatus(status []string) string {
	if len(status) == 0 {
		return StatusRunning
	}
	switch status[0] {
	case process.Running, process.Sleep, process.Idle, process.Wait, process.Lock:
		return StatusRunning
	case process.Stop:
		return StatusPaused
	case process.Zombie:
		return StatusStopped
	default:
		return StatusUnknown
	}
}
