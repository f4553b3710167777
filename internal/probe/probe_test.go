package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v4/process"
)

func fakeSystemd(out string, err error) *Systemd {
	return &Systemd{
		command: "systemctl",
		run: func(context.Context, string, ...string) ([]byte, error) {
			return []byte(out), err
		},
	}
}

func TestSystemdRunning(t *testing.T) {
	p := fakeSystemd("LoadState=loaded\nActiveState=active\n", nil)
	status, err := p.Status(context.Background(), "cups")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status != StatusRunning {
		t.Fatalf("expected %s, got %s", StatusRunning, status)
	}
}

func TestSystemdStateMapping(t *testing.T) {
	cases := map[string]string{
		"inactive":     StatusStopped,
		"activating":   StatusStartPending,
		"deactivating": StatusStopPending,
		"failed":       StatusFailed,
		"bogus":        StatusUnknown,
	}
	for state, want := range cases {
		p := fakeSystemd("LoadState=loaded\nActiveState="+state+"\n", nil)
		got, err := p.Status(context.Background(), "svc")
		if err != nil {
			t.Fatalf("%s: unexpected error %v", state, err)
		}
		if got != want {
			t.Fatalf("%s: expected %s, got %s", state, want, got)
		}
	}
}

func TestSystemdNotInstalled(t *testing.T) {
	p := fakeSystemd("LoadState=not-found\nActiveState=inactive\n", nil)
	_, err := p.Status(context.Background(), "missing")
	if !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
}

func TestSystemdCommandFailure(t *testing.T) {
	p := fakeSystemd("", errors.New("exit status 1"))
	if _, err := p.Status(context.Background(), "svc"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestProcessProbe(t *testing.T) {
	p := &Process{list: func(context.Context) ([]processInfo, error) {
		return []processInfo{
			{name: "cupsd", status: []string{process.Sleep}},
			{name: "client", status: []string{process.Zombie}},
		}, nil
	}}

	if got, _ := p.Status(context.Background(), "cupsd"); got != StatusRunning {
		t.Fatalf("expected running, got %s", got)
	}
	if got, _ := p.Status(context.Background(), "client"); got != StatusStopped {
		t.Fatalf("expected stopped for zombie, got %s", got)
	}
	if got, _ := p.Status(context.Background(), "absent"); got != StatusStopped {
		t.Fatalf("expected stopped for absent process, got %s", got)
	}
}

func TestStaticProbe(t *testing.T) {
	p := Static{"cups": StatusRunning}
	if _, err := p.Status(context.Background(), "other"); !errors.Is(err, ErrNotInstalled) {
		t.Fatalf("expected ErrNotInstalled, got %v", err)
	}
}

func TestNewBackend(t *testing.T) {
	if _, err := New("launchd"); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
	if p, err := New(BackendProcess); err != nil || p == nil {
		t.Fatalf("expected process backend, got %v %v", p, err)
	}
}
