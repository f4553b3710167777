// Package watch turns fsnotify events into per-target change notifications.
package watch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"fsmonitor/internal/models"
)

// ChangeKind is the logical kind of a filesystem change.
type ChangeKind string

const (
	Created ChangeKind = "Created"
	Changed ChangeKind = "Changed"
	Deleted ChangeKind = "Deleted"
)

// Event is a single change observed for a target.
type Event struct {
	TargetID  string
	Path      string
	Kind      ChangeKind
	Timestamp time.Time
}

// Key identifies the coalescing slot for an event.
func (e Event) Key() string {
	return e.TargetID + string(e.Kind)
}

// Handle releases a subscription.
type Handle interface {
	Close() error
}

// Subscriber creates change subscriptions for directory and file targets.
type Subscriber interface {
	Subscribe(target models.Target, handler func(Event)) (Handle, error)
}

var (
	ErrPathNotFound   = errors.New("path does not exist")
	ErrNotDirectory   = errors.New("path is not a directory")
	ErrNotRegularFile = errors.New("path is not a regular file")
	ErrUnsupported    = errors.New("target kind cannot be watched")
)

// FS is the fsnotify-backed Subscriber.
type FS struct {
	// OnError receives asynchronous watcher errors.
	OnError func(target models.Target, err error)
}

// Subscribe starts watching target. Directories are watched directly; a file
// is watched through its parent directory and filtered by name.
func (f FS) Subscribe(target models.Target, handler func(Event)) (Handle, error) {
	dir, filter, err := resolve(target)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	sub := &subscription{
		fsw:     fsw,
		target:  target,
		filter:  filter,
		handler: handler,
		onError: f.OnError,
		done:    make(chan struct{}),
	}
	go sub.run()
	return sub, nil
}

func resolve(target models.Target) (dir, filter string, err error) {
	info, err := os.Stat(target.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", "", fmt.Errorf("%s: %w", target.Path, ErrPathNotFound)
		}
		return "", "", fmt.Errorf("stat %s: %w", target.Path, err)
	}
	switch target.Kind {
	case models.KindDirectory:
		if !info.IsDir() {
			return "", "", fmt.Errorf("%s: %w", target.Path, ErrNotDirectory)
		}
		return filepath.Clean(target.Path), "", nil
	case models.KindFile:
		if !info.Mode().IsRegular() {
			return "", "", fmt.Errorf("%s: %w", target.Path, ErrNotRegularFile)
		}
		return filepath.Dir(target.Path), filepath.Base(target.Path), nil
	default:
		return "", "", fmt.Errorf("%s: %w", target.Kind, ErrUnsupported)
	}
}

type subscription struct {
	fsw     *fsnotify.Watcher
	target  models.Target
	filter  string
	handler func(Event)
	onError func(models.Target, error)

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func (s *subscription) run() {
	for {
		select {
		case event, ok := <-s.fsw.Events:
			if !ok {
				return
			}
			if s.filter != "" && filepath.Base(event.Name) != s.filter {
				continue
			}
			kind, ok := classify(event.Op)
			if !ok {
				continue
			}
			s.handler(Event{
				TargetID:  s.target.ID,
				Path:      event.Name,
				Kind:      kind,
				Timestamp: time.Now().UTC(),
			})
		case err, ok := <-s.fsw.Errors:
			if !ok {
				return
			}
			if s.onError != nil {
				s.onError(s.target, err)
			}
		case <-s.done:
			return
		}
	}
}

func (s *subscription) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.closeErr = s.fsw.Close()
	})
	return s.closeErr
}

// classify maps an fsnotify op to a change kind. Renames and attribute
// changes are not reported.
func classify(op fsnotify.Op) (ChangeKind, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return Deleted, true
	case op.Has(fsnotify.Create):
		return Created, true
	case op.Has(fsnotify.Write):
		return Changed, true
	default:
		return "", false
	}
}
