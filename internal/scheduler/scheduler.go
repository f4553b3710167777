// Package scheduler drives evaluators from one interval ticker and from
// coalesced filesystem notifications.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fsmonitor/internal/coalesce"
	"fsmonitor/internal/eventlog"
	"fsmonitor/internal/models"
	"fsmonitor/internal/monitor"
	"fsmonitor/internal/watch"
)

// DefaultEvalTimeout bounds a single evaluation.
const DefaultEvalTimeout = 30 * time.Second

// AlertSink receives the alerts produced by each evaluation.
type AlertSink interface {
	ProcessAlerts(alerts []models.Alert)
}

// Options configures a Scheduler.
type Options struct {
	Interval    time.Duration
	EvalTimeout time.Duration
	// Window is the coalescing window for change notifications.
	Window     time.Duration
	Subscriber watch.Subscriber
	Alerts     AlertSink
	Logger     *eventlog.Logger
	Now        func() time.Time
}

// TargetStatus describes how a target is driven and what it last reported.
type TargetStatus struct {
	Target   models.Target   `json:"target"`
	Snapshot models.Snapshot `json:"snapshot"`
	Watched  bool            `json:"watched"`
	Polled   bool            `json:"polled"`
}

// Scheduler owns the interval ticker, the change subscriptions and the
// per-target runners.
type Scheduler struct {
	opts    Options
	runners []*runner
	byID    map[string]*runner
	cache   *coalesce.Cache[watch.Event]

	mu       sync.Mutex
	polled   []*runner
	handles  []watch.Handle
	started  bool
	stopping bool
	inflight sync.WaitGroup

	stopCh chan struct{}
	doneCh chan struct{}
}

// New prepares a scheduler for evaluators. Nothing runs until Start.
func New(evaluators []monitor.Evaluator, opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 10 * time.Minute
	}
	if opts.EvalTimeout <= 0 {
		opts.EvalTimeout = DefaultEvalTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Scheduler{
		opts:   opts,
		byID:   make(map[string]*runner, len(evaluators)),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	for _, eval := range evaluators {
		r := &runner{eval: eval, sched: s}
		s.runners = append(s.runners, r)
		s.byID[eval.Target().ID] = r
	}
	s.cache = coalesce.New(coalesce.Options[watch.Event]{
		Window:   opts.Window,
		OnExpire: s.expired,
		OnPanic: func(key string, err error) {
			s.opts.Logger.Trace(eventlog.GenericError, err, "Change delivery failed for "+key)
		},
	})
	return s
}

// Start registers every target, runs the cold-start evaluations and begins
// ticking. Calling Start twice has no effect.
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started || s.stopping {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	lines := []string{"Attaching Pollers", "-----------------"}
	for _, r := range s.runners {
		lines = append(lines, s.register(r)...)
	}
	s.opts.Logger.List(eventlog.AttachPollers, models.SeverityInfo, lines)

	for _, r := range s.runners {
		r.trigger()
	}
	go s.run()
}

// register decides how a target is driven. Services are polled. Directories
// are watched and fall back to polling when the subscription cannot be made.
// Files are watched and polled, since freshness changes without any write.
func (s *Scheduler) register(r *runner) []string {
	target := r.eval.Target()
	lines := []string{"[+] " + target.ID}

	switch target.Kind {
	case models.KindDirectory, models.KindFile:
		if err := s.subscribe(r); err != nil {
			msg := fmt.Sprintf("[!] Cannot configure FileSystem Event polling for Config::%s, falling back to interval polling", target.ID)
			s.opts.Logger.Trace(eventlog.WatchSetupFail, err, msg)
			s.opts.Logger.Warn(eventlog.WatchFallback, fmt.Sprintf("%s\nPath: %s", msg, target.Path))
			lines = append(lines, "     - "+msg)
			s.poll(r)
			return lines
		}
		lines = append(lines, "     - watching "+target.Path)
		if target.Kind == models.KindFile {
			s.poll(r)
			lines = append(lines, "     - interval polling")
		}
	default:
		s.poll(r)
		lines = append(lines, "     - interval polling")
	}
	return lines
}

func (s *Scheduler) subscribe(r *runner) error {
	if s.opts.Subscriber == nil {
		return watch.ErrUnsupported
	}
	target := r.eval.Target()
	handle, err := s.opts.Subscriber.Subscribe(target, s.notify)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.handles = append(s.handles, handle)
	r.watched = true
	s.mu.Unlock()
	s.opts.Logger.Info(eventlog.HookWatch, fmt.Sprintf("Hooking FS Event\nName: %s\nPath: %s", target.ID, target.Path))
	return nil
}

func (s *Scheduler) poll(r *runner) {
	s.mu.Lock()
	s.polled = append(s.polled, r)
	r.polled = true
	s.mu.Unlock()
}

func (s *Scheduler) notify(ev watch.Event) {
	s.opts.Logger.Info(eventlog.NotifyReceived, fmt.Sprintf("%s %s: %s", ev.TargetID, ev.Kind, ev.Path))
	s.cache.Offer(ev.Key(), ev)
}

func (s *Scheduler) expired(key string, ev watch.Event) {
	s.opts.Logger.Info(eventlog.CacheExpiredDebug, "Coalesced change delivered for "+key)
	if r, ok := s.byID[ev.TargetID]; ok {
		r.trigger()
	}
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopCh:
			return
		}
	}
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	polled := make([]*runner, len(s.polled))
	copy(polled, s.polled)
	s.mu.Unlock()

	for _, r := range polled {
		r.trigger()
	}
}

// Trigger schedules an evaluation of the target with id.
func (s *Scheduler) Trigger(id string) bool {
	r, ok := s.byID[id]
	if !ok {
		return false
	}
	return r.trigger()
}

// Stop halts the ticker, closes every subscription and waits for in-flight
// evaluations to finish. Evaluations are not cancelled.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	s.stopping = true
	started := s.started
	handles := s.handles
	s.handles = nil
	s.mu.Unlock()

	if started {
		close(s.stopCh)
		<-s.doneCh
	}
	for _, h := range handles {
		if err := h.Close(); err != nil {
			s.opts.Logger.Trace(eventlog.GenericError, err, "Unable to close watcher")
		}
	}
	s.cache.Close()
	s.inflight.Wait()
	s.opts.Logger.Info(eventlog.SchedulerStop, "Scheduler stopped")
}

// Targets reports every registered target in registration order.
func (s *Scheduler) Targets() []TargetStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]TargetStatus, 0, len(s.runners))
	for _, r := range s.runners {
		out = append(out, TargetStatus{
			Target:   r.eval.Target(),
			Snapshot: r.eval.Snapshot(),
			Watched:  r.watched,
			Polled:   r.polled,
		})
	}
	return out
}

// begin accounts for a new evaluation goroutine unless shutdown started.
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.inflight.Add(1)
	return true
}

func (s *Scheduler) isStopping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopping
}

func (s *Scheduler) evaluate(eval monitor.Evaluator) {
	target := eval.Target()
	defer func() {
		if rec := recover(); rec != nil {
			s.opts.Logger.Trace(eventlog.GenericError, fmt.Errorf("panic: %v", rec), "Evaluation of "+target.ID+" failed")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.EvalTimeout)
	defer cancel()

	alerts := eval.Evaluate(ctx, s.opts.Now())
	if s.opts.Alerts != nil {
		s.opts.Alerts.ProcessAlerts(alerts)
	}
}
