package scheduler

import (
	"sync"

	"fsmonitor/internal/monitor"
)

// runner keeps at most one evaluation of a target in flight. A trigger that
// arrives while running is folded into a single follow-up evaluation.
type runner struct {
	eval  monitor.Evaluator
	sched *Scheduler

	// guarded by sched.mu
	watched bool
	polled  bool

	mu      sync.Mutex
	running bool
	pending bool
}

// trigger reports whether the evaluation was started or queued.
func (r *runner) trigger() bool {
	r.mu.Lock()
	if r.running {
		r.pending = true
		r.mu.Unlock()
		return true
	}
	r.running = true
	r.mu.Unlock()

	if !r.sched.begin() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
		return false
	}
	go r.loop()
	return true
}

func (r *runner) loop() {
	defer r.sched.inflight.Done()
	for {
		r.sched.evaluate(r.eval)

		r.mu.Lock()
		if !r.pending || r.sched.isStopping() {
			r.running = false
			r.pending = false
			r.mu.Unlock()
			return
		}
		r.pending = false
		r.mu.Unlock()
	}
}
