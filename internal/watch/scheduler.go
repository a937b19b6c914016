// Package watch drives automatic rebuilds: a filesystem watcher feeds
// change notifications into a debouncing scheduler that runs at most one
// rebuild at a time.
package watch

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period required before a rebuild starts.
const DefaultDebounce = 150 * time.Millisecond

// State is the scheduler's lifecycle position.
type State int

const (
	// StateIdle means no rebuild is due or running.
	StateIdle State = iota
	// StatePending means the debounce timer is armed; further
	// notifications push the deadline out.
	StatePending
	// StateRebuilding means a rebuild is in flight; notifications queue
	// exactly one follow-up rebuild.
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRebuilding:
		return "rebuilding"
	default:
		return "idle"
	}
}

// Scheduler coalesces bursts of change notifications into single-flight
// rebuilds. Any number of notifications during the debounce window or a
// running rebuild collapse into at most one follow-up rebuild.
type Scheduler struct {
	debounce time.Duration
	rebuild  func()

	mu     sync.Mutex
	state  State
	queued bool
	timer  *time.Timer
}

// NewScheduler builds a Scheduler invoking rebuild after each settled
// burst. A non-positive debounce falls back to DefaultDebounce.
func NewScheduler(debounce time.Duration, rebuild func()) *Scheduler {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Scheduler{debounce: debounce, rebuild: rebuild}
}

// Notify records one change. Safe for concurrent use.
func (s *Scheduler) Notify() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateIdle:
		s.state = StatePending
		s.timer = time.AfterFunc(s.debounce, s.fire)
	case StatePending:
		s.timer.Reset(s.debounce)
	case StateRebuilding:
		s.queued = true
	}
}

// fire runs on the timer goroutine once the burst has settled. Rebuilds
// loop while notifications arrived mid-flight, so no change is lost and
// no more than one follow-up accumulates.
func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.state != StatePending {
		s.mu.Unlock()
		return
	}
	s.state = StateRebuilding
	s.mu.Unlock()

	for {
		s.rebuild()

		s.mu.Lock()
		if s.queued {
			s.queued = false
			s.mu.Unlock()
			continue
		}
		s.state = StateIdle
		s.mu.Unlock()
		return
	}
}

// State reports the current lifecycle position.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stop cancels a pending rebuild and drops any queued follow-up. A
// rebuild already in flight finishes.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.queued = false
	if s.state == StatePending {
		s.state = StateIdle
	}
}
