// Package progress tracks whether a translation run is in flight, as
// process-wide observable state the UI renders from.
package progress

import (
	"sync"
	"time"
)

// DefaultResetDelay is how long the completed state stays visible before the
// tracker returns to idle, long enough for a terminal animation.
const DefaultResetDelay = 500 * time.Millisecond

// State is a tracker snapshot. Total == 0 means indeterminate (single-item)
// mode; otherwise 0 <= Current <= Total holds.
type State struct {
	Active  bool `json:"active"`
	Current int  `json:"current"`
	Total   int  `json:"total"`
}

// Tracker holds the state and its observers. Every mutation synchronously
// notifies a snapshot of the current observers, in no particular order.
type Tracker struct {
	resetDelay time.Duration

	mu     sync.Mutex
	state  State
	ended  bool
	gen    int
	nextID int
	subs   map[int]func(State)
}

// New creates an idle tracker. resetDelay is how long End keeps the
// completed state before resetting; pass DefaultResetDelay outside tests.
func New(resetDelay time.Duration) *Tracker {
	return &Tracker{resetDelay: resetDelay, subs: make(map[int]func(State))}
}

// Subscribe registers fn for every state change and returns its
// unsubscribe. Unsubscribing while a notification is running is safe and
// does not affect the observers still due in that round.
func (t *Tracker) Subscribe(fn func(State)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

// State returns the current snapshot.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Start resets and activates for a new run. total <= 0 selects indeterminate
// mode. A reset still pending from an earlier run is superseded.
func (t *Tracker) Start(total int) {
	t.mutate(func(s *State) bool {
		t.gen++
		t.ended = false
		*s = State{Active: true, Total: max(0, total)}
		return true
	})
}

// Set moves to an explicit position, clamped to the run's bounds. Ignored
// while idle.
func (t *Tracker) Set(current int) {
	t.mutate(func(s *State) bool {
		if !s.Active {
			return false
		}
		s.Current = clamp(current, s.Total)
		return true
	})
}

// Advance increments the position by one. Ignored while idle.
func (t *Tracker) Advance() {
	t.mutate(func(s *State) bool {
		if !s.Active {
			return false
		}
		s.Current = clamp(s.Current+1, s.Total)
		return true
	})
}

// End marks the run complete, then resets to idle after the delay. Calling
// it again before the next Start is a no-op.
func (t *Tracker) End() {
	t.mu.Lock()
	if !t.state.Active || t.ended {
		t.mu.Unlock()
		return
	}
	t.ended = true
	if t.state.Total > 0 {
		t.state.Current = t.state.Total
	}
	gen := t.gen
	state := t.state
	fns := t.observersLocked()
	t.mu.Unlock()
	for _, fn := range fns {
		fn(state)
	}

	time.AfterFunc(t.resetDelay, func() {
		t.mutate(func(s *State) bool {
			if t.gen != gen {
				return false
			}
			*s = State{}
			return true
		})
	})
}

// mutate applies fn under the lock; when fn reports a change, observers are
// notified outside the lock with the resulting snapshot.
func (t *Tracker) mutate(fn func(*State) bool) {
	t.mu.Lock()
	if !fn(&t.state) {
		t.mu.Unlock()
		return
	}
	state := t.state
	fns := t.observersLocked()
	t.mu.Unlock()
	for _, f := range fns {
		f(state)
	}
}

func (t *Tracker) observersLocked() []func(State) {
	fns := make([]func(State), 0, len(t.subs))
	for _, fn := range t.subs {
		fns = append(fns, fn)
	}
	return fns
}

// clamp bounds current to [0, total] in determinate mode.
func clamp(current, total int) int {
	current = max(0, current)
	if total > 0 {
		current = min(current, total)
	}
	return current
}
