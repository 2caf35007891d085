package panel

import (
	"sync"
	"time"
)

// Animator schedules the completion signal of panel animations. At most one
// timer runs per panel id; scheduling a newer epoch replaces the older timer.
type Animator struct {
	duration time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer
	epochs map[string]uint64
	closed bool
}

func NewAnimator(duration time.Duration) *Animator {
	return &Animator{
		duration: duration,
		timers:   make(map[string]*time.Timer),
		epochs:   make(map[string]uint64),
	}
}

// Duration returns the configured animation length.
func (a *Animator) Duration() time.Duration {
	return a.duration
}

// Schedule runs done once the animation identified by id and epoch has
// finished. Scheduling the same pair twice is a no-op and returns false.
// With a non-positive duration done runs synchronously.
func (a *Animator) Schedule(id string, epoch uint64, done func()) bool {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return false
	}
	if last, ok := a.epochs[id]; ok && last >= epoch {
		a.mu.Unlock()
		return false
	}
	a.epochs[id] = epoch
	if t, ok := a.timers[id]; ok {
		t.Stop()
		delete(a.timers, id)
	}

	if a.duration <= 0 {
		a.mu.Unlock()
		done()
		return true
	}

	var t *time.Timer
	t = time.AfterFunc(a.duration, func() {
		a.mu.Lock()
		if a.timers[id] == t {
			delete(a.timers, id)
		}
		a.mu.Unlock()
		done()
	})
	a.timers[id] = t
	a.mu.Unlock()
	return true
}

// Pending returns the number of animations still waiting to complete.
func (a *Animator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.timers)
}

// Stop cancels every pending timer. Completion callbacks that already started
// are not interrupted.
func (a *Animator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	for id, t := range a.timers {
		t.Stop()
		delete(a.timers, id)
	}
}
