// Package clock is the time source the pulse controller waits on.
//
// System uses the wall clock; Virtual advances instantly and records every
// wait, which makes runs deterministic in tests and dry runs.
package clock

import (
	"sync"
	"time"
)

// Clock tells time and blocks the caller for a duration.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// System is the wall clock.
type System struct{}

// Now returns the current wall-clock time.
func (System) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d.
func (System) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Virtual is a manual clock: Sleep advances it immediately instead of blocking.
type Virtual struct {
	// now is the current virtual time.
	now time.Time
	// sleeps records every Sleep call in order.
	sleeps []time.Duration
	// mu protects now and sleeps.
	mu sync.Mutex
}

// NewVirtual creates a virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

// Now returns the current virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.now
}

// Sleep advances the virtual time by d and records the wait.
func (v *Virtual) Sleep(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.sleeps = append(v.sleeps, d)

	if d > 0 {
		v.now = v.now.Add(d)
	}
}

// Sleeps returns a copy of all recorded waits.
func (v *Virtual) Sleeps() []time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()

	result := make([]time.Duration, len(v.sleeps))
	copy(result, v.sleeps)

	return result
}
