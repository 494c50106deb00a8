// pkg/detect/clock.go

package detect

import "time"

// FakeClock advances instantly on Sleep, letting tests run polling loops
// without real delays. Not safe for concurrent use; the harness is
// single-threaded by design.
type FakeClock struct {
	now    time.Time
	slept  []time.Duration
	OnTick func(now time.Time)
}

// NewFakeClock starts a fake clock at a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

func (c *FakeClock) Sleep(d time.Duration) {
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	if c.OnTick != nil {
		c.OnTick(c.now)
	}
}

// Sleeps returns the durations slept, in order.
func (c *FakeClock) Sleeps() []time.Duration {
	return c.slept
}

// Advance moves the clock forward without recording a sleep.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
