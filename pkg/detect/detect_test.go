package detect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWaitUntilImmediateSuccess(t *testing.T) {
	clock := NewFakeClock()
	d := NewWithClock(clock, time.Second)

	ok := d.WaitUntil(context.Background(), "always", func(context.Context) bool {
		return true
	}, 10*time.Second)

	assert.True(t, ok)
	assert.Empty(t, clock.Sleeps(), "no sleep needed when condition holds immediately")
}

func TestWaitUntilEventualSuccess(t *testing.T) {
	clock := NewFakeClock()
	d := NewWithClock(clock, time.Second)

	calls := 0
	ok := d.WaitUntil(context.Background(), "third-time", func(context.Context) bool {
		calls++
		return calls >= 3
	}, 10*time.Second)

	assert.True(t, ok)
	assert.Equal(t, 3, calls)
	assert.Len(t, clock.Sleeps(), 2)
	for _, s := range clock.Sleeps() {
		assert.Equal(t, time.Second, s, "poll interval must be fixed, never busy-spin")
	}
}

func TestWaitUntilTimeout(t *testing.T) {
	clock := NewFakeClock()
	d := NewWithClock(clock, time.Second)

	calls := 0
	ok := d.WaitUntil(context.Background(), "never", func(context.Context) bool {
		calls++
		return false
	}, 5*time.Second)

	assert.False(t, ok)
	// 5s timeout at 1s interval: checked at t=0..4, slept 4 times.
	assert.Equal(t, 5, calls)
	assert.Len(t, clock.Sleeps(), 4)
}

func TestWaitWhileConditionClears(t *testing.T) {
	clock := NewFakeClock()
	d := NewWithClock(clock, time.Second)

	present := true
	clock.OnTick = func(now time.Time) {
		present = false // device disappears after the first poll
	}

	ok := d.WaitWhile(context.Background(), "present", func(context.Context) bool {
		return present
	}, 15*time.Second)

	assert.True(t, ok, "WaitWhile succeeds once the condition clears")
}

func TestWaitWhileTimeout(t *testing.T) {
	clock := NewFakeClock()
	d := NewWithClock(clock, time.Second)

	ok := d.WaitWhile(context.Background(), "stuck", func(context.Context) bool {
		return true
	}, 3*time.Second)

	assert.False(t, ok, "WaitWhile times out when the condition never clears")
}

func TestWaitUntilRespectsContextCancellation(t *testing.T) {
	clock := NewFakeClock()
	d := NewWithClock(clock, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok := d.WaitUntil(ctx, "cancelled", func(context.Context) bool {
		return true
	}, time.Minute)

	assert.False(t, ok)
}

func TestNewWithClockDefaultsInterval(t *testing.T) {
	d := NewWithClock(NewFakeClock(), 0)
	assert.Equal(t, DefaultPollInterval, d.interval)
}
