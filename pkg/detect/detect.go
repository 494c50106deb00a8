// pkg/detect/detect.go

// Package detect provides the bounded polling primitives that sequence fault
// injection and recovery observation. Fixed sleeps alone are race-prone; every
// scenario instead waits on an observed condition with a deadline.
package detect

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// DefaultPollInterval is the pause between condition checks.
const DefaultPollInterval = time.Second

// Clock abstracts time so tests can run polling loops instantly.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Condition is a predicate over external state. It must be cheap and
// side-effect free; it is evaluated once per poll interval.
type Condition func(ctx context.Context) bool

// Detector runs bounded waits at a fixed poll interval.
type Detector struct {
	clock    Clock
	interval time.Duration
}

// New returns a detector using the wall clock and the given poll interval.
func New(interval time.Duration) *Detector {
	return NewWithClock(realClock{}, interval)
}

// NewWithClock returns a detector with an injected clock, for tests.
func NewWithClock(clock Clock, interval time.Duration) *Detector {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Detector{clock: clock, interval: interval}
}

// WaitUntil polls cond until it returns true or the timeout elapses. Returns
// true when the condition was observed within the deadline. The condition is
// checked immediately, then once per interval; the loop never busy-spins.
func (d *Detector) WaitUntil(ctx context.Context, name string, cond Condition, timeout time.Duration) bool {
	logger := otelzap.Ctx(ctx)
	deadline := d.clock.Now().Add(timeout)

	for {
		if ctx.Err() != nil {
			logger.Warn("Wait aborted by context", zap.String("condition", name))
			return false
		}
		if cond(ctx) {
			return true
		}
		if !d.clock.Now().Add(d.interval).Before(deadline) {
			logger.Debug("Wait timed out",
				zap.String("condition", name),
				zap.Duration("timeout", timeout))
			return false
		}
		d.clock.Sleep(d.interval)
	}
}

// WaitWhile polls until cond turns false or the timeout elapses. Returns true
// when the condition was observed to clear within the deadline. It is the
// dual of WaitUntil, used to confirm a fault actually took effect before
// recovery is awaited.
func (d *Detector) WaitWhile(ctx context.Context, name string, cond Condition, timeout time.Duration) bool {
	return d.WaitUntil(ctx, name, func(ctx context.Context) bool {
		return !cond(ctx)
	}, timeout)
}
