// pkg/scenario/suspend_test.go

package scenario

import (
	"context"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwantools/modemstress/pkg/probe"
	"github.com/wwantools/modemstress/pkg/report"
)

func TestSuspendSkipsWithoutRtcwake(t *testing.T) {
	r, _, a, rep := newTestRunner(t, nil)
	r.toolCheck = func(string) bool { return false }

	r.Suspend(context.Background())

	require.Equal(t, 1, countKind(rep, report.Skip))
	assert.Contains(t, findLabel(rep, report.Skip), "rtcwake not available")
	assert.Equal(t, 0, a.Suspends)
}

func TestSuspendPassWithHookFired(t *testing.T) {
	r, p, a, rep := newTestRunner(t, nil)
	a.OnSuspend = func() { p.HookCount++ }

	r.Suspend(context.Background())

	assert.Equal(t, []int{20}, a.Wakes)
	assert.Equal(t, 1, a.Suspends)
	require.Equal(t, 1, countKind(rep, report.Pass))
	assert.Equal(t, "modem detected after resume", findLabel(rep, report.Pass))
	assert.Equal(t, 0, countKind(rep, report.Warn))
}

func TestSuspendWarnsWhenHookDidNotFire(t *testing.T) {
	r, _, a, rep := newTestRunner(t, nil)
	// The device comes back but the hook counter never moves.

	r.Suspend(context.Background())

	assert.Equal(t, 1, a.Suspends)
	require.Equal(t, 1, countKind(rep, report.Warn))
	assert.Equal(t, "resume recovery hook did not fire", findLabel(rep, report.Warn))
	// A silent hook degrades the round, it does not fail it.
	assert.Equal(t, 1, countKind(rep, report.Pass))
	assert.Equal(t, 0, rep.Summarize().ExitCode)
}

func TestSuspendFailsWhenModemNotDetected(t *testing.T) {
	r, p, a, rep := newTestRunner(t, func(c *Config) {
		c.Rounds = 3
	})
	a.OnSuspend = func() { p.SetPresence(probe.Absent) }

	r.Suspend(context.Background())

	assert.Equal(t, 1, a.Suspends, "a failed resume must abort remaining rounds")
	require.Equal(t, 1, countKind(rep, report.Fail))
	assert.Equal(t, "modem not detected after resume", findLabel(rep, report.Fail))
}

func TestSuspendFailsWhenSuspendFails(t *testing.T) {
	r, _, a, rep := newTestRunner(t, nil)
	a.SuspendErr = cerr.New("Failed to suspend system via logind")

	r.Suspend(context.Background())

	require.Equal(t, 1, countKind(rep, report.Fail))
	assert.Contains(t, findLabel(rep, report.Fail), "system suspend failed")
}

func TestSuspendRunsEveryRound(t *testing.T) {
	r, p, a, _ := newTestRunner(t, func(c *Config) {
		c.Rounds = 3
	})
	a.OnSuspend = func() { p.HookCount++ }

	r.Suspend(context.Background())

	assert.Equal(t, 3, a.Suspends)
	assert.Len(t, a.Wakes, 3)
}
