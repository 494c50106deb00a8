// pkg/scenario/combo_test.go

package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwantools/modemstress/pkg/probe"
	"github.com/wwantools/modemstress/pkg/report"
)

func TestComboRestartMidRecovery(t *testing.T) {
	r, p, a, rep := newTestRunner(t, nil)
	a.OnFault = func() {
		p.SetPresence(probe.Registered, probe.Absent, probe.Absent, probe.Registered)
	}

	r.comboRestartMidRecovery(context.Background())

	assert.Equal(t, 1, a.Faults)
	assert.Equal(t, []string{"ModemManager.service"}, a.Restarts, "restart must land during the recovery window")
	require.Equal(t, 1, countKind(rep, report.Pass))
	assert.Equal(t, "recovered through overlapped restart", findLabel(rep, report.Pass))
}

func TestComboRestartMidRecoveryUnrecovered(t *testing.T) {
	r, p, a, rep := newTestRunner(t, func(c *Config) {
		c.RecoverTimeout = 2 * time.Second
	})
	a.OnFault = func() {
		p.SetPresence(probe.Absent)
	}

	r.comboRestartMidRecovery(context.Background())

	assert.Len(t, a.Restarts, 1)
	require.Equal(t, 1, countKind(rep, report.Fail))
	assert.Equal(t, "device unrecovered after overlapped restart", findLabel(rep, report.Fail))
}

func TestComboFastbootSuspend(t *testing.T) {
	r, p, a, rep := newTestRunner(t, nil)
	a.OnFault = func() {
		p.SetPresence(probe.Absent, probe.Registered)
	}
	a.OnSuspend = func() { p.HookCount++ }

	r.comboFastbootSuspend(context.Background())

	assert.Equal(t, 1, a.Faults)
	assert.Equal(t, 1, a.Suspends)
	assert.Equal(t, 2, countKind(rep, report.Pass), "both the trigger round and the suspend step should pass")
	assert.Equal(t, 0, countKind(rep, report.Fail))
}

func TestComboSuspendFastboot(t *testing.T) {
	r, p, a, rep := newTestRunner(t, nil)
	a.OnFault = func() {
		p.SetPresence(probe.Absent, probe.Registered)
	}
	a.OnSuspend = func() { p.HookCount++ }

	r.comboSuspendFastboot(context.Background())

	assert.Equal(t, 1, a.Suspends)
	assert.Equal(t, 1, a.Faults, "the fault must fire after resume")
	assert.Equal(t, 0, countKind(rep, report.Fail))
}

func TestComboSkipsSuspendCompositesWithoutRtcwake(t *testing.T) {
	r, p, a, rep := newTestRunner(t, nil)
	r.toolCheck = func(string) bool { return false }
	a.OnFault = func() {
		p.SetPresence(probe.Registered, probe.Absent, probe.Absent, probe.Registered)
	}

	r.Combo(context.Background())

	assert.Equal(t, 2, countKind(rep, report.Skip), "both suspend composites skip without rtcwake")
	assert.Equal(t, 1, a.Faults, "the restart composite still runs")
	assert.Equal(t, 0, a.Suspends)
}
