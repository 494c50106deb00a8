// pkg/scenario/guard_test.go

package scenario

import (
	"context"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wwantools/modemstress/pkg/probe"
)

func TestGuardExpectedTaintBitsIgnored(t *testing.T) {
	p := probe.NewFakeProber()
	g := NewGuard(p, DefaultMarkerSet())
	ctx := context.Background()

	snap := g.Snapshot(ctx)
	p.Taint = TaintStaging | TaintOutOfTree | TaintUnsigned | TaintLivepatch

	res := g.Check(ctx, snap)
	assert.Empty(t, res.Violations)
	assert.Equal(t, ExpectedTaintMask, res.AfterTaint)
	assert.True(t, res.AfterTaintOK)
}

func TestGuardAfterTaintReadFailure(t *testing.T) {
	p := probe.NewFakeProber()
	p.Taint = TaintOutOfTree
	g := NewGuard(p, DefaultMarkerSet())
	ctx := context.Background()

	snap := g.Snapshot(ctx)
	require.True(t, snap.TaintOK)
	p.TaintErr = cerr.New("read /proc/sys/kernel/tainted: input/output error")

	res := g.Check(ctx, snap)
	assert.Empty(t, res.Violations, "an unreadable final taint is not a violation")
	assert.False(t, res.AfterTaintOK)
	assert.Zero(t, res.AfterTaint)
}

func TestGuardUnexpectedTaintViolation(t *testing.T) {
	p := probe.NewFakeProber()
	g := NewGuard(p, DefaultMarkerSet())
	ctx := context.Background()

	snap := g.Snapshot(ctx)
	p.Taint = 1 << 7 // TAINT_DIE

	res := g.Check(ctx, snap)
	require.Len(t, res.Violations, 1)
	assert.Contains(t, res.Violations[0], "unexpected kernel taint change")
}

func TestGuardTaintCheckDisabledWhenSnapshotFails(t *testing.T) {
	p := probe.NewFakeProber()
	p.TaintErr = cerr.New("open /proc/sys/kernel/tainted: permission denied")
	g := NewGuard(p, DefaultMarkerSet())
	ctx := context.Background()

	snap := g.Snapshot(ctx)
	assert.False(t, snap.TaintOK)

	p.TaintErr = nil
	p.Taint = 1 << 7

	res := g.Check(ctx, snap)
	assert.Empty(t, res.Violations, "an unreadable baseline must not produce violations")
}

func TestGuardRotationIndeterminate(t *testing.T) {
	p := probe.NewFakeProber()
	p.AppendLog("a", "b", "c", "d")
	g := NewGuard(p, DefaultMarkerSet())
	ctx := context.Background()

	snap := g.Snapshot(ctx)
	p.RotateLog()

	res := g.Check(ctx, snap)
	assert.True(t, res.Indeterminate)
	assert.Empty(t, res.Violations)
	assert.Empty(t, res.FaultLines)
}

func TestGuardSevereMarkerInWindow(t *testing.T) {
	p := probe.NewFakeProber()
	p.AppendLog("boot line")
	g := NewGuard(p, DefaultMarkerSet())
	ctx := context.Background()

	snap := g.Snapshot(ctx)
	p.AppendLog(
		"wwan0: link becomes ready",
		"Oops: 0002 [#1] PREEMPT SMP",
	)

	res := g.Check(ctx, snap)
	require.Len(t, res.Violations, 1)
	assert.Contains(t, res.Violations[0], "Oops")
	require.Len(t, res.FaultLines, 1)
	assert.Len(t, res.InfoLines, 1, "driver chatter stays informational")
}

func TestGuardScansOnlyTheScenarioWindow(t *testing.T) {
	p := probe.NewFakeProber()
	// Pre-existing fault text must not count against the scenario.
	p.AppendLog("BUG: ancient unrelated crash from last week")
	g := NewGuard(p, DefaultMarkerSet())
	ctx := context.Background()

	snap := g.Snapshot(ctx)
	p.AppendLog("wwan0: renamed from eth1")

	res := g.Check(ctx, snap)
	assert.Empty(t, res.Violations)
	assert.Empty(t, res.FaultLines)
}

func TestGuardQuietWindow(t *testing.T) {
	p := probe.NewFakeProber()
	p.AppendLog("baseline")
	g := NewGuard(p, DefaultMarkerSet())
	ctx := context.Background()

	snap := g.Snapshot(ctx)

	res := g.Check(ctx, snap)
	assert.Empty(t, res.Violations)
	assert.False(t, res.Indeterminate)
}
