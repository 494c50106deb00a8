// pkg/scenario/guard.go

package scenario

import (
	"context"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/probe"
)

// Benign kernel taint bits, per include/linux/panic.h. Loading an out-of-tree
// or unsigned module sets these as a matter of course; any other bit changing
// during a scenario is a regression.
const (
	TaintStaging   uint64 = 1 << 10 // TAINT_CRAP: staging driver loaded
	TaintOutOfTree uint64 = 1 << 12 // TAINT_OOT_MODULE
	TaintUnsigned  uint64 = 1 << 13 // TAINT_UNSIGNED_MODULE
	TaintLivepatch uint64 = 1 << 15 // TAINT_LIVEPATCH

	ExpectedTaintMask = TaintStaging | TaintOutOfTree | TaintUnsigned | TaintLivepatch
)

// Guard takes pre-scenario snapshots of the kernel taint bitmask and the ring
// buffer, and checks both after the scenario for regressions.
type Guard struct {
	probe   probe.Prober
	markers *MarkerSet
}

// NewGuard builds a guard over the given prober and marker set.
func NewGuard(p probe.Prober, markers *MarkerSet) *Guard {
	return &Guard{probe: p, markers: markers}
}

// GuardSnapshot is the pre-scenario baseline. A snapshot whose source could
// not be read is marked unusable rather than failing the scenario up front.
type GuardSnapshot struct {
	Taint    uint64
	TaintOK  bool
	LogLines int
	LogOK    bool
}

// GuardResult is the post-scenario verdict.
type GuardResult struct {
	// Violations are hard failures: unexpected taint change or a severe
	// log marker inside the scenario's window.
	Violations []string
	// FaultLines are the window lines that matched severe markers, kept
	// for the postmortem tail.
	FaultLines []string
	// InfoLines are driver-chatter matches, recorded but never failing.
	InfoLines []string
	// Indeterminate is set when the ring buffer rotated mid-scenario and
	// the window cannot be diffed.
	Indeterminate bool
	// AfterTaint is the final taint value, for the run report. It is only
	// meaningful when AfterTaintOK is set.
	AfterTaint uint64
	// AfterTaintOK reports whether the post-scenario taint read succeeded.
	AfterTaintOK bool
}

// Snapshot records the baseline before fault injection.
func (g *Guard) Snapshot(ctx context.Context) GuardSnapshot {
	logger := otelzap.Ctx(ctx)
	snap := GuardSnapshot{}

	if taint, err := g.probe.KernelTaint(ctx); err == nil {
		snap.Taint = taint
		snap.TaintOK = true
	} else {
		logger.Warn("Could not snapshot kernel taint; taint check disabled for this scenario", zap.Error(err))
	}

	if count, err := g.probe.RingBufferLineCount(ctx); err == nil {
		snap.LogLines = count
		snap.LogOK = true
	} else {
		logger.Warn("Could not snapshot ring buffer; log check disabled for this scenario", zap.Error(err))
	}

	return snap
}

// Check compares current state against the baseline. Only the taint bits
// outside ExpectedTaintMask participate in the invariant.
func (g *Guard) Check(ctx context.Context, snap GuardSnapshot) GuardResult {
	logger := otelzap.Ctx(ctx)
	res := GuardResult{}

	after, err := g.probe.KernelTaint(ctx)
	if err != nil {
		logger.Warn("Could not read kernel taint after scenario", zap.Error(err))
	} else {
		res.AfterTaint = after
		res.AfterTaintOK = true
		if snap.TaintOK && after&^ExpectedTaintMask != snap.Taint&^ExpectedTaintMask {
			res.Violations = append(res.Violations, fmt.Sprintf(
				"unexpected kernel taint change: 0x%x -> 0x%x (expected mask 0x%x)",
				snap.Taint, after, ExpectedTaintMask))
		}
	}

	if !snap.LogOK {
		return res
	}

	count, err := g.probe.RingBufferLineCount(ctx)
	if err != nil {
		logger.Warn("Could not read ring buffer after scenario", zap.Error(err))
		return res
	}

	newLines := count - snap.LogLines
	if newLines < 0 {
		// The buffer was cleared or rotated under us; the window cannot
		// be diffed. Indeterminate, not a failure, and never a bogus
		// huge line count.
		logger.Warn("Ring buffer rotated during scenario; log window indeterminate",
			zap.Int("baseline", snap.LogLines),
			zap.Int("current", count))
		res.Indeterminate = true
		return res
	}
	if newLines == 0 {
		return res
	}

	window, err := g.probe.RingBufferTail(ctx, newLines)
	if err != nil {
		logger.Warn("Could not read ring buffer tail", zap.Error(err))
		return res
	}

	severe, info := g.markers.Scan(window)
	res.FaultLines = severe
	res.InfoLines = info
	for _, line := range severe {
		res.Violations = append(res.Violations, "kernel fault signature in log window: "+line)
	}
	if len(info) > 0 {
		logger.Info("Driver log lines in scenario window (informational)",
			zap.Int("count", len(info)))
	}

	return res
}
