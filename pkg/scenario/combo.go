// pkg/scenario/combo.go

package scenario

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/report"
)

// Combo runs the three fixed composite scenarios back-to-back. Each
// composite applies the taint/log-window guard once across the whole
// composite, not per constituent step.
func (r *Runner) Combo(ctx context.Context) {
	r.comboFastbootSuspend(ctx)
	r.comboSuspendFastboot(ctx)
	r.comboRestartMidRecovery(ctx)
}

// comboFastbootSuspend triggers a fault and, as soon as the device recovers,
// suspends with minimal settle time to overlap the recovery and suspend
// windows.
func (r *Runner) comboFastbootSuspend(ctx context.Context) {
	const name = "combo-fastboot-suspend"
	logger := otelzap.Ctx(ctx)

	if !r.toolCheck("rtcwake") {
		r.rep.Record(report.Outcome{
			Scenario: name, Kind: report.Skip,
			Label: "rtcwake not available; cannot schedule wake timer",
		})
		return
	}

	snap := r.guard.Snapshot(ctx)

	res, err := r.injectAndRecover(ctx, name, 1, 0)
	if err != nil {
		r.rep.Record(report.Outcome{
			Scenario: name, Round: 1, Kind: report.Fail,
			Label: "fault injection failed: " + err.Error(),
		})
		r.finishGuard(ctx, name, snap)
		return
	}
	if res.recovered {
		// Straight into suspend while re-registration may still be settling.
		r.suspendStep(ctx, name, 2)
	} else {
		logger.Error("Skipping suspend step; device unrecovered from trigger")
	}

	r.finishGuard(ctx, name, snap)
}

// comboSuspendFastboot suspends first, then triggers a fault immediately
// after resume.
func (r *Runner) comboSuspendFastboot(ctx context.Context) {
	const name = "combo-suspend-fastboot"

	if !r.toolCheck("rtcwake") {
		r.rep.Record(report.Outcome{
			Scenario: name, Kind: report.Skip,
			Label: "rtcwake not available; cannot schedule wake timer",
		})
		return
	}

	snap := r.guard.Snapshot(ctx)

	if r.suspendStep(ctx, name, 1) {
		if _, err := r.injectAndRecover(ctx, name, 2, 0); err != nil {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: 2, Kind: report.Fail,
				Label: "fault injection failed: " + err.Error(),
			})
		}
	}

	r.finishGuard(ctx, name, snap)
}

// comboRestartMidRecovery triggers a fault and restarts the daemon while the
// device is still down, then requires recovery from the overlapped faults.
func (r *Runner) comboRestartMidRecovery(ctx context.Context) {
	const name = "combo-restart-midrecovery"
	logger := otelzap.Ctx(ctx)
	snap := r.guard.Snapshot(ctx)

	r.mark(name, 1, PhaseFaultInjected)
	if err := r.act.TriggerFault(ctx); err != nil {
		r.rep.Record(report.Outcome{
			Scenario: name, Round: 1, Kind: report.Fail,
			Label: "fault injection failed: " + err.Error(),
		})
		r.finishGuard(ctx, name, snap)
		return
	}

	r.mark(name, 1, PhaseAwaitingDown)
	if r.det.WaitWhile(ctx, "modem-present", r.present, r.cfg.DownTimeout) {
		r.mark(name, 1, PhaseDown)
	} else {
		r.mark(name, 1, PhaseDownSkipped)
		r.rep.Record(report.Outcome{
			Scenario: name, Round: 1, Kind: report.Warn,
			Label: "device never disappeared; fault may not have engaged",
		})
	}

	// Restart lands while the device is still recovering.
	logger.Info("Restarting daemon mid-recovery", zap.String("unit", r.cfg.Unit))
	if err := r.act.RestartUnit(ctx, r.cfg.Unit); err != nil {
		r.rep.Record(report.Outcome{
			Scenario: name, Round: 1, Kind: report.Fail,
			Label: "daemon restart failed mid-recovery: " + err.Error(),
		})
		r.finishGuard(ctx, name, snap)
		return
	}

	r.mark(name, 1, PhaseAwaitingUp)
	if r.det.WaitUntil(ctx, "modem-present", r.present, r.cfg.RecoverTimeout) {
		r.mark(name, 1, PhaseUpFull)
		r.rep.Record(report.Outcome{
			Scenario: name, Round: 1, Kind: report.Pass,
			Label: "recovered through overlapped restart",
		})
	} else {
		r.mark(name, 1, PhaseUnrecovered)
		r.rep.Record(report.Outcome{
			Scenario: name, Round: 1, Kind: report.Fail,
			Label: "device unrecovered after overlapped restart",
		})
	}

	r.finishGuard(ctx, name, snap)
}

// suspendStep is one suspend/resume cycle used inside composites. Returns
// true when the device came back.
func (r *Runner) suspendStep(ctx context.Context, name string, round int) bool {
	logger := otelzap.Ctx(ctx)

	hookBefore, hookErr := r.probe.HookFireCount(ctx)

	if err := r.act.ScheduleWake(ctx, r.cfg.WakeSeconds); err != nil {
		r.rep.Record(report.Outcome{
			Scenario: name, Round: round, Kind: report.Skip,
			Label: "could not schedule wake timer: " + err.Error(),
		})
		return false
	}
	if err := r.act.Suspend(ctx); err != nil {
		r.rep.Record(report.Outcome{
			Scenario: name, Round: round, Kind: report.Fail,
			Label: "system suspend failed: " + err.Error(),
		})
		return false
	}

	r.sleep(r.cfg.SuspendSettle)

	if !r.det.WaitUntil(ctx, "modem-present", r.present, r.cfg.RecoverTimeout) {
		r.rep.Record(report.Outcome{
			Scenario: name, Round: round, Kind: report.Fail,
			Label: "modem not detected after resume",
		})
		return false
	}

	if hookErr == nil {
		if hookAfter, err := r.probe.HookFireCount(ctx); err == nil && hookAfter <= hookBefore {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Warn,
				Label: "resume recovery hook did not fire",
			})
		}
	}

	r.rep.Record(report.Outcome{
		Scenario: name, Round: round, Kind: report.Pass,
		Label: "modem detected after resume",
	})

	logger.Info("Suspend step complete", zap.String("scenario", name), zap.Int("round", round))
	return true
}
