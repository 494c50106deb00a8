// pkg/scenario/suspend.go

package scenario

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/report"
)

// Suspend schedules an RTC wake, suspends the whole system, and on resume
// checks both device recovery and the resume-triggered recovery hook. Hook
// detection counts hook log entries rather than comparing timestamps: wall
// clocks are unreliable across suspend.
func (r *Runner) Suspend(ctx context.Context) {
	const name = "suspend"
	logger := otelzap.Ctx(ctx)

	if !r.toolCheck("rtcwake") {
		r.rep.Record(report.Outcome{
			Scenario: name, Kind: report.Skip,
			Label: "rtcwake not available; cannot schedule wake timer",
		})
		return
	}

	snap := r.guard.Snapshot(ctx)

	for round := 1; round <= r.cfg.Rounds; round++ {
		logger.Info("Starting suspend round", zap.Int("round", round), zap.Int("total", r.cfg.Rounds))

		hookBefore, hookErr := r.probe.HookFireCount(ctx)
		if hookErr != nil {
			logger.Warn("Could not count hook entries before suspend", zap.Error(hookErr))
		}

		if err := r.act.ScheduleWake(ctx, r.cfg.WakeSeconds); err != nil {
			// Without a wake timer the host would sleep indefinitely.
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Skip,
				Label: "could not schedule wake timer: " + err.Error(),
			})
			break
		}

		if err := r.act.Suspend(ctx); err != nil {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Fail,
				Label: "system suspend failed: " + err.Error(),
			})
			break
		}

		// Back from resume; give re-enumeration a moment before polling.
		r.sleep(r.cfg.SuspendSettle)

		if !r.det.WaitUntil(ctx, "modem-present", r.present, r.cfg.RecoverTimeout) {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Fail,
				Label: "modem not detected after resume",
			})
			break
		}

		if hookErr == nil {
			hookAfter, err := r.probe.HookFireCount(ctx)
			if err != nil {
				logger.Warn("Could not count hook entries after resume", zap.Error(err))
			} else if hookAfter <= hookBefore {
				r.rep.Record(report.Outcome{
					Scenario: name, Round: round, Kind: report.Warn,
					Label: "resume recovery hook did not fire",
				})
			} else {
				logger.Info("Resume recovery hook fired",
					zap.Int("before", hookBefore),
					zap.Int("after", hookAfter))
			}
		}

		r.rep.Record(report.Outcome{
			Scenario: name, Round: round, Kind: report.Pass,
			Label: "modem detected after resume",
		})
	}

	r.finishGuard(ctx, name, snap)
}
