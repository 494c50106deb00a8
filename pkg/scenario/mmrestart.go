// pkg/scenario/mmrestart.go

package scenario

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/report"
)

// MMRestart restarts the modem daemon repeatedly, requiring the device to be
// re-detected after every restart. Missing auxiliary device files are a Warn,
// not a Fail: the daemon may legitimately take longer to recreate them.
func (r *Runner) MMRestart(ctx context.Context) {
	const name = "mm-restart"
	logger := otelzap.Ctx(ctx)
	snap := r.guard.Snapshot(ctx)

	for round := 1; round <= r.cfg.RestartCount; round++ {
		logger.Info("Restarting modem daemon",
			zap.String("unit", r.cfg.Unit),
			zap.Int("round", round),
			zap.Int("total", r.cfg.RestartCount))

		if err := r.act.RestartUnit(ctx, r.cfg.Unit); err != nil {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Fail,
				Label: "daemon restart failed: " + err.Error(),
			})
			break
		}

		if !r.det.WaitUntil(ctx, "modem-present", r.present, r.cfg.RecoverTimeout) {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Fail,
				Label: "modem not re-detected after daemon restart",
			})
			break
		}

		files, err := r.probe.DeviceFilesPresent(ctx)
		if err != nil {
			logger.Warn("Device file check failed", zap.Error(err))
			files = false
		}
		if !files {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Warn,
				Label: "auxiliary device files missing after restart",
			})
		} else {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Pass,
				Label: "modem re-detected after daemon restart",
			})
		}
	}

	r.finishGuard(ctx, name, snap)
}
