// pkg/scenario/fastboot.go

package scenario

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/report"
)

// Fastboot forces a modem reboot each round and awaits full recovery.
func (r *Runner) Fastboot(ctx context.Context) {
	r.fastbootRounds(ctx, "fastboot", r.cfg.SettleDelay)
}

// RapidFastboot runs the trigger sequence with zero settle delay between
// rounds, deliberately maximizing race exposure.
func (r *Runner) RapidFastboot(ctx context.Context) {
	r.fastbootRounds(ctx, "rapid-fastboot", 0)
}

// FastbootLoad wraps the trigger sequence in background traffic generators.
// The generators are torn down unconditionally, whatever the rounds did.
func (r *Runner) FastbootLoad(ctx context.Context) {
	logger := otelzap.Ctx(ctx)
	load := r.newLoad()

	if err := load.Start(ctx); err != nil {
		logger.Warn("Could not start load generators; running unloaded", zap.Error(err))
		r.rep.Record(report.Outcome{
			Scenario: "fastboot-load", Kind: report.Warn,
			Label: "load generators failed to start: " + err.Error(),
		})
	}
	defer load.Stop(ctx)

	r.fastbootRounds(ctx, "fastboot-load", r.cfg.SettleDelay)
}

// fastbootRounds is the shared round loop. An unrecovered device aborts the
// remaining rounds: repeating against a dead device proves nothing.
func (r *Runner) fastbootRounds(ctx context.Context, name string, settle time.Duration) {
	logger := otelzap.Ctx(ctx)
	snap := r.guard.Snapshot(ctx)

	for round := 1; round <= r.cfg.Rounds; round++ {
		logger.Info("Starting round",
			zap.String("scenario", name),
			zap.Int("round", round),
			zap.Int("total", r.cfg.Rounds))

		res, err := r.injectAndRecover(ctx, name, round, settle)
		if err != nil {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Fail,
				Label: "fault injection failed: " + err.Error(),
			})
			break
		}
		if !res.recovered {
			logger.Error("Device unrecovered; aborting remaining rounds",
				zap.String("scenario", name),
				zap.Int("round", round))
			break
		}
	}

	r.finishGuard(ctx, name, snap)
}
