// pkg/scenario/conncycle.go

package scenario

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/probe"
	"github.com/wwantools/modemstress/pkg/report"
)

// connUpAttempts caps connection bring-up retries. Classification happens
// after exactly this many failures, never more.
const connUpAttempts = 3

// ConnCycle brings the data connection down and back up each round, with
// bounded linear-backoff retries, then verifies connected state and
// best-effort data flow.
func (r *Runner) ConnCycle(ctx context.Context) {
	const name = "conn-cycle"
	logger := otelzap.Ctx(ctx)

	if r.cfg.Connection == "" {
		r.rep.Record(report.Outcome{
			Scenario: name, Kind: report.Skip,
			Label: "no data connection configured",
		})
		return
	}
	if !r.toolCheck("nmcli") {
		r.rep.Record(report.Outcome{
			Scenario: name, Kind: report.Skip,
			Label: "nmcli not available",
		})
		return
	}

	snap := r.guard.Snapshot(ctx)

	for round := 1; round <= r.cfg.Rounds; round++ {
		logger.Info("Starting connection cycle", zap.Int("round", round), zap.Int("total", r.cfg.Rounds))

		if err := r.act.ConnectionDown(ctx, r.cfg.Connection); err != nil {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Fail,
				Label: "could not bring connection down: " + err.Error(),
			})
			break
		}

		// The modem must be back to registered before bring-up can work.
		if !r.det.WaitUntil(ctx, "modem-registered", func(ctx context.Context) bool {
			return probe.Presence(ctx, r.probe).AtLeast(probe.Registered)
		}, r.cfg.ConnectTimeout) {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Fail,
				Label: "modem never returned to registered after disconnect",
			})
			break
		}

		if !r.bringUp(ctx, round) {
			break
		}

		if !r.det.WaitUntil(ctx, "modem-connected", func(ctx context.Context) bool {
			return probe.Presence(ctx, r.probe).AtLeast(probe.Connected)
		}, r.cfg.ConnectTimeout) {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Fail,
				Label: "connection reported up but modem never reached connected state",
			})
			break
		}

		flow, err := r.probe.DataFlow(ctx)
		if err != nil {
			logger.Warn("Data flow check errored", zap.Error(err))
			flow = false
		}
		if flow {
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Pass,
				Label: "connection re-established with data flow",
			})
		} else {
			// Reconnect succeeded; only the traffic check came up dry.
			r.rep.Record(report.Outcome{
				Scenario: name, Round: round, Kind: report.Warn,
				Label: "connected but no data flow observed",
			})
		}
	}

	r.finishGuard(ctx, name, snap)
}

// bringUp retries nmcli connection up with linear backoff: attempt n sleeps
// n seconds before the next try. Records a Fail and returns false after the
// final attempt.
func (r *Runner) bringUp(ctx context.Context, round int) bool {
	logger := otelzap.Ctx(ctx)

	for attempt := 1; attempt <= connUpAttempts; attempt++ {
		err := r.act.ConnectionUp(ctx, r.cfg.Connection)
		if err == nil {
			return true
		}
		logger.Warn("Connection bring-up attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < connUpAttempts {
			r.sleep(time.Duration(attempt) * time.Second)
		}
	}

	r.rep.Record(report.Outcome{
		Scenario: "conn-cycle", Round: round, Kind: report.Fail,
		Label: "connection failed to come up after 3 attempts",
	})
	return false
}
