// pkg/scenario/runner.go

package scenario

import (
	"context"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/actuate"
	"github.com/wwantools/modemstress/pkg/detect"
	"github.com/wwantools/modemstress/pkg/execute"
	"github.com/wwantools/modemstress/pkg/probe"
	"github.com/wwantools/modemstress/pkg/report"
)

// Descriptor names a runnable scenario for the CLI catalog.
type Descriptor struct {
	Name        string
	Description string
	run         func(r *Runner, ctx context.Context)
}

// Catalog lists every selectable scenario in execution order for "all".
var Catalog = []Descriptor{
	{"fastboot", "force a modem reboot via the control surface and await recovery", (*Runner).Fastboot},
	{"rapid-fastboot", "fastboot with zero settle delay to maximize race exposure", (*Runner).RapidFastboot},
	{"fastboot-load", "fastboot under background traffic load", (*Runner).FastbootLoad},
	{"suspend", "system suspend/resume with RTC wake and recovery-hook check", (*Runner).Suspend},
	{"conn-cycle", "cycle the data connection down and up with bounded retries", (*Runner).ConnCycle},
	{"mm-restart", "restart the modem daemon repeatedly, requiring re-detection", (*Runner).MMRestart},
	{"combo", "composite scenarios probing overlapping fault windows", (*Runner).Combo},
}

// Names returns the catalog scenario names in order.
func Names() []string {
	names := make([]string, len(Catalog))
	for i, d := range Catalog {
		names[i] = d.Name
	}
	return names
}

// Runner executes scenarios sequentially: one scenario, one round, one probe
// at a time. All outcomes land in the shared aggregator.
type Runner struct {
	probe   probe.Prober
	act     actuate.Actuator
	det     *detect.Detector
	rep     *report.Aggregator
	guard   *Guard
	cfg     Config
	markers *MarkerSet

	transitions []Transition

	// Injection points for tests; defaults exercise the real host.
	sleep     func(d time.Duration)
	toolCheck func(name string) bool
	newLoad   func() loadGenerator
}

// New wires a runner over the given probe/actuate/detect/report collaborators.
func New(p probe.Prober, a actuate.Actuator, det *detect.Detector, rep *report.Aggregator, markers *MarkerSet, cfg Config) *Runner {
	r := &Runner{
		probe:     p,
		act:       a,
		det:       det,
		rep:       rep,
		guard:     NewGuard(p, markers),
		cfg:       cfg,
		markers:   markers,
		sleep:     time.Sleep,
		toolCheck: execute.Available,
	}
	r.newLoad = func() loadGenerator {
		return NewLoadManager(cfg.LoadCommand, cfg.LoadWorkers)
	}
	return r
}

// Run executes one named scenario from the catalog.
func (r *Runner) Run(ctx context.Context, name string) error {
	for _, d := range Catalog {
		if d.Name == name {
			otelzap.Ctx(ctx).Info("=== Scenario start ===", zap.String("scenario", name))
			d.run(r, ctx)
			otelzap.Ctx(ctx).Info("=== Scenario end ===", zap.String("scenario", name))
			return nil
		}
	}
	return cerr.Newf("unknown scenario %q", name)
}

// Transitions returns the recorded phase transitions, in order.
func (r *Runner) Transitions() []Transition {
	return r.transitions
}

func (r *Runner) mark(scenario string, round int, phase Phase) {
	r.transitions = append(r.transitions, Transition{Scenario: scenario, Round: round, Phase: phase})
}

// present is the recovery condition: the modem is at least detected.
func (r *Runner) present(ctx context.Context) bool {
	return probe.Presence(ctx, r.probe).AtLeast(probe.Detected)
}

// recoverResult captures what the inject/await sequence observed.
type recoverResult struct {
	wentDown  bool
	recovered bool
	full      bool
}

// injectAndRecover runs the core per-round sequence: trigger the fault, wait
// for the device to disappear, wait for it to return, settle, classify. The
// down-wait always precedes the up-wait: recovery is only meaningful after
// the fault demonstrably took effect.
func (r *Runner) injectAndRecover(ctx context.Context, name string, round int, settle time.Duration) (recoverResult, error) {
	logger := otelzap.Ctx(ctx)
	res := recoverResult{}

	r.mark(name, round, PhaseFaultInjected)
	if err := r.act.TriggerFault(ctx); err != nil {
		return res, cerr.Wrap(err, "fault injection")
	}

	r.mark(name, round, PhaseAwaitingDown)
	res.wentDown = r.det.WaitWhile(ctx, "modem-present", r.present, r.cfg.DownTimeout)
	if res.wentDown {
		r.mark(name, round, PhaseDown)
		logger.Info("Device went down after fault", zap.Int("round", round))
	} else {
		r.mark(name, round, PhaseDownSkipped)
		r.rep.Record(report.Outcome{
			Scenario: name, Round: round, Kind: report.Warn,
			Label: "device never disappeared; fault may not have engaged",
		})
	}

	r.mark(name, round, PhaseAwaitingUp)
	res.recovered = r.det.WaitUntil(ctx, "modem-present", r.present, r.cfg.RecoverTimeout)
	if !res.recovered {
		r.mark(name, round, PhaseUnrecovered)
		r.rep.Record(report.Outcome{
			Scenario: name, Round: round, Kind: report.Fail,
			Label: "device unrecovered within deadline",
		})
		return res, nil
	}

	if settle > 0 {
		r.sleep(settle)
	}

	presence := probe.Presence(ctx, r.probe)
	files, err := r.probe.DeviceFilesPresent(ctx)
	if err != nil {
		logger.Warn("Device file check failed", zap.Error(err))
		files = false
	}

	if presence.AtLeast(probe.Registered) && files {
		res.full = true
		r.mark(name, round, PhaseUpFull)
		r.rep.Record(report.Outcome{
			Scenario: name, Round: round, Kind: report.Pass,
			Label: "fully recovered",
		})
	} else {
		r.mark(name, round, PhaseUpPartial)
		r.rep.Record(report.Outcome{
			Scenario: name, Round: round, Kind: report.Pass,
			Label: "partial recovery",
		})
	}
	return res, nil
}

// finishGuard applies the taint/log-window check and records violations.
func (r *Runner) finishGuard(ctx context.Context, name string, snap GuardSnapshot) {
	res := r.guard.Check(ctx, snap)

	for _, v := range res.Violations {
		r.rep.Record(report.Outcome{
			Scenario: name, Kind: report.Fail, Label: v,
		})
	}
	if len(res.FaultLines) > 0 {
		r.rep.RecordFaultLines(res.FaultLines)
	}
	if res.Indeterminate {
		otelzap.Ctx(ctx).Warn("Log window indeterminate; ring buffer rotated",
			zap.String("scenario", name))
	}
	// A failed taint read must not clobber the last good value with zero.
	if res.AfterTaintOK {
		r.rep.SetFinalTaint(res.AfterTaint)
	}
}
