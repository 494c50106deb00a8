/* cmd/run.go */

package cmd

import (
	"fmt"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/actuate"
	"github.com/wwantools/modemstress/pkg/config"
	"github.com/wwantools/modemstress/pkg/detect"
	"github.com/wwantools/modemstress/pkg/logger"
	"github.com/wwantools/modemstress/pkg/ms_cli"
	"github.com/wwantools/modemstress/pkg/ms_err"
	"github.com/wwantools/modemstress/pkg/ms_io"
	"github.com/wwantools/modemstress/pkg/preflight"
	"github.com/wwantools/modemstress/pkg/privilege_check"
	"github.com/wwantools/modemstress/pkg/probe"
	"github.com/wwantools/modemstress/pkg/report"
	"github.com/wwantools/modemstress/pkg/scenario"
	"github.com/wwantools/modemstress/pkg/sysinfo"
)

// RunCmd executes one named scenario, the preflight checks alone, or the
// whole sweep.
var RunCmd = &cobra.Command{
	Use:   "run <scenario>...",
	Short: "Run one or more stress scenarios against the modem",
	Long: fmt.Sprintf(`Run the named scenarios in order, "preflight" to validate the host
without injecting any fault, or "all" for the full sweep.

Scenarios: %s`, strings.Join(scenario.Names(), ", ")),
	Args: cobra.MinimumNArgs(1),
	RunE: ms_cli.Wrap(func(rc *ms_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return runHarness(rc, args)
	}),
}

func init() {
	config.BindFlags(RunCmd.Flags())
}

func runHarness(rc *ms_io.RuntimeContext, targets []string) error {
	if err := privilege_check.RequireRoot(rc.Ctx); err != nil {
		return err
	}

	names := make([]string, 0, len(targets))
	preflightOnly := false
	for _, target := range targets {
		switch {
		case target == "preflight":
			preflightOnly = len(targets) == 1
		case target == "all":
			names = append(names, scenario.Names()...)
		case knownScenario(target):
			names = append(names, target)
		default:
			return ms_err.NewExpectedErrorf(
				"unknown scenario %q; choose one of: preflight, all, %s",
				target, strings.Join(scenario.Names(), ", "))
		}
	}

	settings, err := config.Load(rc.Log)
	if err != nil {
		return err
	}

	host := sysinfo.Collect()
	rc.Log.Info("Host under test",
		zap.String("hostname", host.Hostname),
		zap.String("kernel", host.KernelRelease),
		zap.String("machine", host.Machine),
		zap.String("unit", settings.Unit),
		zap.String("control_path", settings.ControlPath),
		zap.Int("rounds", settings.Rounds),
		zap.Duration("recover_timeout", settings.RecoverTimeout),
		zap.String("log_file", logger.LogFilePath()))

	prober, err := probe.NewSystemProber(probe.Options{
		DeviceGlobs:   settings.DeviceGlobs,
		HookPattern:   settings.HookPattern,
		PingTarget:    settings.PingTarget,
		PingInterface: settings.PingInterface,
	})
	if err != nil {
		return err
	}
	det := detect.New(settings.PollInterval)

	if _, err := preflight.RunChecks(rc.Ctx, preflight.HarnessChecks(prober, det, settings)); err != nil {
		return ms_err.NewExpectedError(cerr.Wrap(err, "host is not ready"))
	}
	if preflightOnly || len(names) == 0 {
		rc.Log.Info("Preflight complete; host is ready for stress runs")
		return nil
	}

	overrides, err := config.LoadMarkerOverrides(settings.MarkersFile)
	if err != nil {
		return err
	}
	markers, err := scenario.BuildMarkerSet(overrides)
	if err != nil {
		return err
	}

	act := &actuate.SystemActuator{
		ControlPath: settings.ControlPath,
		FaultToken:  settings.FaultToken,
	}
	rep := report.New(rc.Log)
	runner := scenario.New(prober, act, det, rep, markers, scenario.FromSettings(settings))

	for _, name := range names {
		if err := runner.Run(rc.Ctx, name); err != nil {
			return err
		}
	}

	summary := rep.Summarize()
	if summary.ExitCode != 0 {
		return ms_err.NewExpectedErrorf("%d scenario failure(s); see %s",
			summary.Fails, logger.LogFilePath())
	}
	return nil
}

func knownScenario(name string) bool {
	for _, n := range scenario.Names() {
		if n == name {
			return true
		}
	}
	return false
}
