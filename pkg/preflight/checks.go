// Package preflight validates the host before any fault is injected: the
// control surface, the host tools the scenarios shell out to, and the modem
// itself must all be reachable, or the run would fail for reasons that have
// nothing to do with the driver under test.
package preflight

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/config"
	"github.com/wwantools/modemstress/pkg/detect"
	"github.com/wwantools/modemstress/pkg/probe"
)

// Check represents a single preflight check
type Check struct {
	Name        string
	Description string
	Check       func(context.Context) error
	Required    bool
}

// CheckResult contains the result of running preflight checks
type CheckResult struct {
	Name    string
	Passed  bool
	Error   error
	Warning string
}

// RunChecks executes all preflight checks and returns results. A failed
// required check makes the whole run a non-starter; failed optional checks
// only narrow which scenarios can run.
func RunChecks(ctx context.Context, checks []Check) ([]CheckResult, error) {
	logger := otelzap.Ctx(ctx)

	logger.Info("=== Running preflight checks ===",
		zap.Int("total_checks", len(checks)))

	results := make([]CheckResult, 0, len(checks))
	criticalFailures := 0

	for _, check := range checks {
		logger.Debug("Running check", zap.String("check", check.Name))

		result := CheckResult{
			Name:   check.Name,
			Passed: false,
		}

		checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := check.Check(checkCtx)
		cancel()

		if err != nil {
			result.Error = err
			if check.Required {
				logger.Error("✗ Check failed (REQUIRED)",
					zap.String("check", check.Name),
					zap.Error(err))
				criticalFailures++
			} else {
				logger.Warn("⚠ Check failed (optional)",
					zap.String("check", check.Name),
					zap.Error(err))
				result.Warning = err.Error()
			}
		} else {
			result.Passed = true
			logger.Info("✓ Check passed", zap.String("check", check.Name))
		}

		results = append(results, result)
	}

	if criticalFailures > 0 {
		return results, fmt.Errorf("%d required check(s) failed", criticalFailures)
	}

	logger.Info("=== All required preflight checks passed ===")
	return results, nil
}

// CheckTool verifies a host binary the scenarios shell out to is on PATH.
func CheckTool(name, fix string) func(context.Context) error {
	return func(ctx context.Context) error {
		if _, err := exec.LookPath(name); err != nil {
			return fmt.Errorf("%s is not installed or not on PATH\n"+
				"Fix: %s", name, fix)
		}
		return nil
	}
}

// CheckControlSurface verifies the fault trigger control file exists.
func CheckControlSurface(p probe.Prober, path string) func(context.Context) error {
	return func(ctx context.Context) error {
		if !p.ControlFileExists(path) {
			return fmt.Errorf("fault control file %s does not exist\n"+
				"Fix: mount debugfs and load the instrumented driver:\n"+
				"  sudo mount -t debugfs none /sys/kernel/debug", path)
		}
		return nil
	}
}

// CheckModemDetected waits up to the grace period for the modem to appear.
// A freshly booted host can take several seconds to enumerate the device.
func CheckModemDetected(p probe.Prober, det *detect.Detector, grace time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		ok := det.WaitUntil(ctx, "modem-detected", func(ctx context.Context) bool {
			return probe.Presence(ctx, p).AtLeast(probe.Detected)
		}, grace)
		if !ok {
			return fmt.Errorf("no modem detected within %s\n"+
				"Fix: verify the device is attached and enumerated:\n"+
				"  mmcli -L\n"+
				"  lsusb", grace)
		}
		return nil
	}
}

// CheckDaemonUnit verifies the modem daemon unit is known to systemd.
func CheckDaemonUnit(p probe.Prober, unit string) func(context.Context) error {
	return func(ctx context.Context) error {
		status, err := p.ServiceEnabled(ctx, unit)
		if err != nil {
			return fmt.Errorf("could not query unit %s: %w", unit, err)
		}
		if status == probe.StatusFailed {
			return fmt.Errorf("systemd does not know unit %s\n"+
				"Fix: set the correct unit with --unit", unit)
		}
		return nil
	}
}

// CheckTaintReadable verifies the kernel taint file can be read, so the
// per-scenario taint invariant has a baseline to work from.
func CheckTaintReadable(p probe.Prober) func(context.Context) error {
	return func(ctx context.Context) error {
		if _, err := p.KernelTaint(ctx); err != nil {
			return fmt.Errorf("cannot read kernel taint state: %w", err)
		}
		return nil
	}
}

// HarnessChecks returns the full check set for a stress run. Required checks
// gate the run; optional ones gate individual scenarios (conn-cycle without
// nmcli, suspend without rtcwake).
func HarnessChecks(p probe.Prober, det *detect.Detector, s *config.Settings) []Check {
	return []Check{
		{
			Name:        "Fault control surface",
			Description: fmt.Sprintf("control file %s exists", s.ControlPath),
			Check:       CheckControlSurface(p, s.ControlPath),
			Required:    true,
		},
		{
			Name:        "mmcli",
			Description: "ModemManager CLI is installed",
			Check:       CheckTool("mmcli", "sudo apt install modemmanager"),
			Required:    true,
		},
		{
			Name:        "dmesg",
			Description: "kernel ring buffer is readable",
			Check:       CheckTool("dmesg", "install util-linux"),
			Required:    true,
		},
		{
			Name:        "systemctl",
			Description: "systemd is managing services on this host",
			Check:       CheckTool("systemctl", "this harness requires a systemd host"),
			Required:    true,
		},
		{
			Name:        "Modem detection",
			Description: fmt.Sprintf("a modem is detected within %s", s.DeviceGrace),
			Check:       CheckModemDetected(p, det, s.DeviceGrace),
			Required:    true,
		},
		{
			Name:        "Modem daemon unit",
			Description: fmt.Sprintf("unit %s is known to systemd", s.Unit),
			Check:       CheckDaemonUnit(p, s.Unit),
			Required:    false,
		},
		{
			Name:        "Kernel taint state",
			Description: "taint bitmask is readable for the regression guard",
			Check:       CheckTaintReadable(p),
			Required:    false,
		},
		{
			Name:        "nmcli",
			Description: "NetworkManager CLI for conn-cycle",
			Check:       CheckTool("nmcli", "sudo apt install network-manager"),
			Required:    false,
		},
		{
			Name:        "rtcwake",
			Description: "RTC wake scheduling for suspend scenarios",
			Check:       CheckTool("rtcwake", "install util-linux"),
			Required:    false,
		},
		{
			Name:        "ping",
			Description: "data-flow verification and traffic load",
			Check:       CheckTool("ping", "sudo apt install iputils-ping"),
			Required:    false,
		},
	}
}
