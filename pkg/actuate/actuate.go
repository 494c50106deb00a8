// pkg/actuate/actuate.go

// Package actuate wraps the mutation commands the scenarios shell out to:
// fault triggering, daemon restarts, connection up/down, suspend, and wake
// timers. These are external collaborators; the harness only sequences them.
package actuate

import (
	"context"
	"os"
	"strconv"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/execute"
)

// Actuator is the fault-injection and state-mutation surface. Tests
// substitute a scripted fake so scenarios run without touching the host.
type Actuator interface {
	// TriggerFault writes the fault token to the device control surface.
	TriggerFault(ctx context.Context) error
	// RestartUnit restarts the managing daemon.
	RestartUnit(ctx context.Context, unit string) error
	// ConnectionUp brings a named data connection up.
	ConnectionUp(ctx context.Context, name string) error
	// ConnectionDown brings a named data connection down.
	ConnectionDown(ctx context.Context, name string) error
	// ScheduleWake arms an RTC wake timer the given seconds from now.
	ScheduleWake(ctx context.Context, seconds int) error
	// Suspend performs a full system suspend; it returns after resume.
	Suspend(ctx context.Context) error
}

// SystemActuator performs real mutations through the control file, systemctl,
// nmcli, and rtcwake.
type SystemActuator struct {
	ControlPath string
	FaultToken  string
}

var _ Actuator = (*SystemActuator)(nil)

// TriggerFault writes the fault token. The control path is write-only; the
// write either takes or the scenario cannot proceed.
func (a *SystemActuator) TriggerFault(ctx context.Context) error {
	logger := otelzap.Ctx(ctx)
	logger.Info("Injecting fault",
		zap.String("control_path", a.ControlPath),
		zap.String("token", a.FaultToken))

	f, err := os.OpenFile(a.ControlPath, os.O_WRONLY, 0)
	if err != nil {
		return cerr.Wrapf(err, "opening control surface %s", a.ControlPath)
	}
	defer f.Close()

	if _, err := f.WriteString(a.FaultToken + "\n"); err != nil {
		return cerr.Wrapf(err, "writing fault token to %s", a.ControlPath)
	}
	return nil
}

func (a *SystemActuator) RestartUnit(ctx context.Context, unit string) error {
	otelzap.Ctx(ctx).Info("Restarting unit", zap.String("unit", unit))
	return execute.RunSimple(ctx, "systemctl", "restart", unit)
}

func (a *SystemActuator) ConnectionUp(ctx context.Context, name string) error {
	otelzap.Ctx(ctx).Info("Bringing connection up", zap.String("connection", name))
	_, err := execute.Run(ctx, execute.Options{
		Command: "nmcli",
		Args:    []string{"connection", "up", name},
		Timeout: 60 * time.Second,
	})
	return err
}

func (a *SystemActuator) ConnectionDown(ctx context.Context, name string) error {
	otelzap.Ctx(ctx).Info("Bringing connection down", zap.String("connection", name))
	_, err := execute.Run(ctx, execute.Options{
		Command: "nmcli",
		Args:    []string{"connection", "down", name},
		Timeout: 60 * time.Second,
	})
	return err
}

func (a *SystemActuator) ScheduleWake(ctx context.Context, seconds int) error {
	otelzap.Ctx(ctx).Info("Scheduling RTC wake", zap.Int("seconds", seconds))
	return execute.RunSimple(ctx, "rtcwake", "-m", "no", "-s", strconv.Itoa(seconds))
}

// Suspend blocks until resume; the timeout covers the scheduled wake plus
// resume processing.
func (a *SystemActuator) Suspend(ctx context.Context) error {
	otelzap.Ctx(ctx).Info("Suspending system")
	_, err := execute.Run(ctx, execute.Options{
		Command: "systemctl",
		Args:    []string{"suspend"},
		Timeout: 5 * time.Minute,
	})
	return err
}
