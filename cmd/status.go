/* cmd/status.go */

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/config"
	"github.com/wwantools/modemstress/pkg/ms_cli"
	"github.com/wwantools/modemstress/pkg/ms_io"
	"github.com/wwantools/modemstress/pkg/probe"
)

// StatusCmd takes a one-shot probe of the modem and the harness surfaces
// without mutating anything. It does not require root.
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current modem and harness state",
	RunE: ms_cli.Wrap(func(rc *ms_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		settings, err := config.Load(rc.Log)
		if err != nil {
			return err
		}

		prober, err := probe.NewSystemProber(probe.Options{
			DeviceGlobs:   settings.DeviceGlobs,
			HookPattern:   settings.HookPattern,
			PingTarget:    settings.PingTarget,
			PingInterface: settings.PingInterface,
		})
		if err != nil {
			return err
		}

		presence := probe.Presence(rc.Ctx, prober)
		files, filesErr := prober.DeviceFilesPresent(rc.Ctx)
		enabled, enabledErr := prober.ServiceEnabled(rc.Ctx, settings.Unit)
		hooks, hooksErr := prober.HookFireCount(rc.Ctx)
		control := prober.ControlFileExists(settings.ControlPath)

		rc.Log.Info("Modem status",
			zap.String("presence", presence.String()),
			zap.Bool("device_files", files),
			zap.String("daemon_unit", settings.Unit),
			zap.String("daemon_enabled", enabled.String()),
			zap.Bool("control_surface", control),
			zap.Int("resume_hooks_seen", hooks))

		fmt.Printf("Modem:           %s\n", presence)
		if filesErr == nil {
			fmt.Printf("Device files:    %v\n", files)
		}
		if enabledErr == nil {
			fmt.Printf("Daemon (%s): %s\n", settings.Unit, enabled)
		}
		fmt.Printf("Control surface: %v (%s)\n", control, settings.ControlPath)
		if hooksErr == nil {
			fmt.Printf("Resume hooks:    %d\n", hooks)
		}

		if taint, err := prober.KernelTaint(rc.Ctx); err == nil {
			fmt.Printf("Kernel taint:    0x%x\n", taint)
		} else {
			fmt.Println("Kernel taint:    unreadable")
		}
		if lines, err := prober.RingBufferLineCount(rc.Ctx); err == nil {
			fmt.Printf("Ring buffer:     %d lines\n", lines)
		}
		return nil
	}),
}
