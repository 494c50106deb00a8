/* cmd/root.go */

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/logger"
	"github.com/wwantools/modemstress/pkg/ms_cli"
	"github.com/wwantools/modemstress/pkg/ms_err"
	"github.com/wwantools/modemstress/pkg/ms_io"
)

// RootCmd is the base command for modemstress.
var RootCmd = &cobra.Command{
	Use:   "modemstress",
	Short: "Stress harness for WWAN modem fault recovery",
	Long: `modemstress repeatedly induces modem faults (forced resets, suspend/resume
cycles, connection cycling, daemon restarts) and verifies the device recovers
every time without regressing the kernel.`,
	RunE: ms_cli.Wrap(func(rc *ms_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		fmt.Println("No subcommand provided. Try `modemstress help`.")
		return cmd.Help()
	}),
}

// RegisterCommands adds all subcommands to the root command.
func RegisterCommands() {
	for _, subCmd := range []*cobra.Command{
		RunCmd,
		StatusCmd,
		ListCmd,
		VersionCmd,
	} {
		RootCmd.AddCommand(subCmd)
	}
}

// Execute initializes and runs the root command. The process exits non-zero
// on any error, including scenario failures surfaced as expected errors.
func Execute() {
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to flush logs: %v\n", err)
		}
	}()

	logger.L().Info("modemstress starting")

	RegisterCommands()

	if err := RootCmd.Execute(); err != nil {
		if ms_err.IsExpectedUserError(err) {
			logger.L().Warn("Completed with failures", zap.Error(err))
		} else {
			logger.L().Error("CLI execution error", zap.Error(err))
		}
		os.Exit(1)
	}
}
