/* cmd/version.go */

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/wwantools/modemstress/pkg/ms_cli"
	"github.com/wwantools/modemstress/pkg/ms_io"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// VersionCmd prints the harness version and build environment.
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show modemstress version",
	RunE: ms_cli.Wrap(func(rc *ms_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		fmt.Printf("modemstress %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return nil
	}),
}
