/* cmd/list.go */

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wwantools/modemstress/pkg/config"
	"github.com/wwantools/modemstress/pkg/ms_cli"
	"github.com/wwantools/modemstress/pkg/ms_io"
	"github.com/wwantools/modemstress/pkg/scenario"
)

// ListCmd prints the scenario catalog.
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available stress scenarios",
	RunE: ms_cli.Wrap(func(rc *ms_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		fmt.Println("Available scenarios (run order for \"all\"):")
		for _, d := range scenario.Catalog {
			fmt.Printf("  %-16s %s\n", d.Name, d.Description)
		}
		fmt.Println("\nAlso accepted: preflight (host checks only), all (full sweep).")
		fmt.Printf("Default rounds per scenario: %d (override with --rounds).\n", config.Defaults().Rounds)
		return nil
	}),
}
