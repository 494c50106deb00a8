// pkg/ms_cli/wrap.go

package ms_cli

import (
	"context"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wwantools/modemstress/pkg/ms_err"
	"github.com/wwantools/modemstress/pkg/ms_io"
)

// Wrap adapts a RuntimeContext-aware handler to a cobra RunE, adding panic
// recovery, span lifecycle, and stack capture for unexpected errors.
func Wrap(fn func(rc *ms_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rc := ms_io.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		err = fn(rc, cmd, args)
		if err != nil && !ms_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
