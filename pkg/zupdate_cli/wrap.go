// pkg/zupdate_cli/wrap.go

package zupdate_cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_err"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Wrap adapts a RuntimeContext-based handler to cobra's RunE, giving every
// command panic recovery, lifecycle logging and telemetry for free.
func Wrap(fn func(rc *zupdate_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rc := zupdate_io.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		err = fn(rc, cmd, args)
		if err != nil && !zupdate_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
