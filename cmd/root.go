/*
cmd/root.go

Copyright © 2026 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of zupdate.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/zupdate/cmd/postcheck"
	"github.com/CodeMonkeyCybersecurity/zupdate/cmd/precheck"
	"github.com/CodeMonkeyCybersecurity/zupdate/cmd/selftest"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_cli"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_err"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
)

// RootCmd is the base command for zupdate.
var RootCmd = &cobra.Command{
	Use:   "zupdate",
	Short: "Safe OS package updates for ZFS-root hosts",
	Long: `zupdate verifies that a host whose root filesystem lives on ZFS is safe
to update, and afterwards whether the update left it safe to keep running.

Run 'zupdate precheck' before handing off to the package manager and
'zupdate postcheck' after it finishes. The pre-phase refuses the handoff
when the storage or boot stack is not in a state that would survive the
update; the post-phase reconciles what changed and says whether a reboot
is needed.`,
	RunE: zupdate_cli.Wrap(func(rc *zupdate_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// RegisterCommands attaches all subcommands to the root.
func RegisterCommands() {
	RootCmd.AddCommand(
		precheck.PrecheckCmd,
		postcheck.PostcheckCmd,
		selftest.SelftestCmd,
	)
}

// Execute runs the CLI and maps the outcome onto the process exit status:
// 0 when verification passed (warnings included), 1 for a fatal verdict or
// a missing dependency.
func Execute() {
	defer func() {
		_ = logger.Sync()
	}()

	RegisterCommands()

	if err := RootCmd.Execute(); err != nil {
		if zupdate_err.IsExpectedUserError(err) {
			logger.GetLogger().Warn("Verification did not pass", zap.Error(err))
		} else {
			logger.GetLogger().Error("Command failed", zap.Error(err))
		}
		os.Exit(zupdate_err.GetExitCode(err))
	}
}
