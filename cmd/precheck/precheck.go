/*
cmd/precheck/precheck.go

Copyright © 2026 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of zupdate.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package precheck

import (
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/artifact"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/checks"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/report"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/verdict"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_cli"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_err"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
)

// PrecheckCmd verifies the host before package updates are applied. On a
// clean (non-fatal) run it writes the handoff artifact consumed later by
// postcheck; on a fatal run nothing is written and the update is blocked.
var PrecheckCmd = &cobra.Command{
	Use:   "precheck",
	Short: "Verify the host is safe to update and record the handoff state",
	Long: `Gather a snapshot of the storage and boot stack, run the verification
catalogue against it, and decide whether the pending package updates are
safe to apply.

When every fatal check passes, the observed state is written to the handoff
artifact so postcheck can detect drift after the update. When a fatal check
fails, no artifact is written and the exit status is 1: do not update.`,
	RunE: zupdate_cli.Wrap(runPrecheck),
}

func init() {
	PrecheckCmd.Flags().String("artifact", "", "override the handoff artifact path")
}

func runPrecheck(rc *zupdate_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	if err := checks.EnsureEnvironment(rc); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return cerr.Wrap(err, "load configuration")
	}
	if path, _ := cmd.Flags().GetString("artifact"); path != "" {
		cfg.ArtifactPath = path
	}

	snap, gaps := probe.Collect(rc, cfg)
	if gaps != nil {
		rc.Log.Warn("Snapshot has observation gaps; affected checks will warn",
			zap.Error(gaps))
	}

	reporter := report.New(rc.Log)

	// An idle host needs no verification and no artifact.
	if snap.PendingUpdates.Total == 0 {
		reporter.NothingPending()
		return nil
	}

	catalogue := checks.Catalogue(checks.Options{
		DiskHardMinMB: cfg.DiskHardMinMB,
		DiskSoftMinMB: cfg.DiskSoftMinMB,
	})
	results := checks.Run(rc, catalogue, snap, nil)

	fatalSet := checks.FatalSet(catalogue)
	v := verdict.Summarize(results, fatalSet)

	reporter.Results(results, fatalSet)
	reporter.Verdict("Pre-update", v, results)
	reporter.PreAdvice(verdict.JudgePre(snap), snap.PendingUpdates)

	if report.ExitCode(v) != 0 {
		return zupdate_err.NewExpectedError(
			cerr.Newf("pre-update verification failed: %d check(s) block this update", v.FailCount))
	}

	rec := artifact.FromSnapshot(snap, logger.RunLogPath())
	if err := artifact.Write(cfg.ArtifactPath, rec); err != nil {
		return cerr.Wrapf(err, "write handoff artifact %s", cfg.ArtifactPath)
	}
	rc.Log.Info("Handoff artifact written",
		zap.String("path", cfg.ArtifactPath),
		zap.Int("pending_updates", snap.PendingUpdates.Total))

	return nil
}
