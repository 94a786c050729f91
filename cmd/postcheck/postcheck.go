/*
cmd/postcheck/postcheck.go

Copyright © 2026 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of zupdate.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package postcheck

import (
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/artifact"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/checks"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/report"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/verdict"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_cli"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_err"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
)

// PostcheckCmd verifies the host after package updates were applied. It
// re-runs the verification catalogue, compares the fresh snapshot against
// the precheck handoff artifact, and recommends whether to reboot.
var PostcheckCmd = &cobra.Command{
	Use:   "postcheck",
	Short: "Verify the host after updates and recommend reboot or not",
	Long: `Gather a fresh snapshot of the storage and boot stack, run the
verification catalogue, and reconcile the result against the state recorded
by precheck.

A missing artifact is tolerated: the catalogue still runs in full, only the
drift comparison is skipped. The exit status is 1 only when a fatal check
fails; a reboot recommendation alone exits 0.`,
	RunE: zupdate_cli.Wrap(runPostcheck),
}

func init() {
	PostcheckCmd.Flags().String("artifact", "", "override the handoff artifact path")
}

func runPostcheck(rc *zupdate_io.RuntimeContext, cmd *cobra.Command, args []string) error {
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

	prior, err := artifact.Read(cfg.ArtifactPath)
	if err != nil {
		return cerr.Wrapf(err, "read handoff artifact %s", cfg.ArtifactPath)
	}
	if prior == nil {
		rc.Log.Warn("No handoff artifact found; drift comparison will be skipped",
			zap.String("path", cfg.ArtifactPath))
	}

	snap, gaps := probe.Collect(rc, cfg)
	if gaps != nil {
		rc.Log.Warn("Snapshot has observation gaps; affected checks will warn",
			zap.Error(gaps))
	}

	catalogue := checks.Catalogue(checks.Options{
		DiskHardMinMB: cfg.DiskHardMinMB,
		DiskSoftMinMB: cfg.DiskSoftMinMB,
	})
	results := checks.Run(rc, catalogue, snap, prior)

	fatalSet := checks.FatalSet(catalogue)
	v := verdict.Summarize(results, fatalSet)

	reporter := report.New(rc.Log)
	reporter.Results(results, fatalSet)
	reporter.Verdict("Post-update", v, results)
	reporter.PostAdvice(verdict.JudgePost(snap, prior))

	if report.ExitCode(v) != 0 {
		return zupdate_err.NewExpectedError(
			cerr.Newf("post-update verification failed: %d check(s) failed fatally", v.FailCount))
	}
	return nil
}
