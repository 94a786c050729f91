/*
cmd/selftest/selftest.go

Copyright © 2026 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of zupdate.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package selftest

import (
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/checks"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/report"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/verdict"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_cli"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_err"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
)

// SelftestCmd proves the storage stack can actually do work, not just look
// healthy: it creates a throwaway dataset, snapshots it, and destroys both.
// It mutates a pool, so it lives outside the read-only check catalogue.
var SelftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Round-trip a throwaway dataset to prove the storage stack works",
	Long: `Create a scratch dataset on a pool, snapshot it, then destroy both.
A stack that completes the round trip can be trusted to survive an update;
one that cannot is broken in a way the passive checks may not see.

The pool is taken from --pool, the selftest_pool config setting, or the
first pool on the host, in that order. Any leftover from a failed run is
cleaned up on a best-effort basis.`,
	RunE: zupdate_cli.Wrap(runSelftest),
}

func init() {
	SelftestCmd.Flags().String("pool", "", "pool to run the round trip on")
}

func runSelftest(rc *zupdate_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	if err := checks.EnsureEnvironment(rc); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return cerr.Wrap(err, "load configuration")
	}

	pool, _ := cmd.Flags().GetString("pool")
	if pool == "" {
		pool = cfg.SelftestPool
	}
	if pool == "" {
		snap, gaps := probe.Collect(rc, cfg)
		if gaps != nil {
			rc.Log.Warn("Snapshot has observation gaps", zap.Error(gaps))
		}
		if !snap.HasPools() {
			return zupdate_err.NewExpectedError(
				cerr.New("no pools found; pass --pool or set selftest_pool"))
		}
		pool = snap.Pools[0].Name
	}
	rc.Log.Info("Running storage round-trip self-test", zap.String("pool", pool))

	res := checks.RoundTrip(rc, pool)

	results := []checks.CheckResult{res}
	fatalSet := map[string]bool{res.CheckName: true}
	v := verdict.Summarize(results, fatalSet)

	reporter := report.New(rc.Log)
	reporter.Results(results, fatalSet)
	reporter.Verdict("Self-test", v, results)

	if report.ExitCode(v) != 0 {
		return zupdate_err.NewExpectedError(
			cerr.Newf("storage round trip failed on pool %s", pool))
	}
	return nil
}
