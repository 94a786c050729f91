// pkg/checks/runner.go

package checks

import (
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/artifact"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Run executes the catalogue strictly in registration order against one
// snapshot. Every applicable check runs to completion — a FAIL never
// short-circuits the rest, so the operator always gets the full picture.
// Inapplicable checks are skipped and contribute no result.
func Run(rc *zupdate_io.RuntimeContext, catalogue []Check, snap *probe.SystemSnapshot, prior *artifact.Record) []CheckResult {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Running check catalogue", zap.Int("total_checks", len(catalogue)))

	results := make([]CheckResult, 0, len(catalogue))

	for _, check := range catalogue {
		if check.Applies != nil && !check.Applies(snap, prior) {
			logger.Debug("Check skipped (not applicable)", zap.String("check", check.Name))
			continue
		}

		res := check.Eval(rc, snap, prior)

		switch res.Severity {
		case Pass:
			logger.Info("✓ Check passed",
				zap.String("check", res.CheckName),
				zap.String("message", res.Message))
		case Warn:
			logger.Warn("⚠ Check warned",
				zap.String("check", res.CheckName),
				zap.String("message", res.Message))
		case Fail:
			if check.FatalOnFail {
				logger.Error("✗ Check failed (FATAL)",
					zap.String("check", res.CheckName),
					zap.String("message", res.Message))
			} else {
				logger.Warn("✗ Check failed",
					zap.String("check", res.CheckName),
					zap.String("message", res.Message))
			}
		}

		results = append(results, res)
	}

	logger.Info("Check catalogue complete", zap.Int("executed", len(results)))
	return results
}
