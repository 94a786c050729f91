// pkg/verdict/verdict.go

package verdict

import (
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/checks"
)

// PhaseVerdict rolls up one phase's check results. Fatal is true iff any
// executed check registered fatal-on-fail produced a FAIL; warnings and
// non-fatal failures never block.
type PhaseVerdict struct {
	PassCount int
	WarnCount int
	FailCount int
	Fatal     bool
}

// Summarize folds check results into a verdict using the catalogue's
// fatal-on-fail registrations.
func Summarize(results []checks.CheckResult, fatalSet map[string]bool) PhaseVerdict {
	var v PhaseVerdict
	for _, r := range results {
		switch r.Severity {
		case checks.Pass:
			v.PassCount++
		case checks.Warn:
			v.WarnCount++
		case checks.Fail:
			v.FailCount++
			if fatalSet[r.CheckName] {
				v.Fatal = true
			}
		}
	}
	return v
}

// Failures filters the FAIL results for prominent rendering on fatal runs.
func Failures(results []checks.CheckResult) []checks.CheckResult {
	var failed []checks.CheckResult
	for _, r := range results {
		if r.Severity == checks.Fail {
			failed = append(failed, r)
		}
	}
	return failed
}
