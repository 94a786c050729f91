// pkg/checks/types.go

package checks

import (
	"time"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/artifact"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
)

// Severity grades one check outcome.
type Severity string

const (
	Pass Severity = "PASS"
	Warn Severity = "WARN"
	Fail Severity = "FAIL"
)

// CheckResult is the immutable outcome of one executed check.
type CheckResult struct {
	CheckName  string
	Severity   Severity
	Message    string
	ObservedAt time.Time
}

// Check is one entry in the catalogue. Checks are data, not control flow:
// the runner owns ordering and the fatal policy lives in FatalOnFail, so the
// whole failure policy is auditable in one table.
type Check struct {
	Name        string
	Description string
	FatalOnFail bool

	// Applies gates execution; a false return skips the check entirely and
	// contributes no CheckResult. Nil means always applicable.
	Applies func(snap *probe.SystemSnapshot, prior *artifact.Record) bool

	// Eval judges the snapshot. It must not invoke external tools; all facts
	// come from the probe.
	Eval func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult
}

func result(name string, sev Severity, msg string) CheckResult {
	return CheckResult{
		CheckName:  name,
		Severity:   sev,
		Message:    msg,
		ObservedAt: time.Now(),
	}
}

// FatalSet maps check names to their fatal-on-fail registration for verdict
// aggregation.
func FatalSet(catalogue []Check) map[string]bool {
	set := make(map[string]bool, len(catalogue))
	for _, c := range catalogue {
		set[c.Name] = c.FatalOnFail
	}
	return set
}
