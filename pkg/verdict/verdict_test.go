// pkg/verdict/verdict_test.go

package verdict

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/checks"
	"github.com/stretchr/testify/assert"
)

func res(name string, sev checks.Severity) checks.CheckResult {
	return checks.CheckResult{CheckName: name, Severity: sev}
}

func TestSummarizeCounts(t *testing.T) {
	fatal := map[string]bool{"pool-health": true, "dataset-mounts": false}

	v := Summarize([]checks.CheckResult{
		res("storage-module-loaded", checks.Pass),
		res("dataset-mounts", checks.Fail),
		res("hostid-consistency", checks.Warn),
	}, fatal)

	assert.Equal(t, 1, v.PassCount)
	assert.Equal(t, 1, v.WarnCount)
	assert.Equal(t, 1, v.FailCount)
	assert.False(t, v.Fatal, "non-fatal FAIL must not make the phase fatal")
}

func TestSummarizeFatalOnlyFromFatalChecks(t *testing.T) {
	fatal := map[string]bool{"pool-health": true, "dataset-mounts": false}

	v := Summarize([]checks.CheckResult{
		res("pool-health", checks.Fail),
		res("dataset-mounts", checks.Fail),
	}, fatal)

	assert.True(t, v.Fatal)
	assert.Equal(t, 2, v.FailCount)
}

func TestSummarizeAllPassNonFatal(t *testing.T) {
	fatal := map[string]bool{"pool-health": true}

	v := Summarize([]checks.CheckResult{
		res("pool-health", checks.Pass),
		res("disk-space", checks.Pass),
	}, fatal)

	assert.False(t, v.Fatal)
	assert.Equal(t, 2, v.PassCount)
	assert.Equal(t, 0, v.FailCount)
}

func TestSummarizeWarningsNeverFatal(t *testing.T) {
	fatal := map[string]bool{"disk-space": true}

	v := Summarize([]checks.CheckResult{res("disk-space", checks.Warn)}, fatal)

	assert.False(t, v.Fatal)
	assert.Equal(t, 1, v.WarnCount)
}

func TestFailures(t *testing.T) {
	results := []checks.CheckResult{
		res("a", checks.Pass),
		res("b", checks.Fail),
		res("c", checks.Warn),
		res("d", checks.Fail),
	}

	failed := Failures(results)
	assert.Len(t, failed, 2)
	assert.Equal(t, "b", failed[0].CheckName)
	assert.Equal(t, "d", failed[1].CheckName)
}
