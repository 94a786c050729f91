// pkg/checks/selftest.go

package checks

import (
	"fmt"
	"time"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// RoundTrip is the one mutating check in the repository: it creates a
// throwaway dataset on the given pool, snapshots it, and destroys both.
// Any step failing — including cleanup — is a FAIL. It is exposed as its own
// command (`zupdate selftest`) rather than a catalogue entry because the
// catalogue is read-only by contract. Each step runs under the executor's
// default timeout; a zfs create that hangs that long is itself a failure.
func RoundTrip(rc *zupdate_io.RuntimeContext, pool string) CheckResult {
	logger := otelzap.Ctx(rc.Ctx)

	const name = "roundtrip-capability"
	if pool == "" {
		return result(name, Fail, "no pool available for the round-trip test")
	}

	dataset := fmt.Sprintf("%s/zupdate-selftest-%d", pool, time.Now().Unix())
	snapshot := dataset + "@check"
	logger.Info("Starting dataset round-trip test", zap.String("dataset", dataset))

	if err := execute.RunSimple(rc.Ctx, "zfs", "create", dataset); err != nil {
		return result(name, Fail, fmt.Sprintf("create %s failed: %v", dataset, err))
	}

	if err := execute.RunSimple(rc.Ctx, "zfs", "snapshot", snapshot); err != nil {
		// Best-effort cleanup; the create succeeded so the dataset exists.
		_ = execute.RunSimple(rc.Ctx, "zfs", "destroy", "-r", dataset)
		return result(name, Fail, fmt.Sprintf("snapshot %s failed: %v", snapshot, err))
	}

	if err := execute.RunSimple(rc.Ctx, "zfs", "destroy", "-r", dataset); err != nil {
		return result(name, Fail, fmt.Sprintf("cleanup of %s failed: %v — remove it manually", dataset, err))
	}

	logger.Info("Dataset round-trip test passed", zap.String("pool", pool))
	return result(name, Pass, fmt.Sprintf("create/snapshot/destroy round-trip succeeded on %s", pool))
}
