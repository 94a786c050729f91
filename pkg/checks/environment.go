// pkg/checks/environment.go

package checks

import (
	"fmt"
	"os"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_err"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
	"go.uber.org/zap"
)

// EnsureEnvironment verifies the preconditions no check can compensate for:
// privilege and the package manager itself. A failure here aborts before any
// catalogue check runs and is reported exactly once. Missing storage tools
// are deliberately NOT environment errors — the catalogue reports those as
// fatal check results so the operator still sees the full diagnostic run.
func EnsureEnvironment(rc *zupdate_io.RuntimeContext) error {
	if os.Geteuid() != 0 {
		rc.Log.Error("Insufficient privilege", zap.Int("euid", os.Geteuid()))
		return zupdate_err.NewExpectedError(fmt.Errorf("zupdate must run as root to inspect pools, keys and the ESP"))
	}

	if !execute.Exists("apt") {
		rc.Log.Error("Package manager not found")
		return zupdate_err.NewDependencyError("apt", "this tool verifies apt-managed hosts")
	}

	return nil
}
