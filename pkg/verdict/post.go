// pkg/verdict/post.go

package verdict

import (
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/artifact"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
)

// PostJudgment compares the fresh snapshot against what the pre-phase
// recorded. KernelMismatch is a structural observation, not a check failure:
// a newly installed kernel is expected to differ from the running one until
// the reboot happens.
type PostJudgment struct {
	PriorKnown     bool
	KernelMismatch bool
	RebootRequired bool
	Reason         string
}

// JudgePost applies the recommendation decision table. prior may be nil
// (first run, or standalone postcheck): drift comparisons are then skipped,
// and only the structural kernel comparison contributes.
func JudgePost(snap *probe.SystemSnapshot, prior *artifact.Record) PostJudgment {
	j := PostJudgment{PriorKnown: prior != nil}

	if snap.RunningKernelVersion != "" && snap.LatestInstalledKernelVersion != "" &&
		snap.RunningKernelVersion != snap.LatestInstalledKernelVersion {
		j.KernelMismatch = true
	}

	switch {
	case j.KernelMismatch:
		j.RebootRequired = true
		j.Reason = "running kernel " + snap.RunningKernelVersion + " differs from installed " + snap.LatestInstalledKernelVersion
	case prior != nil && prior.PendingUpdates.Count(probe.CategoryKernel) > 0:
		j.RebootRequired = true
		j.Reason = "a kernel package was among the applied updates"
	case prior != nil && prior.PendingUpdates.Count(probe.CategoryStorage) > 0 && storageStackSkewed(snap):
		j.RebootRequired = true
		j.Reason = "storage stack was updated and module version " + snap.StorageModuleVersion +
			" no longer matches userland " + snap.StorageUserlandVersion
	default:
		j.Reason = "system ready"
	}

	return j
}

// storageStackSkewed reports a loaded-module / userland version divergence.
// Unknown versions cannot assert a skew.
func storageStackSkewed(snap *probe.SystemSnapshot) bool {
	if snap.StorageModuleVersion == probe.VersionUnknown || snap.StorageUserlandVersion == probe.VersionUnknown {
		return false
	}
	return snap.StorageModuleVersion != snap.StorageUserlandVersion
}
