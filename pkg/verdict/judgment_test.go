// pkg/verdict/judgment_test.go

package verdict

import (
	"testing"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/artifact"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
	"github.com/stretchr/testify/assert"
)

func snapWithPending(counts map[probe.UpdateCategory]int) *probe.SystemSnapshot {
	pending := probe.NewPendingUpdates()
	for c, n := range counts {
		pending.Counts[c] = n
		pending.Total += n
	}
	return &probe.SystemSnapshot{
		StorageModuleVersion:   probe.VersionUnknown,
		StorageUserlandVersion: probe.VersionUnknown,
		PendingUpdates:         pending,
	}
}

func TestJudgePreKernelAffecting(t *testing.T) {
	j := JudgePre(snapWithPending(map[probe.UpdateCategory]int{probe.CategoryKernel: 1}))
	assert.Equal(t, ClassKernelAffecting, j.Class)
	assert.True(t, j.RebootForeseen)
}

func TestJudgePreStorageAffecting(t *testing.T) {
	j := JudgePre(snapWithPending(map[probe.UpdateCategory]int{probe.CategoryStorage: 2}))
	assert.Equal(t, ClassStorageAffecting, j.Class)
	assert.True(t, j.RebootForeseen)

	// Boot-menu and initramfs updates affect storage plumbing but do not by
	// themselves force a reboot.
	j = JudgePre(snapWithPending(map[probe.UpdateCategory]int{probe.CategoryBootMenu: 1}))
	assert.Equal(t, ClassStorageAffecting, j.Class)
	assert.False(t, j.RebootForeseen)
}

func TestJudgePreTrivial(t *testing.T) {
	j := JudgePre(snapWithPending(map[probe.UpdateCategory]int{probe.CategoryOther: 7}))
	assert.Equal(t, ClassTrivial, j.Class)
	assert.False(t, j.RebootForeseen)
}

func TestJudgePostKernelMismatchSymmetry(t *testing.T) {
	snap := snapWithPending(nil)
	snap.RunningKernelVersion = "6.8.0-44-generic"
	snap.LatestInstalledKernelVersion = "6.8.0-44-generic"

	j := JudgePost(snap, nil)
	assert.False(t, j.KernelMismatch)
	assert.False(t, j.RebootRequired)
	assert.Equal(t, "system ready", j.Reason)

	// Any difference flags a mismatch, regardless of which side is "newer".
	snap.LatestInstalledKernelVersion = "6.8.0-45-generic"
	assert.True(t, JudgePost(snap, nil).KernelMismatch)

	snap.LatestInstalledKernelVersion = "6.8.0-1-generic"
	assert.True(t, JudgePost(snap, nil).KernelMismatch)
}

func TestJudgePostUnknownKernelNoMismatch(t *testing.T) {
	snap := snapWithPending(nil)
	snap.RunningKernelVersion = "6.8.0-44-generic"
	snap.LatestInstalledKernelVersion = ""

	j := JudgePost(snap, nil)
	assert.False(t, j.KernelMismatch)
}

func TestJudgePostKernelWasPending(t *testing.T) {
	snap := snapWithPending(nil)
	snap.RunningKernelVersion = "6.8.0-44-generic"
	snap.LatestInstalledKernelVersion = "6.8.0-44-generic"

	priorPending := probe.NewPendingUpdates()
	priorPending.Counts[probe.CategoryKernel] = 1
	priorPending.Total = 1
	prior := &artifact.Record{PendingUpdates: priorPending}

	j := JudgePost(snap, prior)
	assert.True(t, j.PriorKnown)
	assert.True(t, j.RebootRequired)
}

func TestJudgePostStorageSkew(t *testing.T) {
	snap := snapWithPending(nil)
	snap.RunningKernelVersion = "6.8.0-44-generic"
	snap.LatestInstalledKernelVersion = "6.8.0-44-generic"
	snap.StorageModuleVersion = "2.2.2"
	snap.StorageUserlandVersion = "2.2.4"

	priorPending := probe.NewPendingUpdates()
	priorPending.Counts[probe.CategoryStorage] = 1
	priorPending.Total = 1
	prior := &artifact.Record{PendingUpdates: priorPending}

	j := JudgePost(snap, prior)
	assert.True(t, j.RebootRequired)

	// Same versions: the updated stack is coherent, no reboot needed.
	snap.StorageUserlandVersion = "2.2.2"
	j = JudgePost(snap, prior)
	assert.False(t, j.RebootRequired)
	assert.Equal(t, "system ready", j.Reason)

	// Unknown versions cannot assert a skew.
	snap.StorageModuleVersion = probe.VersionUnknown
	assert.False(t, JudgePost(snap, prior).RebootRequired)
}

func TestJudgePostNoArtifact(t *testing.T) {
	snap := snapWithPending(nil)
	snap.RunningKernelVersion = "6.8.0-44-generic"
	snap.LatestInstalledKernelVersion = "6.8.0-44-generic"
	snap.StorageModuleVersion = "2.2.2"
	snap.StorageUserlandVersion = "2.2.4"

	// Without a prior artifact the skew alone must not trigger a reboot
	// recommendation: drift comparisons are skipped, not failed.
	j := JudgePost(snap, nil)
	assert.False(t, j.PriorKnown)
	assert.False(t, j.RebootRequired)
}
