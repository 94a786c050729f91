// pkg/verdict/pre.go

package verdict

import (
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
)

// UpdateClass grades how disruptive the pending update set is.
type UpdateClass string

const (
	ClassTrivial          UpdateClass = "trivial"
	ClassStorageAffecting UpdateClass = "storage-affecting"
	ClassKernelAffecting  UpdateClass = "kernel-affecting"
)

// PreJudgment is what the pre-phase derives beyond the raw verdict.
type PreJudgment struct {
	Class          UpdateClass
	RebootForeseen bool
}

// JudgePre classifies the pending update set and predicts whether applying
// it will require a reboot. Kernel updates dominate storage ones: a set
// touching both is kernel-affecting.
func JudgePre(snap *probe.SystemSnapshot) PreJudgment {
	p := snap.PendingUpdates

	class := ClassTrivial
	switch {
	case p.Count(probe.CategoryKernel) > 0:
		class = ClassKernelAffecting
	case p.Count(probe.CategoryStorage) > 0,
		p.Count(probe.CategoryBootMenu) > 0,
		p.Count(probe.CategoryInitramfsBuilder) > 0:
		class = ClassStorageAffecting
	}

	return PreJudgment{
		Class:          class,
		RebootForeseen: p.Count(probe.CategoryKernel) > 0 || p.Count(probe.CategoryStorage) > 0,
	}
}
