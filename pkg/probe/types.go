// pkg/probe/types.go

package probe

import "time"

// VersionUnknown is the sentinel for any version fact the probe could not
// observe. Checks treat it conservatively (WARN, never silent PASS).
const VersionUnknown = "unknown"

// CapacityUnknown marks a pool capacity that did not parse.
const CapacityUnknown = -1

// SpaceUnknown marks boot filesystem headroom that could not be measured.
const SpaceUnknown = -1

// PoolHealth is the health state a pool reports.
type PoolHealth string

const (
	HealthOnline   PoolHealth = "ONLINE"
	HealthDegraded PoolHealth = "DEGRADED"
	HealthFaulted  PoolHealth = "FAULTED"
	HealthUnavail  PoolHealth = "UNAVAIL"
	HealthUnknown  PoolHealth = "UNKNOWN"
)

// ParsePoolHealth maps zpool output to a PoolHealth, defaulting to UNKNOWN.
func ParsePoolHealth(s string) PoolHealth {
	switch PoolHealth(s) {
	case HealthOnline, HealthDegraded, HealthFaulted, HealthUnavail:
		return PoolHealth(s)
	default:
		return HealthUnknown
	}
}

// Pool is one top-level storage aggregate.
type Pool struct {
	Name            string
	Health          PoolHealth
	CapacityPercent int // 0-100, CapacityUnknown when unparseable
}

// Dataset is a mountable filesystem carved from a pool.
type Dataset struct {
	Name       string
	Mounted    bool
	Mountpoint string // empty when the dataset has no real mountpoint
}

// HasRealMountpoint reports whether the dataset is supposed to be mounted
// somewhere ("none" and "legacy" datasets are managed elsewhere).
func (d Dataset) HasRealMountpoint() bool {
	return d.Mountpoint != "" && d.Mountpoint != "none" && d.Mountpoint != "legacy" && d.Mountpoint != "-"
}

// BootMethod distinguishes a static bootloader from a boot-environment menu.
type BootMethod string

const (
	BootTraditional BootMethod = "TRADITIONAL"
	BootMenu        BootMethod = "BOOT_MENU"
)

// ParseBootMethod maps a serialized boot method back to the enum,
// defaulting to TRADITIONAL.
func ParseBootMethod(s string) BootMethod {
	if BootMethod(s) == BootMenu {
		return BootMenu
	}
	return BootTraditional
}

// UpdateCategory buckets pending package updates by what they touch.
type UpdateCategory string

const (
	CategoryStorage          UpdateCategory = "storage"
	CategoryBootMenu         UpdateCategory = "bootmenu"
	CategoryInitramfsBuilder UpdateCategory = "initramfs"
	CategoryKernel           UpdateCategory = "kernel"
	CategoryOther            UpdateCategory = "other"
)

// Categories lists every bucket in stable order.
var Categories = []UpdateCategory{
	CategoryStorage,
	CategoryBootMenu,
	CategoryInitramfsBuilder,
	CategoryKernel,
	CategoryOther,
}

// PendingUpdates counts queued package updates per category. Total is the
// package manager's own count and may exceed the categorized sum (the other
// bucket absorbs what pattern matching misses), but never falls below the
// largest category.
type PendingUpdates struct {
	Counts map[UpdateCategory]int
	Total  int
}

// NewPendingUpdates returns an empty count set with every bucket present.
func NewPendingUpdates() PendingUpdates {
	counts := make(map[UpdateCategory]int, len(Categories))
	for _, c := range Categories {
		counts[c] = 0
	}
	return PendingUpdates{Counts: counts}
}

// Count returns the count for one category, zero when absent.
func (p PendingUpdates) Count(c UpdateCategory) int {
	return p.Counts[c]
}

// Presence is a three-valued fact for things the probe may fail to observe.
type Presence string

const (
	PresenceYes     Presence = "yes"
	PresenceNo      Presence = "no"
	PresenceUnknown Presence = "unknown"
)

// SystemSnapshot is an immutable record of observed host facts at one point
// in time. The probe fills every field it can and leaves sentinels for the
// rest; only the check runner judges what an unknown value means.
type SystemSnapshot struct {
	ObservedAt time.Time
	Hostname   string

	RunningKernelVersion         string
	LatestInstalledKernelVersion string

	StorageModuleLoaded    bool
	StorageModuleVersion   string // VersionUnknown when unobtainable
	StorageModuleKernel    string // kernel the module was built against
	StorageUserlandVersion string
	UserlandToolsPresent   bool

	Pools           []Pool
	PoolsAccessible bool
	Datasets        []Dataset

	BootMethod BootMethod
	ESPMounted bool
	ESPPath    string

	BootMenuImagePresent  bool
	BootMenuBackupPresent bool

	InitramfsBuilderPresent   bool
	InitramfsBuilderVersion   string
	InitramfsHasStorageModule Presence

	HostIDFromCommand string
	HostIDFromFile    string

	KeyFiles []KeyFile

	BootAvailMB int64 // SpaceUnknown when unmeasured

	PendingUpdates PendingUpdates
}

// KeyFile is an encryption key path plus the permission bits it carries.
type KeyFile struct {
	Path string
	Mode uint32
}

// HasPools reports whether any pool was observed; pool and dataset checks
// are skipped entirely on hosts without pools.
func (s *SystemSnapshot) HasPools() bool {
	return len(s.Pools) > 0
}
