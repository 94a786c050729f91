// pkg/checks/checks_test.go

package checks_test

import (
	"context"
	"testing"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/checks"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/verdict"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var opts = checks.Options{DiskHardMinMB: 256, DiskSoftMinMB: 1024}

func testRC(t *testing.T) *zupdate_io.RuntimeContext {
	t.Helper()
	return zupdate_io.NewContext(context.Background(), "test")
}

// healthySnapshot is a boot-menu host where every fact checks out.
func healthySnapshot() *probe.SystemSnapshot {
	return &probe.SystemSnapshot{
		Hostname:                     "vault11",
		RunningKernelVersion:         "6.8.0-44-generic",
		LatestInstalledKernelVersion: "6.8.0-44-generic",
		StorageModuleLoaded:          true,
		StorageModuleVersion:         "2.2.4",
		StorageModuleKernel:          "6.8.0-44-generic",
		StorageUserlandVersion:       "2.2.4",
		UserlandToolsPresent:         true,
		Pools: []probe.Pool{
			{Name: "rpool", Health: probe.HealthOnline, CapacityPercent: 40},
		},
		PoolsAccessible: true,
		Datasets: []probe.Dataset{
			{Name: "rpool/ROOT", Mountpoint: "/", Mounted: true},
			{Name: "rpool/swap", Mountpoint: "", Mounted: false},
		},
		BootMethod:                probe.BootMenu,
		ESPMounted:                true,
		ESPPath:                   "/boot/efi",
		BootMenuImagePresent:      true,
		BootMenuBackupPresent:     true,
		InitramfsBuilderPresent:   true,
		InitramfsBuilderVersion:   "060",
		InitramfsHasStorageModule: probe.PresenceYes,
		HostIDFromCommand:         "007f0101",
		HostIDFromFile:            "007f0101",
		KeyFiles:                  []probe.KeyFile{{Path: "/etc/zfs/keys/rpool.key", Mode: 0o600}},
		BootAvailMB:               4096,
		PendingUpdates:            probe.NewPendingUpdates(),
	}
}

func findResult(t *testing.T, results []checks.CheckResult, name string) checks.CheckResult {
	t.Helper()
	for _, r := range results {
		if r.CheckName == name {
			return r
		}
	}
	t.Fatalf("no result for check %q", name)
	return checks.CheckResult{}
}

func hasResult(results []checks.CheckResult, name string) bool {
	for _, r := range results {
		if r.CheckName == name {
			return true
		}
	}
	return false
}

func TestHealthyHostIsNonFatal(t *testing.T) {
	catalogue := checks.Catalogue(opts)
	results := checks.Run(testRC(t), catalogue, healthySnapshot(), nil)

	for _, r := range results {
		assert.Equal(t, checks.Pass, r.Severity, "check %s: %s", r.CheckName, r.Message)
	}

	v := verdict.Summarize(results, checks.FatalSet(catalogue))
	assert.False(t, v.Fatal)
	assert.Equal(t, len(results), v.PassCount)
}

func TestDegradedPoolIsFatal(t *testing.T) {
	snap := healthySnapshot()
	snap.Pools = []probe.Pool{{Name: "tank", Health: probe.HealthDegraded, CapacityPercent: 55}}

	catalogue := checks.Catalogue(opts)
	results := checks.Run(testRC(t), catalogue, snap, nil)

	r := findResult(t, results, "pool-health")
	assert.Equal(t, checks.Fail, r.Severity)
	assert.Contains(t, r.Message, "tank=DEGRADED")

	v := verdict.Summarize(results, checks.FatalSet(catalogue))
	assert.True(t, v.Fatal)
}

func TestFaultedAndUnavailPoolsAreFatal(t *testing.T) {
	for _, health := range []probe.PoolHealth{probe.HealthFaulted, probe.HealthUnavail} {
		snap := healthySnapshot()
		snap.Pools = []probe.Pool{{Name: "rpool", Health: health}}

		catalogue := checks.Catalogue(opts)
		results := checks.Run(testRC(t), catalogue, snap, nil)

		assert.Equal(t, checks.Fail, findResult(t, results, "pool-health").Severity)
		assert.True(t, verdict.Summarize(results, checks.FatalSet(catalogue)).Fatal)
	}
}

func TestNoPoolsSkipsPoolChecks(t *testing.T) {
	snap := healthySnapshot()
	snap.Pools = nil
	snap.Datasets = nil

	catalogue := checks.Catalogue(opts)
	results := checks.Run(testRC(t), catalogue, snap, nil)

	assert.False(t, hasResult(results, "pool-health"))
	assert.False(t, hasResult(results, "pool-accessibility"))
	assert.False(t, hasResult(results, "dataset-mounts"))

	// Skips never affect fatality.
	assert.False(t, verdict.Summarize(results, checks.FatalSet(catalogue)).Fatal)
}

func TestTraditionalBootSkipsBootMenuChecks(t *testing.T) {
	snap := healthySnapshot()
	snap.BootMethod = probe.BootTraditional

	results := checks.Run(testRC(t), checks.Catalogue(opts), snap, nil)

	assert.False(t, hasResult(results, "esp-mounted"))
	assert.False(t, hasResult(results, "bootmenu-efi-image"))
}

func TestUnmountedESPOnBootMenuIsFatal(t *testing.T) {
	snap := healthySnapshot()
	snap.ESPMounted = false

	catalogue := checks.Catalogue(opts)
	results := checks.Run(testRC(t), catalogue, snap, nil)

	r := findResult(t, results, "esp-mounted")
	assert.Equal(t, checks.Fail, r.Severity)
	assert.True(t, verdict.Summarize(results, checks.FatalSet(catalogue)).Fatal)

	// The image check needs a mounted ESP to say anything.
	assert.False(t, hasResult(results, "bootmenu-efi-image"))
}

func TestMissingBootMenuImageWarnsButNotFatal(t *testing.T) {
	snap := healthySnapshot()
	snap.BootMenuImagePresent = false

	catalogue := checks.Catalogue(opts)
	results := checks.Run(testRC(t), catalogue, snap, nil)

	r := findResult(t, results, "bootmenu-efi-image")
	assert.Equal(t, checks.Fail, r.Severity)
	assert.Contains(t, r.Message, "backup image exists")
	assert.False(t, verdict.Summarize(results, checks.FatalSet(catalogue)).Fatal)
}

func TestUnmountedDatasetWarnsButNotFatal(t *testing.T) {
	snap := healthySnapshot()
	snap.Datasets = []probe.Dataset{
		{Name: "rpool/home", Mountpoint: "/home", Mounted: false},
	}

	catalogue := checks.Catalogue(opts)
	results := checks.Run(testRC(t), catalogue, snap, nil)

	r := findResult(t, results, "dataset-mounts")
	assert.Equal(t, checks.Fail, r.Severity)
	assert.Contains(t, r.Message, "rpool/home")
	assert.False(t, verdict.Summarize(results, checks.FatalSet(catalogue)).Fatal)
}

func TestDiskSpaceThresholds(t *testing.T) {
	tests := []struct {
		name    string
		availMB int64
		want    checks.Severity
	}{
		{"plenty", 4096, checks.Pass},
		{"between thresholds", 512, checks.Warn},
		{"below hard minimum", 128, checks.Fail},
		{"unmeasured", probe.SpaceUnknown, checks.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := healthySnapshot()
			snap.BootAvailMB = tt.availMB

			results := checks.Run(testRC(t), checks.Catalogue(opts), snap, nil)
			assert.Equal(t, tt.want, findResult(t, results, "disk-space").Severity)
		})
	}
}

func TestLooseKeyPermissionsWarn(t *testing.T) {
	snap := healthySnapshot()
	snap.KeyFiles = []probe.KeyFile{{Path: "/etc/zfs/keys/rpool.key", Mode: 0o644}}

	catalogue := checks.Catalogue(opts)
	results := checks.Run(testRC(t), catalogue, snap, nil)

	r := findResult(t, results, "key-permissions")
	assert.Equal(t, checks.Fail, r.Severity)
	assert.False(t, verdict.Summarize(results, checks.FatalSet(catalogue)).Fatal)
}

func TestNoKeyFilesSkipsPermissionCheck(t *testing.T) {
	snap := healthySnapshot()
	snap.KeyFiles = nil

	results := checks.Run(testRC(t), checks.Catalogue(opts), snap, nil)
	assert.False(t, hasResult(results, "key-permissions"))
}

func TestUnknownFactsWarnNotPass(t *testing.T) {
	snap := healthySnapshot()
	snap.InitramfsHasStorageModule = probe.PresenceUnknown
	snap.StorageModuleKernel = probe.VersionUnknown
	snap.HostIDFromFile = ""

	results := checks.Run(testRC(t), checks.Catalogue(opts), snap, nil)

	assert.Equal(t, checks.Warn, findResult(t, results, "initramfs-storage-module").Severity)
	assert.Equal(t, checks.Warn, findResult(t, results, "kernel-module-match").Severity)
	assert.Equal(t, checks.Warn, findResult(t, results, "hostid-consistency").Severity)
}

func TestFatalFailureDoesNotShortCircuit(t *testing.T) {
	snap := healthySnapshot()
	snap.StorageModuleLoaded = false // first check in the catalogue, fatal

	catalogue := checks.Catalogue(opts)
	results := checks.Run(testRC(t), catalogue, snap, nil)

	// Every applicable check after the failure still ran.
	require.Equal(t, checks.Fail, results[0].Severity)
	assert.True(t, hasResult(results, "disk-space"))
	assert.True(t, hasResult(results, "kernel-module-match"))
}

func TestRunnerPreservesRegistrationOrder(t *testing.T) {
	catalogue := checks.Catalogue(opts)
	results := checks.Run(testRC(t), catalogue, healthySnapshot(), nil)

	var expected []string
	for _, c := range catalogue {
		expected = append(expected, c.Name)
	}
	var got []string
	for _, r := range results {
		got = append(got, r.CheckName)
	}
	// Healthy snapshot makes every check applicable.
	assert.Equal(t, expected, got)
}

func TestKernelModuleMismatchWarns(t *testing.T) {
	snap := healthySnapshot()
	snap.StorageModuleKernel = "6.8.0-43-generic"

	catalogue := checks.Catalogue(opts)
	results := checks.Run(testRC(t), catalogue, snap, nil)

	r := findResult(t, results, "kernel-module-match")
	assert.Equal(t, checks.Fail, r.Severity)
	assert.False(t, verdict.Summarize(results, checks.FatalSet(catalogue)).Fatal)
}
