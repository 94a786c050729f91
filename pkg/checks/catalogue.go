// pkg/checks/catalogue.go

package checks

import (
	"fmt"
	"strings"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/artifact"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
)

// Options carries the tunables individual checks need.
type Options struct {
	DiskHardMinMB int64
	DiskSoftMinMB int64
}

// Catalogue returns the ordered check table. Order matters: later checks may
// assume facts surfaced by earlier ones (module version before the
// version-match check), and the report lists results in this order.
func Catalogue(opts Options) []Check {
	return []Check{
		{
			Name:        "storage-module-loaded",
			Description: "ZFS kernel module is loaded",
			FatalOnFail: true,
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				if !snap.StorageModuleLoaded {
					return result("storage-module-loaded", Fail, "zfs module absent from loaded-module list")
				}
				return result("storage-module-loaded", Pass, fmt.Sprintf("zfs module loaded (version %s)", snap.StorageModuleVersion))
			},
		},
		{
			Name:        "storage-userland-tools",
			Description: "zpool and zfs control commands are present",
			FatalOnFail: true,
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				if !snap.UserlandToolsPresent {
					return result("storage-userland-tools", Fail, "zpool/zfs commands not found in PATH")
				}
				return result("storage-userland-tools", Pass, fmt.Sprintf("userland tools present (version %s)", snap.StorageUserlandVersion))
			},
		},
		{
			Name:        "pool-health",
			Description: "every pool reports ONLINE",
			FatalOnFail: true,
			Applies:     poolsExist,
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				var unhealthy []string
				for _, p := range snap.Pools {
					if p.Health != probe.HealthOnline {
						unhealthy = append(unhealthy, fmt.Sprintf("%s=%s", p.Name, p.Health))
					}
				}
				if len(unhealthy) > 0 {
					return result("pool-health", Fail, "pool health not ONLINE: "+strings.Join(unhealthy, ", "))
				}
				return result("pool-health", Pass, fmt.Sprintf("%d pool(s) ONLINE", len(snap.Pools)))
			},
		},
		{
			Name:        "pool-accessibility",
			Description: "zpool status answers for every pool",
			FatalOnFail: true,
			Applies:     poolsExist,
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				if !snap.PoolsAccessible {
					return result("pool-accessibility", Fail, "zpool status reported pools that cannot be queried")
				}
				return result("pool-accessibility", Pass, "all pools answer status queries")
			},
		},
		{
			Name:        "initramfs-builder-present",
			Description: "initramfs builder is installed",
			FatalOnFail: true,
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				if !snap.InitramfsBuilderPresent {
					return result("initramfs-builder-present", Fail, "no initramfs builder (dracut or update-initramfs) found")
				}
				return result("initramfs-builder-present", Pass, fmt.Sprintf("initramfs builder present (version %s)", snap.InitramfsBuilderVersion))
			},
		},
		{
			Name:        "initramfs-storage-module",
			Description: "built initramfs contains the ZFS module",
			FatalOnFail: true,
			Applies: func(snap *probe.SystemSnapshot, prior *artifact.Record) bool {
				return snap.InitramfsBuilderPresent
			},
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				switch snap.InitramfsHasStorageModule {
				case probe.PresenceYes:
					return result("initramfs-storage-module", Pass, "initramfs for the running kernel contains zfs")
				case probe.PresenceNo:
					return result("initramfs-storage-module", Fail, "zfs absent from the initramfs for the running kernel")
				default:
					return result("initramfs-storage-module", Warn, "could not inspect the initramfs; verify it contains zfs before rebooting")
				}
			},
		},
		{
			Name:        "esp-mounted",
			Description: "EFI system partition is mounted on boot-menu systems",
			FatalOnFail: true,
			Applies:     bootMenuOnly,
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				if !snap.ESPMounted {
					return result("esp-mounted", Fail, fmt.Sprintf("ESP not mounted at %s and no candidate device found", snap.ESPPath))
				}
				return result("esp-mounted", Pass, "ESP mounted at "+snap.ESPPath)
			},
		},
		{
			Name:        "bootmenu-efi-image",
			Description: "boot-menu EFI image exists on the ESP",
			FatalOnFail: false,
			Applies: func(snap *probe.SystemSnapshot, prior *artifact.Record) bool {
				return bootMenuOnly(snap, prior) && snap.ESPMounted
			},
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				if snap.BootMenuImagePresent {
					return result("bootmenu-efi-image", Pass, "boot-menu EFI image present")
				}
				if snap.BootMenuBackupPresent {
					return result("bootmenu-efi-image", Fail, "boot-menu EFI image missing; backup image exists")
				}
				return result("bootmenu-efi-image", Fail, "boot-menu EFI image missing and no backup found")
			},
		},
		{
			Name:        "dataset-mounts",
			Description: "every dataset with a real mountpoint is mounted",
			FatalOnFail: false,
			Applies: func(snap *probe.SystemSnapshot, prior *artifact.Record) bool {
				return snap.HasPools() && len(snap.Datasets) > 0
			},
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				var unmounted []string
				for _, d := range snap.Datasets {
					if d.HasRealMountpoint() && !d.Mounted {
						unmounted = append(unmounted, d.Name)
					}
				}
				if len(unmounted) > 0 {
					return result("dataset-mounts", Fail, "datasets not mounted: "+strings.Join(unmounted, ", "))
				}
				return result("dataset-mounts", Pass, fmt.Sprintf("%d dataset(s) mounted where expected", len(snap.Datasets)))
			},
		},
		{
			Name:        "hostid-consistency",
			Description: "hostid command matches the on-disk hostid file",
			FatalOnFail: false,
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				if snap.HostIDFromCommand == "" || snap.HostIDFromFile == "" {
					return result("hostid-consistency", Warn, "hostid could not be read from both sources; pools may not import at boot")
				}
				if snap.HostIDFromCommand != snap.HostIDFromFile {
					return result("hostid-consistency", Fail, fmt.Sprintf("hostid mismatch: command=%s file=%s", snap.HostIDFromCommand, snap.HostIDFromFile))
				}
				return result("hostid-consistency", Pass, "hostid consistent: "+snap.HostIDFromCommand)
			},
		},
		{
			Name:        "key-permissions",
			Description: "encryption keys are owner-only",
			FatalOnFail: false,
			Applies: func(snap *probe.SystemSnapshot, prior *artifact.Record) bool {
				return len(snap.KeyFiles) > 0
			},
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				var loose []string
				for _, k := range snap.KeyFiles {
					if k.Mode&0o077 != 0 {
						loose = append(loose, fmt.Sprintf("%s (%04o)", k.Path, k.Mode))
					}
				}
				if len(loose) > 0 {
					return result("key-permissions", Fail, "key files readable beyond owner: "+strings.Join(loose, ", "))
				}
				return result("key-permissions", Pass, fmt.Sprintf("%d key file(s) locked to owner", len(snap.KeyFiles)))
			},
		},
		{
			Name:        "disk-space",
			Description: "boot filesystem has headroom for new kernels and images",
			FatalOnFail: true,
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				switch {
				case snap.BootAvailMB == probe.SpaceUnknown:
					return result("disk-space", Warn, "boot filesystem headroom could not be measured")
				case snap.BootAvailMB < opts.DiskHardMinMB:
					return result("disk-space", Fail, fmt.Sprintf("only %d MiB free on the boot filesystem (hard minimum %d MiB)", snap.BootAvailMB, opts.DiskHardMinMB))
				case snap.BootAvailMB < opts.DiskSoftMinMB:
					return result("disk-space", Warn, fmt.Sprintf("%d MiB free on the boot filesystem (below comfortable %d MiB)", snap.BootAvailMB, opts.DiskSoftMinMB))
				default:
					return result("disk-space", Pass, fmt.Sprintf("%d MiB free on the boot filesystem", snap.BootAvailMB))
				}
			},
		},
		{
			Name:        "kernel-module-match",
			Description: "ZFS module build references the running kernel",
			FatalOnFail: false,
			Eval: func(rc *zupdate_io.RuntimeContext, snap *probe.SystemSnapshot, prior *artifact.Record) CheckResult {
				if snap.StorageModuleKernel == probe.VersionUnknown || snap.RunningKernelVersion == "" {
					return result("kernel-module-match", Warn, "module build target unknown; cannot confirm it matches the running kernel")
				}
				if snap.StorageModuleKernel != snap.RunningKernelVersion {
					return result("kernel-module-match", Fail, fmt.Sprintf("zfs module built for %s but running kernel is %s", snap.StorageModuleKernel, snap.RunningKernelVersion))
				}
				return result("kernel-module-match", Pass, "zfs module matches running kernel "+snap.RunningKernelVersion)
			},
		},
	}
}

func poolsExist(snap *probe.SystemSnapshot, prior *artifact.Record) bool {
	return snap.HasPools()
}

func bootMenuOnly(snap *probe.SystemSnapshot, prior *artifact.Record) bool {
	return snap.BootMethod == probe.BootMenu
}
