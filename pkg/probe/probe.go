// pkg/probe/probe.go

package probe

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/config"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_io"
	"github.com/hashicorp/go-multierror"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Collect gathers a SystemSnapshot from the host's external tools. It never
// aborts on a missing or malformed fact: the affected field keeps its
// sentinel and the gap is accumulated into the returned error for logging.
// The snapshot is always usable, even alongside a non-nil error.
func Collect(rc *zupdate_io.RuntimeContext, cfg *config.Settings) (*SystemSnapshot, error) {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Probing system state")

	snap := &SystemSnapshot{
		ObservedAt:                time.Now(),
		StorageModuleVersion:      VersionUnknown,
		StorageModuleKernel:       VersionUnknown,
		StorageUserlandVersion:    VersionUnknown,
		InitramfsBuilderVersion:   VersionUnknown,
		InitramfsHasStorageModule: PresenceUnknown,
		BootAvailMB:               SpaceUnknown,
		ESPPath:                   cfg.ESPPath,
		PendingUpdates:            NewPendingUpdates(),
	}

	var gaps error
	gap := func(what string, err error) {
		gaps = multierror.Append(gaps, err)
		logger.Warn("Probe observation gap", zap.String("fact", what), zap.Error(err))
	}

	// Kernel and hostname come from the host itself, not tool output.
	if info, err := host.InfoWithContext(rc.Ctx); err == nil {
		snap.Hostname = info.Hostname
		snap.RunningKernelVersion = info.KernelVersion
	} else {
		gap("host info", err)
	}
	snap.LatestInstalledKernelVersion = latestInstalledKernel()

	probeStorageStack(rc, cfg, snap, gap)
	probePoolsAndDatasets(rc, cfg, snap, gap)
	probeBoot(rc, cfg, snap, gap)
	probeInitramfs(rc, cfg, snap, gap)
	probeHostID(rc, cfg, snap, gap)
	probeKeyFiles(cfg, snap)
	probePendingUpdates(rc, cfg, snap, gap)

	logger.Info("Probe complete",
		zap.String("running_kernel", snap.RunningKernelVersion),
		zap.String("latest_kernel", snap.LatestInstalledKernelVersion),
		zap.Int("pools", len(snap.Pools)),
		zap.Int("datasets", len(snap.Datasets)),
		zap.String("boot_method", string(snap.BootMethod)),
		zap.Int("pending_total", snap.PendingUpdates.Total),
	)
	return snap, gaps
}

func probeStorageStack(rc *zupdate_io.RuntimeContext, cfg *config.Settings, snap *SystemSnapshot, gap func(string, error)) {
	snap.UserlandToolsPresent = execute.Exists("zpool") && execute.Exists("zfs")

	if out, err := runTool(rc, cfg, "lsmod"); err == nil {
		snap.StorageModuleLoaded = ParseModuleLoaded(out, "zfs")
	} else {
		gap("loaded modules", err)
	}

	if out, err := runTool(rc, cfg, "modinfo", "-F", "version", "zfs"); err == nil {
		snap.StorageModuleVersion = ParseModinfoValue(out)
	} else {
		gap("storage module version", err)
	}

	if out, err := runTool(rc, cfg, "modinfo", "-F", "vermagic", "zfs"); err == nil {
		snap.StorageModuleKernel = ParseVermagicKernel(out)
	} else {
		gap("storage module vermagic", err)
	}

	if snap.UserlandToolsPresent {
		if out, err := runTool(rc, cfg, "zfs", "version"); err == nil {
			snap.StorageUserlandVersion = ParseUserlandVersion(out)
		} else {
			gap("storage userland version", err)
		}
	}
}

func probePoolsAndDatasets(rc *zupdate_io.RuntimeContext, cfg *config.Settings, snap *SystemSnapshot, gap func(string, error)) {
	if !snap.UserlandToolsPresent {
		return
	}

	if out, err := runTool(rc, cfg, "zpool", "list", "-H", "-o", "name,health,cap"); err == nil {
		snap.Pools = ParsePoolList(out)
	} else {
		gap("pool list", err)
	}

	// `zpool status -x` exits non-zero when any pool cannot be queried.
	if _, err := runTool(rc, cfg, "zpool", "status", "-x"); err == nil {
		snap.PoolsAccessible = true
	}

	if out, err := runTool(rc, cfg, "zfs", "list", "-H", "-o", "name,mountpoint,mounted"); err == nil {
		snap.Datasets = ParseDatasetList(out)
	} else {
		gap("dataset list", err)
	}
}

func probeBoot(rc *zupdate_io.RuntimeContext, cfg *config.Settings, snap *SystemSnapshot, gap func(string, error)) {
	if out, err := runTool(rc, cfg, "efibootmgr"); err == nil {
		snap.BootMethod = ParseBootEntries(out)
	} else {
		// Firmware without EFI variables (or a BIOS host) is a traditional boot.
		snap.BootMethod = BootTraditional
		gap("EFI boot entries", err)
	}

	if out, err := runTool(rc, cfg, "findmnt", "-n", "-o", "TARGET", cfg.ESPPath); err == nil && strings.TrimSpace(out) != "" {
		snap.ESPMounted = true
		snap.ESPPath = strings.TrimSpace(out)
	}

	if matches, err := filepath.Glob(filepath.Join(cfg.ESPPath, cfg.BootMenuImageGlob)); err == nil && len(matches) > 0 {
		snap.BootMenuImagePresent = true
	}
	if matches, err := filepath.Glob(filepath.Join(cfg.ESPPath, cfg.BootMenuBackupGlob)); err == nil && len(matches) > 0 {
		snap.BootMenuBackupPresent = true
	}

	spacePath := cfg.ESPPath
	if !snap.ESPMounted {
		spacePath = "/boot"
	}
	if usage, err := disk.UsageWithContext(rc.Ctx, spacePath); err == nil {
		snap.BootAvailMB = int64(usage.Free / (1024 * 1024))
	} else {
		gap("boot filesystem usage", err)
	}
}

func probeInitramfs(rc *zupdate_io.RuntimeContext, cfg *config.Settings, snap *SystemSnapshot, gap func(string, error)) {
	switch {
	case execute.Exists("dracut"):
		snap.InitramfsBuilderPresent = true
		if out, err := runTool(rc, cfg, "dracut", "--version"); err == nil {
			snap.InitramfsBuilderVersion = ParseModinfoValue(out)
		}
	case execute.Exists("update-initramfs"):
		snap.InitramfsBuilderPresent = true
	}

	image := initramfsImage(snap.RunningKernelVersion)
	if image == "" {
		return
	}

	if execute.Exists("lsinitrd") {
		if out, err := runTool(rc, cfg, "lsinitrd", "-m", image); err == nil {
			if ParseInitramfsHasModule(out, "zfs") {
				snap.InitramfsHasStorageModule = PresenceYes
			} else {
				snap.InitramfsHasStorageModule = PresenceNo
			}
		} else {
			gap("initramfs module list", err)
		}
		return
	}

	if execute.Exists("lsinitramfs") {
		if out, err := runTool(rc, cfg, "lsinitramfs", image); err == nil {
			if strings.Contains(out, "zfs.ko") || strings.Contains(out, "/zfs/") {
				snap.InitramfsHasStorageModule = PresenceYes
			} else {
				snap.InitramfsHasStorageModule = PresenceNo
			}
		} else {
			gap("initramfs content list", err)
		}
	}
}

func probeHostID(rc *zupdate_io.RuntimeContext, cfg *config.Settings, snap *SystemSnapshot, gap func(string, error)) {
	if out, err := execute.Capture(rc.Ctx, "hostid"); err == nil {
		snap.HostIDFromCommand = out
	} else {
		gap("hostid command", err)
	}

	if data, err := os.ReadFile(cfg.HostIDFile); err == nil {
		snap.HostIDFromFile = ParseHostIDFile(data)
	}
}

func probeKeyFiles(cfg *config.Settings, snap *SystemSnapshot) {
	matches, err := filepath.Glob(cfg.KeyFileGlob)
	if err != nil {
		return
	}
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		snap.KeyFiles = append(snap.KeyFiles, KeyFile{
			Path: path,
			Mode: uint32(info.Mode().Perm()),
		})
	}
}

func probePendingUpdates(rc *zupdate_io.RuntimeContext, cfg *config.Settings, snap *SystemSnapshot, gap func(string, error)) {
	out, err := runTool(rc, cfg, "apt", "list", "--upgradable")
	if err != nil {
		gap("pending updates", err)
		return
	}
	snap.PendingUpdates = ParseUpgradable(out)
}

// latestInstalledKernel finds the newest kernel image under /boot by
// modification time. Empty when no image is present.
func latestInstalledKernel() string {
	matches, err := filepath.Glob("/boot/vmlinuz-*")
	if err != nil || len(matches) == 0 {
		return ""
	}

	var newest string
	var newestMod time.Time
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = path
			newestMod = info.ModTime()
		}
	}
	return strings.TrimPrefix(filepath.Base(newest), "vmlinuz-")
}

// initramfsImage returns the initramfs path for a kernel release, trying
// the Debian then the dracut naming convention.
func initramfsImage(kernel string) string {
	if kernel == "" {
		return ""
	}
	for _, candidate := range []string{
		"/boot/initrd.img-" + kernel,
		"/boot/initramfs-" + kernel + ".img",
	} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func runTool(rc *zupdate_io.RuntimeContext, cfg *config.Settings, name string, args ...string) (string, error) {
	out, err := execute.Run(rc.Ctx, execute.Options{
		Command: name,
		Args:    args,
		Capture: true,
		Timeout: cfg.CommandTimeout,
		Logger:  rc.Log,
	})
	return out, err
}
