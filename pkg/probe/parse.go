// pkg/probe/parse.go
//
// Pure parsers for external tool output. Each one extracts well-defined
// tokens by position or pattern and falls back to a sentinel on anything
// malformed; no raw tool text leaks past this file.

package probe

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// ParsePoolList parses `zpool list -H -o name,health,cap` output.
func ParsePoolList(output string) []Pool {
	pools := make([]Pool, 0)
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		pools = append(pools, Pool{
			Name:            fields[0],
			Health:          ParsePoolHealth(fields[1]),
			CapacityPercent: parseCapacityPercent(fields[2]),
		})
	}
	return pools
}

// ParseDatasetList parses `zfs list -H -o name,mountpoint,mounted` output.
func ParseDatasetList(output string) []Dataset {
	datasets := make([]Dataset, 0)
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			continue
		}
		mountpoint := fields[1]
		if mountpoint == "-" {
			mountpoint = ""
		}
		datasets = append(datasets, Dataset{
			Name:       fields[0],
			Mountpoint: mountpoint,
			Mounted:    fields[2] == "yes",
		})
	}
	return datasets
}

// ParseUserlandVersion extracts the userland tools version from
// `zfs version` output (first line, e.g. "zfs-2.2.4-1ubuntu2").
func ParseUserlandVersion(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "zfs-kmod-") {
			continue
		}
		if v := strings.TrimPrefix(line, "zfs-"); v != line {
			return v
		}
	}
	return VersionUnknown
}

// ParseModuleLoaded reports whether a module name appears in lsmod output.
func ParseModuleLoaded(output, module string) bool {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) > 0 && fields[0] == module {
			return true
		}
	}
	return false
}

// ParseModinfoValue trims a single-field `modinfo -F <field>` response,
// returning the unknown sentinel for empty output.
func ParseModinfoValue(output string) string {
	v := strings.TrimSpace(output)
	if v == "" {
		return VersionUnknown
	}
	return v
}

// ParseVermagicKernel extracts the kernel release a module was built
// against from its vermagic string ("6.8.0-45-generic SMP mod_unload ...").
func ParseVermagicKernel(output string) string {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return VersionUnknown
	}
	return fields[0]
}

// ParseUpgradable parses `apt list --upgradable` output into categorized
// pending-update counts. Unrecognized packages land in the other bucket, so
// the categorized sum can trail the total but never exceeds it per bucket.
func ParseUpgradable(output string) PendingUpdates {
	pending := NewPendingUpdates()
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "Listing") {
			continue
		}
		name, _, ok := strings.Cut(line, "/")
		if !ok {
			continue
		}
		pending.Counts[categorizePackage(name)]++
		pending.Total++
	}
	return pending
}

func categorizePackage(name string) UpdateCategory {
	switch {
	case strings.HasPrefix(name, "zfs") && !strings.Contains(name, "bootmenu"),
		strings.HasPrefix(name, "spl"),
		strings.HasPrefix(name, "libzfs"),
		strings.HasPrefix(name, "libzpool"):
		return CategoryStorage
	case strings.Contains(name, "zfsbootmenu"):
		return CategoryBootMenu
	case strings.HasPrefix(name, "dracut"), strings.HasPrefix(name, "initramfs-tools"):
		return CategoryInitramfsBuilder
	case strings.HasPrefix(name, "linux-image"),
		strings.HasPrefix(name, "linux-headers"),
		strings.HasPrefix(name, "linux-modules"),
		strings.HasPrefix(name, "linux-generic"):
		return CategoryKernel
	default:
		return CategoryOther
	}
}

// ParseInitramfsHasModule reports whether a dracut module appears in
// `lsinitrd -m` output.
func ParseInitramfsHasModule(output, module string) bool {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		if strings.TrimSpace(scanner.Text()) == module {
			return true
		}
	}
	return false
}

// ParseBootEntries infers the boot method from efibootmgr output: any boot
// entry naming ZFSBootMenu means the host boots through the menu.
func ParseBootEntries(output string) BootMethod {
	lower := strings.ToLower(output)
	if strings.Contains(lower, "zfsbootmenu") || strings.Contains(lower, "zbm") {
		return BootMenu
	}
	return BootTraditional
}

// ParseHostIDFile decodes the 4-byte little-endian /etc/hostid format into
// the 8-hex-digit string the hostid command prints. Returns "" on any
// malformed content.
func ParseHostIDFile(data []byte) string {
	if len(data) < 4 {
		return ""
	}
	return fmt.Sprintf("%08x", binary.LittleEndian.Uint32(data[:4]))
}

// parseCapacityPercent turns zpool's "55%" into 55, clamped to 0-100;
// anything malformed becomes CapacityUnknown.
func parseCapacityPercent(s string) int {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 100 {
		return CapacityUnknown
	}
	return n
}
