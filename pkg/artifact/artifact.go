// pkg/artifact/artifact.go
//
// The artifact is the durable handoff between the two phases: the pre-phase
// writes a flat KEY=value snapshot of what it observed and queued, the
// post-phase reads it back to reason about drift. Single writer, single
// reader, replaced wholesale on every successful precheck.

package artifact

import (
	"os"
	"strconv"
	"time"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/renameio"
	"github.com/joho/godotenv"
)

// Documented artifact keys. The post-phase parses these defensively: any
// absent key falls back to its zero default, never to an error.
const (
	KeyBootMethod     = "BOOT_METHOD"
	KeyPoolsPresent   = "POOLS_PRESENT"
	KeyESPMounted     = "ESP_MOUNTED"
	KeyESPPath        = "ESP_PATH"
	KeyStorageCount   = "STORAGE_COUNT"
	KeyBootMenuCount  = "BOOTMENU_COUNT"
	KeyInitramfsCount = "INITRAMFS_COUNT"
	KeyKernelCount    = "KERNEL_COUNT"
	KeyOtherCount     = "OTHER_COUNT"
	KeyTotalCount     = "TOTAL_COUNT"
	KeyKernelVersion  = "KERNEL_VERSION"
	KeyHostname       = "HOSTNAME"
	KeyCheckTime      = "CHECK_TIME"
	KeyLogFile        = "LOG_FILE"
)

// Record is the parsed artifact.
type Record struct {
	BootMethod     probe.BootMethod
	PoolsPresent   bool
	ESPMounted     bool
	ESPPath        string
	PendingUpdates probe.PendingUpdates
	KernelVersion  string
	Hostname       string
	CheckTime      time.Time
	LogFile        string
}

// FromSnapshot builds the record a successful precheck persists.
func FromSnapshot(snap *probe.SystemSnapshot, logFile string) Record {
	return Record{
		BootMethod:     snap.BootMethod,
		PoolsPresent:   snap.HasPools(),
		ESPMounted:     snap.ESPMounted,
		ESPPath:        snap.ESPPath,
		PendingUpdates: snap.PendingUpdates,
		KernelVersion:  snap.RunningKernelVersion,
		Hostname:       snap.Hostname,
		CheckTime:      snap.ObservedAt,
		LogFile:        logFile,
	}
}

// Write serializes the record and atomically replaces the artifact file.
// Permissions are owner-only: the artifact references key-adjacent paths.
func Write(path string, rec Record) error {
	env := map[string]string{
		KeyBootMethod:     string(rec.BootMethod),
		KeyPoolsPresent:   strconv.FormatBool(rec.PoolsPresent),
		KeyESPMounted:     strconv.FormatBool(rec.ESPMounted),
		KeyESPPath:        rec.ESPPath,
		KeyStorageCount:   strconv.Itoa(rec.PendingUpdates.Count(probe.CategoryStorage)),
		KeyBootMenuCount:  strconv.Itoa(rec.PendingUpdates.Count(probe.CategoryBootMenu)),
		KeyInitramfsCount: strconv.Itoa(rec.PendingUpdates.Count(probe.CategoryInitramfsBuilder)),
		KeyKernelCount:    strconv.Itoa(rec.PendingUpdates.Count(probe.CategoryKernel)),
		KeyOtherCount:     strconv.Itoa(rec.PendingUpdates.Count(probe.CategoryOther)),
		KeyTotalCount:     strconv.Itoa(rec.PendingUpdates.Total),
		KeyKernelVersion:  rec.KernelVersion,
		KeyHostname:       rec.Hostname,
		KeyCheckTime:      rec.CheckTime.UTC().Format(time.RFC3339),
		KeyLogFile:        rec.LogFile,
	}

	content, err := godotenv.Marshal(env)
	if err != nil {
		return cerr.Wrap(err, "marshal artifact")
	}

	if err := renameio.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
		return cerr.Wrapf(err, "write artifact %s", path)
	}
	return nil
}

// Read parses the artifact at path. A missing file is not an error — it is
// the first-ever run or a standalone postcheck — and yields (nil, nil) so
// drift comparisons are skipped rather than failed.
func Read(path string) (*Record, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	env, err := godotenv.Read(path)
	if err != nil {
		return nil, cerr.Wrapf(err, "read artifact %s", path)
	}

	pending := probe.NewPendingUpdates()
	pending.Counts[probe.CategoryStorage] = atoi(env[KeyStorageCount])
	pending.Counts[probe.CategoryBootMenu] = atoi(env[KeyBootMenuCount])
	pending.Counts[probe.CategoryInitramfsBuilder] = atoi(env[KeyInitramfsCount])
	pending.Counts[probe.CategoryKernel] = atoi(env[KeyKernelCount])
	pending.Counts[probe.CategoryOther] = atoi(env[KeyOtherCount])
	pending.Total = atoi(env[KeyTotalCount])

	rec := &Record{
		BootMethod:     probe.ParseBootMethod(env[KeyBootMethod]),
		PoolsPresent:   parseBool(env[KeyPoolsPresent]),
		ESPMounted:     parseBool(env[KeyESPMounted]),
		ESPPath:        env[KeyESPPath],
		PendingUpdates: pending,
		KernelVersion:  env[KeyKernelVersion],
		Hostname:       env[KeyHostname],
		CheckTime:      parseTime(env[KeyCheckTime]),
		LogFile:        env[KeyLogFile],
	}
	return rec, nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
