/* pkg/logger/paths.go */

package logger

import (
	"os"
	"path/filepath"
	"time"
)

// runFileName is computed once so every candidate directory resolves to the
// same per-run file. Each invocation of zupdate gets its own append-only log.
var runFileName = "zupdate-" + time.Now().Format("20060102-150405") + ".log"

// PlatformLogPaths returns candidate log file paths in order of priority.
func PlatformLogPaths() []string {
	return []string{
		filepath.Join("/var/log/zupdate", runFileName),       // best if writable (root)
		filepath.Join(xdgStateDir(), "zupdate", runFileName), // user-local fallback
		filepath.Join("/tmp/zupdate", runFileName),           // ephemeral
	}
}

func xdgStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return dir
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}

// ResolveLogPath finds the first writable candidate path, creating its
// directory. Returns "" when nothing is writable.
func ResolveLogPath() string {
	for _, path := range PlatformLogPaths() {
		if err := EnsureLogPermissions(path); err != nil {
			continue
		}
		return path
	}
	return ""
}

// EnsureLogPermissions creates the log directory and file with owner-only
// access. Run logs can quote tool output that references key locations, so
// they are locked down the same way the artifact is.
func EnsureLogPermissions(logFilePath string) error {
	dir := filepath.Dir(logFilePath)

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	} else if err := os.Chmod(dir, 0700); err != nil {
		return err
	}

	file, err := os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}
	return os.Chmod(logFilePath, 0600)
}
