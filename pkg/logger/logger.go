// pkg/logger/logger.go

package logger

import (
	"go.uber.org/zap"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

var (
	log        *zap.Logger
	runLogPath string
)

// SetLogger installs l as the package logger and the zap/otelzap globals.
func SetLogger(l *zap.Logger) {
	log = l
	zap.ReplaceGlobals(l)
	otelzap.ReplaceGlobals(otelzap.New(l))
}

// L returns the package logger, or nil if logging is uninitialized.
func L() *zap.Logger {
	return log
}

// GetLogger returns the package logger, installing a console fallback if
// nothing has been initialized yet.
func GetLogger() *zap.Logger {
	if log == nil {
		SetLogger(NewFallbackLogger())
	}
	return log
}

// RunLogPath returns the timestamped log file this run is writing to.
// Empty when only console logging is available. The precheck artifact
// records this path so the post-phase can point the operator at the
// pre-phase audit trail.
func RunLogPath() string {
	return runLogPath
}

// Sync flushes buffered log entries.
func Sync() error {
	if log == nil {
		return nil
	}
	return log.Sync()
}
