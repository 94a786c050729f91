// pkg/zupdate_io/context.go

package zupdate_io

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/telemetry"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_err"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RuntimeContext carries everything one command invocation needs: a context
// for cancellation, a scoped logger, a telemetry span and the start time.
type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	Command    string
	Attributes map[string]string
}

// NewContext sets up tracing and logging for a command run.
func NewContext(ctx context.Context, cmdName string) *RuntimeContext {
	ctx, span := telemetry.Start(ctx, cmdName)
	traceID := span.SpanContext().TraceID().String()

	logger := zap.L().With(
		zap.String("command", cmdName),
		zap.String("trace_id", traceID),
	).Named(cmdName)

	logEnv(logger)

	return &RuntimeContext{
		Ctx:        ctx,
		Span:       span,
		Log:        logger,
		Timestamp:  time.Now(),
		Command:    cmdName,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an error.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = cerr.AssertionFailedf("panic: %v", r)
		rc.Log.Error("panic recovered", zap.Any("panic", r))
	}
}

// End logs the outcome and records the invocation as a telemetry span.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	duration := time.Since(rc.Timestamp)
	success := *errPtr == nil

	if success {
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
	} else {
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(*errPtr))
	}

	tags := map[string]string{
		"os":         runtime.GOOS,
		"args":       strings.Join(os.Args[1:], " "),
		"error_type": classifyError(*errPtr),
	}
	for k, v := range rc.Attributes {
		tags[k] = v
	}
	telemetry.TrackCommand(rc.Ctx, rc.Command, success, duration.Milliseconds(), tags)

	_ = rc.Log.Sync()
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if zupdate_err.IsExpectedUserError(err) {
		return "user"
	}
	return "system"
}

func logEnv(log *zap.Logger) {
	log.Debug("runtime context",
		zap.Int("uid", os.Getuid()),
		zap.Int("euid", os.Geteuid()),
	)
	if exe, err := os.Executable(); err == nil {
		log.Debug("executable path", zap.String("path", exe))
	}
}
