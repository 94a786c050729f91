// pkg/execute/execute.go

// Package execute runs external tools with structured logging, captured
// output and a bounded timeout. Nothing here ever shells out: commands run
// with an explicit argv.
package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/telemetry"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/zupdate_err"
	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Options controls a single command invocation.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Capture bool
	Timeout time.Duration // zero means DefaultTimeout
	Logger  *zap.Logger
}

// DefaultTimeout bounds every external tool invocation. The verification
// tools this wraps (zpool, zfs, lsinitrd, efibootmgr, apt) answer in well
// under this on a healthy host; a hang past it is itself a finding.
const DefaultTimeout = 30 * time.Second

// Run executes a command and returns its combined output when Capture is set.
func Run(ctx context.Context, opts Options) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.L()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	cmdStr := buildCommandString(opts.Command, opts.Args...)
	runCtx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.String("args", strings.Join(opts.Args, " ")),
	)

	logger.Debug("Starting execution", zap.String("command", cmdStr))

	cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	output := buf.String()

	if err != nil {
		summary := zupdate_err.ExtractSummary(output, 2)
		span.RecordError(err)
		logger.Debug("Execution failed",
			zap.String("command", cmdStr),
			zap.String("summary", summary),
			zap.Error(err),
		)
		if runCtx.Err() == context.DeadlineExceeded {
			return output, cerr.Wrapf(err, "command %q timed out after %s", cmdStr, defaultTimeout(opts.Timeout))
		}
		return output, cerr.Wrapf(err, "command %q failed: %s", cmdStr, summary)
	}

	logger.Debug("Execution succeeded", zap.String("command", cmdStr))

	if opts.Capture {
		return output, nil
	}
	return "", nil
}

// RunSimple executes a command, discarding output.
func RunSimple(ctx context.Context, cmd string, args ...string) error {
	_, err := Run(ctx, Options{Command: cmd, Args: args})
	return err
}

// Capture executes a command and returns its trimmed combined output.
func Capture(ctx context.Context, cmd string, args ...string) (string, error) {
	out, err := Run(ctx, Options{Command: cmd, Args: args, Capture: true})
	return strings.TrimSpace(out), err
}

// Exists reports whether a tool can be resolved in PATH.
func Exists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
