// pkg/zupdate_err/errors.go

package zupdate_err

import (
	"errors"
	"fmt"
	"strings"
)

// UserError marks a condition the operator can act on directly: a failed
// verification, a missing tool, insufficient privilege. These exit non-zero
// but print without internal stack traces.
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}

// NewExpectedError wraps an error for softer UX handling.
func NewExpectedError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{cause: err}
}

// IsExpectedUserError checks if the error is marked as expected.
func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

// NewDependencyError reports a required external tool that could not be
// found. Verification aborts before any check runs when this is returned.
func NewDependencyError(tool string, hint string) error {
	return NewExpectedError(fmt.Errorf("required tool %q not found in PATH: %s", tool, hint))
}

// GetExitCode maps an error to the process exit status: 0 for nil,
// 1 for everything else (fatal check, missing dependency, internal fault).
func GetExitCode(err error) int {
	if err == nil {
		return 0
	}
	return 1
}

// ExtractSummary extracts a concise error summary from full tool output.
func ExtractSummary(output string, maxCandidates int) string {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "No output provided."
	}

	lines := strings.Split(trimmed, "\n")
	var candidates []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lowerLine := strings.ToLower(line)
		if strings.Contains(lowerLine, "error") ||
			strings.Contains(lowerLine, "failed") ||
			strings.Contains(lowerLine, "cannot") ||
			strings.Contains(lowerLine, "panic") ||
			strings.Contains(lowerLine, "fatal") ||
			strings.Contains(lowerLine, "timeout") {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) > 0 {
		if len(candidates) > maxCandidates {
			candidates = candidates[:maxCandidates]
		}
		return strings.Join(candidates, " - ")
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}

	return "Unknown error."
}
