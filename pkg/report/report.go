// pkg/report/report.go

package report

import (
	"fmt"
	"io"
	"os"

	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/checks"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/probe"
	"github.com/CodeMonkeyCybersecurity/zupdate/pkg/verdict"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

// Reporter renders verdicts and recommendations for the operator. Purely
// presentational: every rendered line is mirrored into the run log so the
// log file stays the complete audit trail.
type Reporter struct {
	out    io.Writer
	log    *zap.Logger
	styles styleSet
}

type styleSet struct {
	header lipgloss.Style
	pass   lipgloss.Style
	warn   lipgloss.Style
	fail   lipgloss.Style
	dim    lipgloss.Style
}

// New builds a Reporter writing to stdout, colored only on a terminal.
func New(log *zap.Logger) *Reporter {
	return NewWriter(os.Stdout, isatty.IsTerminal(os.Stdout.Fd()), log)
}

// NewWriter builds a Reporter against an arbitrary writer.
func NewWriter(out io.Writer, color bool, log *zap.Logger) *Reporter {
	if log == nil {
		log = zap.NewNop()
	}
	s := styleSet{
		header: lipgloss.NewStyle(),
		pass:   lipgloss.NewStyle(),
		warn:   lipgloss.NewStyle(),
		fail:   lipgloss.NewStyle(),
		dim:    lipgloss.NewStyle(),
	}
	if color {
		s.header = lipgloss.NewStyle().Bold(true)
		s.pass = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
		s.warn = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
		s.fail = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
		s.dim = lipgloss.NewStyle().Faint(true)
	}
	return &Reporter{out: out, log: log, styles: s}
}

func (r *Reporter) line(style lipgloss.Style, plain string) {
	fmt.Fprintln(r.out, style.Render(plain))
	r.log.Info(plain)
}

// Results renders every check outcome in execution order.
func (r *Reporter) Results(results []checks.CheckResult, fatalSet map[string]bool) {
	r.line(r.styles.header, "Verification results:")
	for _, res := range results {
		switch res.Severity {
		case checks.Pass:
			r.line(r.styles.pass, fmt.Sprintf("  ✓ %-26s %s", res.CheckName, res.Message))
		case checks.Warn:
			r.line(r.styles.warn, fmt.Sprintf("  ⚠ %-26s %s", res.CheckName, res.Message))
		case checks.Fail:
			marker := "✗"
			if fatalSet[res.CheckName] {
				marker = "✗!"
			}
			r.line(r.styles.fail, fmt.Sprintf("  %-2s %-25s %s", marker, res.CheckName, res.Message))
		}
	}
}

// Verdict renders the phase roll-up, listing failures prominently on a
// fatal run — the operator gets the complete picture, loudly.
func (r *Reporter) Verdict(phase string, v verdict.PhaseVerdict, results []checks.CheckResult) {
	r.line(r.styles.header, "")
	r.line(r.styles.header, fmt.Sprintf("%s verdict: %d passed, %d warnings, %d failed",
		phase, v.PassCount, v.WarnCount, v.FailCount))

	if !v.Fatal {
		if v.WarnCount > 0 {
			r.line(r.styles.warn, "Completed with warnings; review them before proceeding.")
		}
		return
	}

	r.line(r.styles.fail, "FATAL: the following checks block this update:")
	for _, f := range verdict.Failures(results) {
		r.line(r.styles.fail, fmt.Sprintf("  - %s: %s", f.CheckName, f.Message))
	}
}

// PreAdvice renders the pre-phase judgment of the pending update set.
func (r *Reporter) PreAdvice(j verdict.PreJudgment, pending probe.PendingUpdates) {
	r.line(r.styles.header, "")
	r.line(r.styles.header, fmt.Sprintf("Pending updates: %d total (storage=%d bootmenu=%d initramfs=%d kernel=%d other=%d)",
		pending.Total,
		pending.Count(probe.CategoryStorage),
		pending.Count(probe.CategoryBootMenu),
		pending.Count(probe.CategoryInitramfsBuilder),
		pending.Count(probe.CategoryKernel),
		pending.Count(probe.CategoryOther)))
	r.line(r.styles.dim, fmt.Sprintf("Update set classified as %s.", j.Class))
	if j.RebootForeseen {
		r.line(r.styles.warn, "A reboot will be required after applying these updates.")
	}
}

// PostAdvice renders the post-phase recommendation.
func (r *Reporter) PostAdvice(j verdict.PostJudgment) {
	r.line(r.styles.header, "")
	if !j.PriorKnown {
		r.line(r.styles.dim, "No pre-update artifact found; drift comparison skipped.")
	}
	if j.KernelMismatch {
		r.line(r.styles.warn, "Running kernel differs from the newest installed kernel (expected until reboot).")
	}
	if j.RebootRequired {
		r.line(r.styles.warn, "Recommendation: reboot required — "+j.Reason+".")
		return
	}
	r.line(r.styles.pass, "Recommendation: "+j.Reason+".")
}

// NothingPending renders the early-exit message for an idle pre-phase.
func (r *Reporter) NothingPending() {
	r.line(r.styles.pass, "No updates pending; nothing to verify.")
}

// ExitCode maps a verdict to the process exit status: 0 for ready or
// warnings only, 1 for a fatal phase.
func ExitCode(v verdict.PhaseVerdict) int {
	if v.Fatal {
		return 1
	}
	return 0
}
