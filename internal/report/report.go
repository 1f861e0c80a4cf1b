// Package report renders a completed run in two registers: a rich,
// colourised terminal view for interactive use, and a porcelain
// line-oriented form for scripts, matching the teacher's dual-mode
// tui/inbox vs. plain CLI output split.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/glamour"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"toolproof/internal/scheduler"
	"toolproof/internal/testrun"
)

// NewProgressSpinner starts a "running tests..." spinner for rich/TTY
// mode, grounded on muster's own CLI progress-spinner usage. Callers in
// porcelain mode or non-interactive output should not call this.
func NewProgressSpinner(w io.Writer) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " running tests..."
	s.Start()
	return s
}

// WritePorcelain emits one line per test: "PASS <name>", "FAIL <name>
// <kind> <step-index>", "FLAKY <name> <attempts>", "SKIP <name>".
func WritePorcelain(w io.Writer, records []scheduler.Record) {
	for _, r := range records {
		switch {
		case r.Flaky:
			fmt.Fprintf(w, "FLAKY %s %d\n", r.Name, r.Attempts)
		case r.Status == testrun.Passed:
			fmt.Fprintf(w, "PASS %s\n", r.Name)
		case r.Status == testrun.Skipped:
			fmt.Fprintf(w, "SKIP %s\n", r.Name)
		default:
			kind, stepIx := failureDetail(r)
			fmt.Fprintf(w, "FAIL %s %s %d\n", r.Name, kind, stepIx)
		}
	}
}

func failureDetail(r scheduler.Record) (kind string, stepIx int) {
	if r.Outcome == nil {
		return "unknown", -1
	}
	stepIx = r.Outcome.FailedAt
	if tagged, ok := asToolErr(r.Outcome.Err); ok {
		return string(tagged.Kind), tagged.StepIx
	}
	return "unknown", stepIx
}

// WriteRich renders a summary table plus per-failure diagnostics,
// grounded on go-pretty's table.Writer idiom as used in the pack's
// CLI formatters.
func WriteRich(w io.Writer, records []scheduler.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"TEST", "STATUS", "ATTEMPTS"})

	var passed, failed, skipped, flaky int
	for _, r := range records {
		status := statusCell(r)
		t.AppendRow(table.Row{r.Name, status, r.Attempts})
		switch {
		case r.Flaky:
			flaky++
			passed++
		case r.Status == testrun.Passed:
			passed++
		case r.Status == testrun.Skipped:
			skipped++
		default:
			failed++
		}
	}
	t.Render()

	fmt.Fprintf(w, "\n%s passed, %s failed, %s skipped",
		passStyle.Render(fmt.Sprintf("%d", passed)),
		failStyle.Render(fmt.Sprintf("%d", failed)),
		skipStyle.Render(fmt.Sprintf("%d", skipped)))
	if flaky > 0 {
		fmt.Fprintf(w, ", %s flaky", flakyStyle.Render(fmt.Sprintf("%d", flaky)))
	}
	fmt.Fprintln(w)

	for _, r := range records {
		if r.Status == testrun.Failed && r.Outcome != nil && r.Outcome.Err != nil {
			fmt.Fprintf(w, "\n%s", renderFailureDiagnostic(r.Name, r.Outcome.Err.Error()))
		}
	}
}

// renderFailureDiagnostic formats one failure as a markdown fenced block
// and renders it through glamour for rich-mode colourised output, falling
// back to the plain indented form if glamour can't render (e.g. a
// terminal glamour doesn't recognise).
func renderFailureDiagnostic(name, detail string) string {
	md := fmt.Sprintf("**%s**\n\n```\n%s\n```\n", name, detail)
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return fmt.Sprintf("%s\n%s\n", failStyle.Render(name), dimStyle.Render(indent(detail)))
	}
	return out
}

func statusCell(r scheduler.Record) string {
	switch {
	case r.Flaky:
		return flakyStyle.Render("FLAKY")
	case r.Status == testrun.Passed:
		return passStyle.Render(text.FgGreen.Sprint("PASS"))
	case r.Status == testrun.Skipped:
		return skipStyle.Render("SKIP")
	default:
		return failStyle.Render("FAIL")
	}
}

func indent(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}
