// Package debugger implements single-test interactive execution: a
// visible browser, forced concurrency of one, and an operator pause
// before every step, the way the teacher's tui packages gate on operator
// input between actions rather than running to completion unattended.
package debugger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"toolproof/internal/config"
	"toolproof/internal/registry"
	"toolproof/internal/runctx"
	"toolproof/internal/snapshot"
	"toolproof/internal/step"
	"toolproof/internal/testdoc"
	"toolproof/internal/testrun"
)

// Run executes a single test's steps with a headed browser, printing the
// upcoming step and its resolved values before each one and blocking
// until the operator presses Enter.
func Run(doc *testdoc.Document, steps []testdoc.Step, reg *registry.Registry, settings config.RunSettings, openPage func(context.Context) (runctx.Page, error), out io.Writer, in io.Reader) *testrun.Outcome {
	settings.Debugger = true
	reader := bufio.NewReader(in)

	deps := testrun.Deps{
		Registry: reg,
		Settings: settings,
		Prompter: snapshot.NewPrompter(),
		Doc:      doc,
		OpenPage: openPage,
		PreStep: func(stepIx int, st testdoc.Step, ctx *runctx.Context, placeholders map[string]string) {
			printStep(out, stepIx, st, ctx, placeholders, settings.PlaceholderDelimiter)
			fmt.Fprint(out, "press enter to run this step... ")
			_, _ = reader.ReadString('\n')
		},
	}
	return testrun.Run(doc.Name, steps, deps)
}

func printStep(out io.Writer, stepIx int, st testdoc.Step, ctx *runctx.Context, placeholders map[string]string, delim byte) {
	fmt.Fprintf(out, "\n--- step %d: %s\n", stepIx, describe(st))
	if len(st.Values) > 0 {
		fmt.Fprintln(out, "  values:")
		for k, v := range st.Values {
			if resolved, err := step.Substitute(v, delim, placeholders); err == nil {
				v = resolved
			}
			fmt.Fprintf(out, "    %s = %s\n", k, v)
		}
	}
	if len(st.PlaceholderOverlay) > 0 {
		fmt.Fprintln(out, "  bindings:")
		for k, v := range st.PlaceholderOverlay {
			fmt.Fprintf(out, "    %s = %s\n", k, v)
		}
	}
	fmt.Fprintf(out, "  temp_dir: %s\n", ctx.TempDir)
	if ctx.ServePort != 0 {
		fmt.Fprintf(out, "  serve_port: %d\n", ctx.ServePort)
	}
}

func describe(st testdoc.Step) string {
	switch st.Kind {
	case testdoc.KindSnapshot, testdoc.KindExtract:
		return st.RetrievalSentence
	default:
		return st.Sentence
	}
}

// Stdin wraps os.Stdin for the CLI entrypoint, named to keep the package
// free of an implicit os.Stdin reference inside Run's signature.
func Stdin() io.Reader { return os.Stdin }
