package report

import (
	"fmt"
	"io"
)

// Render writes the final human-readable report. Grading logic never touches
// the console; this is the only place results become text.
func Render(w io.Writer, o Overall) {
	for _, suite := range o.Suites {
		fmt.Fprintf(w, "== %s ==\n", suite.Suite)
		fmt.Fprintf(w, "passed %d/%d (%d%%)\n", suite.Passed, suite.Total, suite.PassRate())
		if len(suite.Failures) > 0 {
			fmt.Fprintln(w, "failing tests:")
			for _, res := range suite.Failures {
				fmt.Fprintf(w, "  %-40s %s\n", res.Test.DisplayName(), res.Status)
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "== overall ==\n")
	fmt.Fprintf(w, "passed %d/%d (%d%%)\n", o.Passed(), o.Total(), o.PassRate())
}

// RenderFailure writes the diagnostic detail for every failing test: the
// expected and produced excerpts on a mismatch, or the anomaly kind when one
// of the files is missing. Kept separate from Render so callers can choose a
// summary-only report.
func RenderFailure(w io.Writer, o Overall) {
	for _, suite := range o.Suites {
		for _, res := range suite.Failures {
			fmt.Fprintf(w, "--- %s / %s: %s\n", suite.Suite, res.Test.DisplayName(), res.Status)
			if res.Got == "" && res.Want == "" {
				continue
			}
			fmt.Fprintf(w, "expected:\n%s\n", res.Want)
			fmt.Fprintf(w, "got:\n%s\n", res.Got)
		}
	}
}
