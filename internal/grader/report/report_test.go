package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/amitnovick/compilation-ex3-testers/internal/grader/corpus"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/verdict"
)

func result(id string, status verdict.Status) verdict.TestResult {
	return verdict.TestResult{
		Test:   corpus.TestCase{ID: id, Suite: "official"},
		Status: status,
	}
}

func TestFold(t *testing.T) {
	results := []verdict.TestResult{
		result("t01", verdict.StatusPassed),
		result("t02", verdict.StatusFailed),
		result("t03", verdict.StatusMissingOutput),
		result("t04", verdict.StatusPassed),
		result("t05", verdict.StatusTimeout),
	}

	rep := Fold("official", results)
	if rep.Total != 5 || rep.Passed != 2 || rep.Failed != 3 {
		t.Fatalf("unexpected totals: %+v", rep)
	}
	if rep.Passed+rep.Failed != rep.Total {
		t.Fatalf("totals do not add up: %+v", rep)
	}
	if len(rep.Failures) != 3 {
		t.Fatalf("expected 3 failures, got %d", len(rep.Failures))
	}
	// Failures keep execution order.
	if rep.Failures[0].Test.ID != "t02" || rep.Failures[2].Test.ID != "t05" {
		t.Fatalf("failures out of order: %v, %v", rep.Failures[0].Test.ID, rep.Failures[2].Test.ID)
	}
}

func TestFoldEmpty(t *testing.T) {
	rep := Fold("unofficial", nil)
	if rep.Total != 0 || rep.Passed != 0 || rep.Failed != 0 {
		t.Fatalf("unexpected totals for empty fold: %+v", rep)
	}
	if rep.PassRate() != 100 {
		t.Fatalf("expected empty suite pass rate 100, got %d", rep.PassRate())
	}
}

func TestPassRateTruncates(t *testing.T) {
	rep := SuiteReport{Total: 3, Passed: 2, Failed: 1}
	if rep.PassRate() != 66 {
		t.Fatalf("expected truncated rate 66, got %d", rep.PassRate())
	}
}

func TestOverallTotalsAndExitCode(t *testing.T) {
	o := Overall{Suites: []SuiteReport{
		{Suite: "official", Total: 4, Passed: 4},
		{Suite: "unofficial", Total: 6, Passed: 5, Failed: 1,
			Failures: []verdict.TestResult{result("u01", verdict.StatusFailed)}},
	}}

	if o.Total() != 10 || o.Passed() != 9 || o.Failed() != 1 {
		t.Fatalf("unexpected overall totals: total=%d passed=%d failed=%d", o.Total(), o.Passed(), o.Failed())
	}
	if o.PassRate() != 90 {
		t.Fatalf("expected pass rate 90, got %d", o.PassRate())
	}
	if o.ExitCode() != 1 {
		t.Fatalf("expected exit 1 with failures, got %d", o.ExitCode())
	}

	clean := Overall{Suites: []SuiteReport{{Suite: "official", Total: 2, Passed: 2}}}
	if clean.ExitCode() != 0 {
		t.Fatalf("expected exit 0 with no failures, got %d", clean.ExitCode())
	}
}

func TestRender(t *testing.T) {
	o := Overall{Suites: []SuiteReport{
		{Suite: "official", Total: 2, Passed: 1, Failed: 1,
			Failures: []verdict.TestResult{result("t02", verdict.StatusFailed)}},
		{Suite: "unofficial", Total: 0, Passed: 0, Failed: 0},
	}}

	var buf bytes.Buffer
	Render(&buf, o)
	out := buf.String()

	for _, want := range []string{
		"== official ==",
		"passed 1/2 (50%)",
		"failing tests:",
		"t02",
		"== unofficial ==",
		"passed 0/0 (100%)",
		"== overall ==",
		"passed 1/2 (50%)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderFailureShowsExcerpts(t *testing.T) {
	o := Overall{Suites: []SuiteReport{
		{Suite: "official", Total: 2, Passed: 0, Failed: 2, Failures: []verdict.TestResult{
			{
				Test:   corpus.TestCase{ID: "t01", Suite: "official"},
				Status: verdict.StatusFailed,
				Got:    "3\n",
				Want:   "4\n",
			},
			result("t02", verdict.StatusMissingOutput),
		}},
	}}

	var buf bytes.Buffer
	RenderFailure(&buf, o)
	out := buf.String()

	if !strings.Contains(out, "expected:\n4") || !strings.Contains(out, "got:\n3") {
		t.Fatalf("mismatch excerpts missing:\n%s", out)
	}
	if !strings.Contains(out, "t02: MissingOutput") {
		t.Fatalf("anomaly line missing:\n%s", out)
	}
	// Anomalies without excerpts print no expected/got block.
	if strings.Count(out, "expected:") != 1 {
		t.Fatalf("expected exactly one excerpt block:\n%s", out)
	}
}
