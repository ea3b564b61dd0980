// Package verdict classifies produced outputs against golden files.
package verdict

import (
	"bytes"
	"os"

	"github.com/amitnovick/compilation-ex3-testers/internal/grader/corpus"
)

// Status is the per-test classification.
type Status string

const (
	StatusPassed        Status = "Passed"
	StatusFailed        Status = "Failed"
	StatusMissingOutput Status = "MissingOutput"
	StatusMissingGolden Status = "MissingGolden"
	StatusTimeout       Status = "Timeout"
)

// Passed reports whether the status counts toward the passed total.
func (s Status) Passed() bool {
	return s == StatusPassed
}

// maxDiagnosticBytes bounds how much of a mismatching pair is retained for
// display.
const maxDiagnosticBytes = 64 * 1024

// TestResult is the immutable per-test outcome.
type TestResult struct {
	Test       corpus.TestCase
	Status     Status
	OutputPath string
	GoldenPath string
	Got        string // excerpt of produced output, mismatches only
	Want       string // excerpt of golden, mismatches only
	DurationMs int64
}

// Compare evaluates the verdict rule for one executed test case:
// no output file -> MissingOutput; no golden -> MissingGolden; otherwise an
// exact byte comparison with no normalization of any kind.
func Compare(tc corpus.TestCase, outputPath, goldenPath string) TestResult {
	res := TestResult{
		Test:       tc,
		OutputPath: outputPath,
		GoldenPath: goldenPath,
	}

	output, err := os.ReadFile(outputPath)
	if err != nil {
		res.Status = StatusMissingOutput
		return res
	}
	golden, err := os.ReadFile(goldenPath)
	if err != nil {
		res.Status = StatusMissingGolden
		return res
	}

	if bytes.Equal(output, golden) {
		res.Status = StatusPassed
		return res
	}

	res.Status = StatusFailed
	res.Got = excerpt(output)
	res.Want = excerpt(golden)
	return res
}

func excerpt(data []byte) string {
	if len(data) > maxDiagnosticBytes {
		data = data[:maxDiagnosticBytes]
	}
	return string(data)
}
