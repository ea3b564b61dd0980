// Package report folds per-test results into suite and overall totals.
package report

import (
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/verdict"
)

// SuiteReport is the aggregate for one suite. Passed+Failed == Total holds
// at all times; Failures keeps the failing results in execution order.
type SuiteReport struct {
	Suite    string
	Total    int
	Passed   int
	Failed   int
	Failures []verdict.TestResult
}

// Fold reduces an ordered result sequence into a SuiteReport. Pure: it never
// mutates its input and always returns the same report for the same results.
func Fold(suite string, results []verdict.TestResult) SuiteReport {
	rep := SuiteReport{Suite: suite}
	for _, res := range results {
		rep.Total++
		if res.Status.Passed() {
			rep.Passed++
			continue
		}
		rep.Failed++
		rep.Failures = append(rep.Failures, res)
	}
	return rep
}

// PassRate is the truncating integer pass percentage. An empty suite counts
// as fully passing.
func (r SuiteReport) PassRate() int {
	return passRate(r.Passed, r.Total)
}

// Overall combines the suite reports of one grading run.
type Overall struct {
	RunID  string
	Suites []SuiteReport
}

// Total sums the suite totals.
func (o Overall) Total() int {
	n := 0
	for _, s := range o.Suites {
		n += s.Total
	}
	return n
}

// Passed sums the suite passed counts.
func (o Overall) Passed() int {
	n := 0
	for _, s := range o.Suites {
		n += s.Passed
	}
	return n
}

// Failed sums the suite failed counts.
func (o Overall) Failed() int {
	n := 0
	for _, s := range o.Suites {
		n += s.Failed
	}
	return n
}

// PassRate is the truncating integer pass percentage across all suites.
func (o Overall) PassRate() int {
	return passRate(o.Passed(), o.Total())
}

// ExitCode is 0 iff no test failed. Fatal pipeline errors never reach this
// point; the caller maps those to a nonzero exit directly.
func (o Overall) ExitCode() int {
	if o.Failed() == 0 {
		return 0
	}
	return 1
}

func passRate(passed, total int) int {
	if total == 0 {
		return 100
	}
	return passed * 100 / total
}
