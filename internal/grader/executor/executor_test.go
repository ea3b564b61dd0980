package executor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amitnovick/compilation-ex3-testers/internal/grader/corpus"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/verdict"
)

// writeArtifact installs a shell script standing in for the built executable.
// The real artifact contract is artifact(input_path, output_path).
func writeArtifact(t *testing.T, dir, script string) string {
	t.Helper()
	path := filepath.Join(dir, "EX3")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		t.Fatalf("write artifact failed: %v", err)
	}
	return path
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s failed: %v", path, err)
	}
}

// newSuite lays out a flat suite with the given input/golden pairs.
func newSuite(t *testing.T, cases map[string][2]string) corpus.Suite {
	t.Helper()
	root := t.TempDir()
	inputs := filepath.Join(root, "inputs")
	expected := filepath.Join(root, "expected")
	for id, pair := range cases {
		writeFile(t, filepath.Join(inputs, id+".txt"), pair[0])
		if pair[1] != "" {
			writeFile(t, corpus.GoldenPath(expected, id), pair[1])
		}
	}
	return corpus.Suite{Name: "official", InputsDir: inputs, ExpectedDir: expected}
}

func statuses(results []verdict.TestResult) map[string]verdict.Status {
	out := make(map[string]verdict.Status, len(results))
	for _, res := range results {
		out[res.Test.ID] = res.Status
	}
	return out
}

func TestRunSuitePassAndFail(t *testing.T) {
	suite := newSuite(t, map[string][2]string{
		"t01": {"hello\n", "hello\n"},
		"t02": {"world\n", "not world\n"},
	})
	exec := Executor{
		ArtifactPath: writeArtifact(t, t.TempDir(), `cat "$1" > "$2"`),
		OutputDir:    t.TempDir(),
		TestTimeout:  10 * time.Second,
		Parallelism:  1,
	}

	results, err := exec.RunSuite(context.Background(), suite)
	if err != nil {
		t.Fatalf("run suite failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	got := statuses(results)
	if got["t01"] != verdict.StatusPassed {
		t.Fatalf("expected t01 Passed, got %s", got["t01"])
	}
	if got["t02"] != verdict.StatusFailed {
		t.Fatalf("expected t02 Failed, got %s", got["t02"])
	}
}

func TestRunSuiteMissingOutput(t *testing.T) {
	suite := newSuite(t, map[string][2]string{
		"t01": {"in\n", "out\n"},
	})
	// The artifact exits cleanly without ever writing its output file.
	exec := Executor{
		ArtifactPath: writeArtifact(t, t.TempDir(), `exit 0`),
		OutputDir:    t.TempDir(),
		TestTimeout:  10 * time.Second,
	}

	results, err := exec.RunSuite(context.Background(), suite)
	if err != nil {
		t.Fatalf("run suite failed: %v", err)
	}
	if results[0].Status != verdict.StatusMissingOutput {
		t.Fatalf("expected MissingOutput, got %s", results[0].Status)
	}
}

func TestRunSuiteMissingGolden(t *testing.T) {
	suite := newSuite(t, map[string][2]string{
		"t01": {"in\n", ""}, // no golden written
	})
	exec := Executor{
		ArtifactPath: writeArtifact(t, t.TempDir(), `cat "$1" > "$2"`),
		OutputDir:    t.TempDir(),
		TestTimeout:  10 * time.Second,
	}

	results, err := exec.RunSuite(context.Background(), suite)
	if err != nil {
		t.Fatalf("run suite failed: %v", err)
	}
	if results[0].Status != verdict.StatusMissingGolden {
		t.Fatalf("expected MissingGolden, got %s", results[0].Status)
	}
}

func TestRunSuiteTimeout(t *testing.T) {
	suite := newSuite(t, map[string][2]string{
		"t01": {"in\n", "out\n"},
		"t02": {"fine\n", "fine\n"},
	})
	exec := Executor{
		ArtifactPath: writeArtifact(t, t.TempDir(),
			`case "$1" in *t01*) sleep 5 ;; *) cat "$1" > "$2" ;; esac`),
		OutputDir:   t.TempDir(),
		TestTimeout: 200 * time.Millisecond,
	}

	results, err := exec.RunSuite(context.Background(), suite)
	if err != nil {
		t.Fatalf("run suite failed: %v", err)
	}

	got := statuses(results)
	if got["t01"] != verdict.StatusTimeout {
		t.Fatalf("expected t01 Timeout, got %s", got["t01"])
	}
	// A hung test never poisons its neighbors.
	if got["t02"] != verdict.StatusPassed {
		t.Fatalf("expected t02 Passed, got %s", got["t02"])
	}
}

func TestRunSuiteCrashWithFullOutputStillPasses(t *testing.T) {
	suite := newSuite(t, map[string][2]string{
		"t01": {"in\n", "in\n"},
	})
	// Exit status is not part of the verdict; only the output file is.
	exec := Executor{
		ArtifactPath: writeArtifact(t, t.TempDir(), `cat "$1" > "$2"; exit 7`),
		OutputDir:    t.TempDir(),
		TestTimeout:  10 * time.Second,
	}

	results, err := exec.RunSuite(context.Background(), suite)
	if err != nil {
		t.Fatalf("run suite failed: %v", err)
	}
	if results[0].Status != verdict.StatusPassed {
		t.Fatalf("expected Passed despite nonzero exit, got %s", results[0].Status)
	}
}

func TestRunSuiteParallelKeepsEnumerationOrder(t *testing.T) {
	cases := make(map[string][2]string)
	for _, id := range []string{"t01", "t02", "t03", "t04", "t05", "t06"} {
		cases[id] = [2]string{id + "\n", id + "\n"}
	}
	suite := newSuite(t, cases)
	exec := Executor{
		ArtifactPath: writeArtifact(t, t.TempDir(), `cat "$1" > "$2"`),
		OutputDir:    t.TempDir(),
		TestTimeout:  10 * time.Second,
		Parallelism:  4,
	}

	results, err := exec.RunSuite(context.Background(), suite)
	if err != nil {
		t.Fatalf("run suite failed: %v", err)
	}
	if len(results) != len(cases) {
		t.Fatalf("expected %d results, got %d", len(cases), len(results))
	}

	tests, err := suite.Enumerate()
	if err != nil {
		t.Fatalf("enumerate failed: %v", err)
	}
	for i, res := range results {
		if res.Test.ID != tests[i].ID {
			t.Fatalf("result %d is %s, enumeration says %s", i, res.Test.ID, tests[i].ID)
		}
		if res.Status != verdict.StatusPassed {
			t.Fatalf("expected %s Passed, got %s", res.Test.ID, res.Status)
		}
	}
}

func TestRunSuiteRelativeSuitePaths(t *testing.T) {
	// Suite and output paths come from config relative to the harness
	// working directory; the artifact still runs from its own directory
	// and must receive paths that resolve regardless.
	artifact := writeArtifact(t, t.TempDir(), `cat "$1" > "$2"`)
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd failed: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatalf("restore wd failed: %v", err)
		}
	})

	writeFile(t, filepath.Join("tests", "official", "inputs", "t01.txt"), "hello\n")
	writeFile(t, corpus.GoldenPath(filepath.Join("tests", "official", "expected"), "t01"), "hello\n")

	suite := corpus.Suite{
		Name:        "official",
		InputsDir:   filepath.Join("tests", "official", "inputs"),
		ExpectedDir: filepath.Join("tests", "official", "expected"),
	}
	exec := Executor{
		ArtifactPath: artifact,
		OutputDir:    filepath.Join("outputs", "official"),
		TestTimeout:  10 * time.Second,
	}

	results, err := exec.RunSuite(context.Background(), suite)
	if err != nil {
		t.Fatalf("run suite failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Status != verdict.StatusPassed {
		t.Fatalf("expected Passed for a matching test, got %s", results[0].Status)
	}
	if _, statErr := os.Stat(filepath.Join("outputs", "official", "t01_output.txt")); statErr != nil {
		t.Fatalf("output file missing under the relative output dir: %v", statErr)
	}
}

func TestRunSuiteCategorized(t *testing.T) {
	root := t.TempDir()
	inputs := filepath.Join(root, "inputs")
	expected := filepath.Join(root, "expected")
	writeFile(t, filepath.Join(inputs, "valid", "v01.txt"), "a\n")
	writeFile(t, filepath.Join(inputs, "errors", "e01.txt"), "b\n")
	// Goldens are keyed by bare id; the category never appears in the name.
	writeFile(t, corpus.GoldenPath(expected, "v01"), "a\n")
	writeFile(t, corpus.GoldenPath(expected, "e01"), "something else\n")

	suite := corpus.Suite{Name: "unofficial", InputsDir: inputs, ExpectedDir: expected, Categorized: true}
	outputDir := t.TempDir()
	exec := Executor{
		ArtifactPath: writeArtifact(t, t.TempDir(), `cat "$1" > "$2"`),
		OutputDir:    outputDir,
		TestTimeout:  10 * time.Second,
		Parallelism:  2,
	}

	results, err := exec.RunSuite(context.Background(), suite)
	if err != nil {
		t.Fatalf("run suite failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	got := statuses(results)
	if got["v01"] != verdict.StatusPassed {
		t.Fatalf("expected v01 Passed against its bare-id golden, got %s", got["v01"])
	}
	if got["e01"] != verdict.StatusFailed {
		t.Fatalf("expected e01 Failed, got %s", got["e01"])
	}
	// Output files are keyed by bare id too.
	if _, err := os.Stat(filepath.Join(outputDir, "v01_output.txt")); err != nil {
		t.Fatalf("bare-id output file missing: %v", err)
	}
}

func TestRunSuiteEmptyCorpus(t *testing.T) {
	suite := corpus.Suite{
		Name:        "unofficial",
		InputsDir:   filepath.Join(t.TempDir(), "absent"),
		ExpectedDir: t.TempDir(),
	}
	exec := Executor{
		ArtifactPath: writeArtifact(t, t.TempDir(), `cat "$1" > "$2"`),
		OutputDir:    t.TempDir(),
	}

	results, err := exec.RunSuite(context.Background(), suite)
	if err != nil {
		t.Fatalf("expected empty corpus to succeed, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestRunSuiteCapturesStderr(t *testing.T) {
	suite := newSuite(t, map[string][2]string{
		"t01": {"in\n", "in\n"},
	})
	outputDir := t.TempDir()
	exec := Executor{
		ArtifactPath: writeArtifact(t, t.TempDir(), `echo "warning: deprecated" >&2; cat "$1" > "$2"`),
		OutputDir:    outputDir,
		TestTimeout:  10 * time.Second,
	}

	if _, err := exec.RunSuite(context.Background(), suite); err != nil {
		t.Fatalf("run suite failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(outputDir, "t01.err"))
	if err != nil {
		t.Fatalf("stderr capture missing: %v", err)
	}
	if string(data) != "warning: deprecated\n" {
		t.Fatalf("unexpected stderr capture: %q", data)
	}
}
