// Package executor runs the built artifact against a suite's test cases.
package executor

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/amitnovick/compilation-ex3-testers/internal/grader/corpus"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/verdict"
	appErr "github.com/amitnovick/compilation-ex3-testers/pkg/errors"
	"github.com/amitnovick/compilation-ex3-testers/pkg/utils/logger"
)

const (
	outputSuffix = "_output.txt"
	stderrSuffix = ".err"
)

// Executor invokes the artifact once per test case as
// artifact(input_path, output_path). The artifact's exit status is never
// part of the verdict; only the presence and content of the output file are.
type Executor struct {
	ArtifactPath string
	// OutputDir is the per-run, per-suite directory receiving output and
	// stderr files. Paths are derived from test ids, which are unique
	// within a suite, so no two tests ever collide.
	OutputDir string
	// TestTimeout bounds each invocation; zero disables the bound and a
	// hanging artifact blocks its worker indefinitely.
	TestTimeout time.Duration
	// Parallelism is the worker pool size; values below one run the
	// reference sequential behavior.
	Parallelism int
}

// RunSuite enumerates the suite and executes every test case. Per-test
// anomalies (timeout, missing output, mismatch) never abort the run; they
// are recorded and execution continues. Results come back in enumeration
// order regardless of worker scheduling.
func (e Executor) RunSuite(ctx context.Context, suite corpus.Suite) ([]verdict.TestResult, error) {
	tests, err := suite.Enumerate()
	if err != nil {
		return nil, err
	}
	if len(tests) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return nil, appErr.Wrapf(err, appErr.ExecutionFailed, "create suite output dir failed")
	}

	results := make([]verdict.TestResult, len(tests))
	pool := e.Parallelism
	if pool < 1 {
		pool = 1
	}

	g, runCtx := errgroup.WithContext(ctx)
	g.SetLimit(pool)
	for i, tc := range tests {
		i, tc := i, tc
		g.Go(func() error {
			// Each worker writes only its own slot; slots are disjoint,
			// so the fold below needs no further synchronization.
			results[i] = e.runOne(runCtx, suite, tc)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, appErr.Wrap(err, appErr.ExecutionFailed)
	}
	return results, nil
}

func (e Executor) runOne(ctx context.Context, suite corpus.Suite, tc corpus.TestCase) verdict.TestResult {
	outputPath := filepath.Join(e.OutputDir, tc.ID+outputSuffix)
	goldenPath := corpus.GoldenPath(suite.ExpectedDir, tc.ID)

	// The artifact runs from its own directory, so relative input and
	// output paths would resolve against the build root instead of the
	// harness working directory.
	inputPath := absPath(tc.InputPath)
	outputPath = absPath(outputPath)

	runCtx := ctx
	if e.TestTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.TestTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, e.ArtifactPath, inputPath, outputPath)
	cmd.Dir = filepath.Dir(e.ArtifactPath)

	// Stderr is captured for both suites as a diagnostics-only concern;
	// it never participates in the verdict.
	if errFile, err := os.Create(filepath.Join(e.OutputDir, tc.ID+stderrSuffix)); err == nil {
		cmd.Stderr = errFile
		defer errFile.Close()
	}

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start).Milliseconds()

	if runCtx.Err() == context.DeadlineExceeded {
		logger.Warn(ctx, "test timed out",
			zap.String("suite", suite.Name),
			zap.String("test", tc.DisplayName()),
			zap.Duration("limit", e.TestTimeout))
		return verdict.TestResult{
			Test:       tc,
			Status:     verdict.StatusTimeout,
			OutputPath: outputPath,
			GoldenPath: goldenPath,
			DurationMs: elapsed,
		}
	}
	if runErr != nil {
		// Not part of the verdict; a crash that still wrote the full
		// output passes, one that wrote nothing shows up as
		// MissingOutput below.
		logger.Debug(ctx, "artifact exited abnormally",
			zap.String("suite", suite.Name),
			zap.String("test", tc.DisplayName()),
			zap.Error(runErr))
	}

	// goldenPath is read by the harness itself, not the artifact, so it may
	// stay relative.
	res := verdict.Compare(tc, outputPath, goldenPath)
	res.DurationMs = elapsed
	if res.Status.Passed() {
		logger.Debug(ctx, "test passed",
			zap.String("suite", suite.Name),
			zap.String("test", tc.DisplayName()))
	} else {
		logger.Warn(ctx, "test failed",
			zap.String("suite", suite.Name),
			zap.String("test", tc.DisplayName()),
			zap.String("status", string(res.Status)))
	}
	return res
}

// absPath resolves a path against the harness working directory. The input
// stands unchanged when the working directory cannot be determined.
func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
