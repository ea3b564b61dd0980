// Package grader drives the build-verify-grade pipeline for one submission.
package grader

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/amitnovick/compilation-ex3-testers/internal/grader/build"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/corpus"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/executor"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/report"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/submission"
	"github.com/amitnovick/compilation-ex3-testers/pkg/utils/logger"
)

// Pipeline holds everything one grading run needs. Stages run strictly in
// order: extract, validate, build, then per-suite enumerate/execute/fold.
// A fatal error at any early stage aborts before any test runs, leaving both
// suite totals at zero.
type Pipeline struct {
	// WorkRoot hosts the per-run extraction workspace; empty means the
	// system temp dir.
	WorkRoot    string
	Builder     build.Invoker
	Suites      []corpus.Suite
	TestTimeout time.Duration
	Parallelism int
}

// Run grades one submission archive and returns the overall report. The
// extraction workspace is destroyed on every exit path, fatal or not.
func (p *Pipeline) Run(ctx context.Context, archivePath string) (report.Overall, error) {
	sub, err := submission.Extract(ctx, archivePath, p.WorkRoot)
	if err != nil {
		return report.Overall{}, err
	}
	defer sub.Cleanup()

	ctx = logger.WithRunID(ctx, sub.RunID)
	logger.Info(ctx, "submission extracted",
		zap.String("archive", archivePath),
		zap.String("workspace", sub.Root))

	if err := submission.Validate(sub); err != nil {
		return report.Overall{RunID: sub.RunID}, err
	}
	logger.Info(ctx, "submission validated", zap.Strings("ids", sub.IDs))

	buildRes, err := p.Builder.Invoke(ctx, sub.BuildRoot())
	if err != nil {
		return report.Overall{RunID: sub.RunID}, err
	}
	logger.Info(ctx, "build succeeded", zap.String("artifact", buildRes.ArtifactPath))

	outputRoot := filepath.Join(sub.Root, "outputs")
	overall := report.Overall{RunID: sub.RunID}
	for _, suite := range p.Suites {
		exec := executor.Executor{
			ArtifactPath: buildRes.ArtifactPath,
			OutputDir:    filepath.Join(outputRoot, suite.Name),
			TestTimeout:  p.TestTimeout,
			Parallelism:  p.Parallelism,
		}
		results, err := exec.RunSuite(ctx, suite)
		if err != nil {
			return overall, err
		}
		suiteRep := report.Fold(suite.Name, results)
		logger.Info(ctx, "suite finished",
			zap.String("suite", suite.Name),
			zap.Int("total", suiteRep.Total),
			zap.Int("passed", suiteRep.Passed),
			zap.Int("failed", suiteRep.Failed))
		overall.Suites = append(overall.Suites, suiteRep)
	}
	return overall, nil
}
