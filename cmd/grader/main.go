package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/amitnovick/compilation-ex3-testers/internal/grader"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/build"
	"github.com/amitnovick/compilation-ex3-testers/internal/grader/report"
	appErr "github.com/amitnovick/compilation-ex3-testers/pkg/errors"
	"github.com/amitnovick/compilation-ex3-testers/pkg/utils/logger"
)

const defaultConfigPath = "configs/grader.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <submission-archive>\n", os.Args[0])
		flag.PrintDefaults()
		return 1
	}
	archivePath := flag.Arg(0)

	cfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		return 1
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	invoker, err := cfg.Build.toInvoker()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid build config: %v\n", err)
		return 1
	}

	pipe := &grader.Pipeline{
		WorkRoot:    cfg.Run.WorkRoot,
		Builder:     invoker,
		Suites:      cfg.toSuites(),
		TestTimeout: time.Duration(cfg.Run.TestTimeout),
		Parallelism: cfg.Run.Parallelism,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	overall, err := pipe.Run(ctx, archivePath)
	if err != nil {
		e := appErr.GetError(err)
		logger.Error(ctx, "grading aborted",
			zap.Int("code", int(e.Code)),
			zap.Error(err))
		// A failed build is only actionable with its log; surface it
		// verbatim rather than as a boolean.
		if buildLog, ok := e.Detail(build.LogDetailKey); ok {
			fmt.Fprintln(os.Stderr, "--- build log ---")
			fmt.Fprintln(os.Stderr, buildLog)
		}
		return 1
	}

	report.Render(os.Stdout, overall)
	report.RenderFailure(os.Stdout, overall)
	return overall.ExitCode()
}
