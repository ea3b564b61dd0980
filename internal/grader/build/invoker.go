// Package build invokes the submission's build process and locates the
// artifact it must produce.
package build

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	appErr "github.com/amitnovick/compilation-ex3-testers/pkg/errors"
)

// LogDetailKey is the error detail carrying the full build log on failure.
const LogDetailKey = "build_log"

// Result describes one build attempt.
type Result struct {
	ExitCode     int
	Log          string // combined stdout+stderr of the build process
	ArtifactPath string // set only when the artifact exists after success
}

// Invoker runs the build command inside a build root.
type Invoker struct {
	// Command is the build argv, e.g. {"make"}.
	Command []string
	// ArtifactName is the executable the build must leave at the build
	// root, e.g. "EX3".
	ArtifactName string
	// Timeout bounds the whole build; zero disables the bound.
	Timeout time.Duration
}

// Invoke runs the build with buildRoot as working directory, capturing
// combined output. A nonzero status is a fatal build error carrying the full
// log. A zero status without the artifact present is fatal too: a descriptor
// that "succeeds" without producing the deliverable must not reach the test
// stage.
func (inv Invoker) Invoke(ctx context.Context, buildRoot string) (Result, error) {
	if len(inv.Command) == 0 {
		return Result{}, appErr.ValidationError("build_command", "required")
	}
	if inv.ArtifactName == "" {
		return Result{}, appErr.ValidationError("artifact_name", "required")
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, inv.Command[0], inv.Command[1:]...)
	cmd.Dir = buildRoot
	output, runErr := cmd.CombinedOutput()

	res := Result{
		ExitCode: exitCode(runErr, cmd),
		Log:      string(output),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return res, appErr.New(appErr.Timeout).
			WithMessagef("build exceeded %s", inv.Timeout).
			WithDetail(LogDetailKey, res.Log)
	}
	// Parent cancellation (e.g. SIGINT) is not a build defect.
	if errors.Is(ctx.Err(), context.Canceled) {
		return res, appErr.Wrapf(ctx.Err(), appErr.InternalError, "build canceled").
			WithDetail(LogDetailKey, res.Log)
	}
	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); !ok {
			return res, appErr.Wrapf(runErr, appErr.BuildStartFailed, "start build failed")
		}
		return res, appErr.Newf(appErr.BuildFailed, "build exited with status %d", res.ExitCode).
			WithDetail(LogDetailKey, res.Log)
	}

	artifact := filepath.Join(buildRoot, inv.ArtifactName)
	if _, err := os.Stat(artifact); err != nil {
		return res, appErr.Newf(appErr.ArtifactMissing,
			"build succeeded but %s is missing", inv.ArtifactName).
			WithDetail(LogDetailKey, res.Log)
	}
	res.ArtifactPath = artifact
	return res, nil
}

func exitCode(err error, cmd *exec.Cmd) int {
	if cmd.ProcessState != nil {
		return cmd.ProcessState.ExitCode()
	}
	if err == nil {
		return 0
	}
	return -1
}
