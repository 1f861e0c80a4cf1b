// Package process implements the process subsystem: spawning child
// processes with an inherited-plus-overlay environment, capturing
// stdout/stderr, and distinguishing expected from unexpected non-zero
// exits, grounded on the capture/cleanup idiom of the teacher's batch
// runner (each child is owned by the test that spawned it and killed at
// test end regardless of outcome).
package process

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"go.uber.org/zap"

	"toolproof/internal/toolerr"
)

var logger = zap.NewNop().Sugar()

// SetLogger installs the process subsystem's structured logger, the way
// the teacher's batch runner passes its logger into each subsystem it
// owns rather than calling fmt.Printf/log.Printf directly.
func SetLogger(l *zap.SugaredLogger) {
	if l != nil {
		logger = l
	}
}

// Result is the outcome of Run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Run spawns command through the host shell in dir with the given
// environment, waiting up to ctx's deadline. expectFailure selects which
// exit-status contract applies: when false, a non-zero exit is
// ProcessNonZeroExit; when true, a zero exit is
// ProcessZeroExitButFailureExpected.
func Run(ctx context.Context, command, dir string, env []string, expectFailure bool) (Result, error) {
	logger.Debugw("running process", "command", command, "dir", dir)
	shell, flag := "sh", "-c"
	if runtime.GOOS == "windows" {
		shell, flag = "cmd", "/C"
	}
	cmd := exec.CommandContext(ctx, shell, flag, command)
	cmd.Dir = dir
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if runErr != nil {
		exitErr, ok := runErr.(*exec.ExitError)
		if !ok {
			logger.Debugw("process spawn failed", "command", command, "error", runErr)
			return res, toolerr.Wrap(toolerr.ProcessSpawnFailed, -1, command, runErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	if expectFailure {
		if res.ExitCode == 0 {
			return res, toolerr.New(toolerr.ProcessZeroExitButFailureExpected, -1, command)
		}
		return res, nil
	}
	if res.ExitCode != 0 {
		logger.Debugw("process exited non-zero", "command", command, "exit_code", res.ExitCode)
		return res, toolerr.New(toolerr.ProcessNonZeroExit, -1, fmt.Sprintf("%s (exit %d): %s", command, res.ExitCode, res.Stderr))
	}
	return res, nil
}
