package registry

import (
	"context"
	"fmt"
	"time"

	"toolproof/internal/fsop"
	"toolproof/internal/process"
	"toolproof/internal/runctx"
	"toolproof/internal/serve"
	"toolproof/internal/toolerr"
	"toolproof/internal/value"
)

// RegisterBuiltins installs every handler named in §4.2's built-in
// handler contracts. runTimeout bounds `I run`/`I run ... and expect it to
// fail`.
func RegisterBuiltins(r *Registry, runTimeout time.Duration) {
	registerFilesystem(r)
	registerProcess(r, runTimeout)
	registerHosting(r)
	registerAssertions(r)
}

func registerFilesystem(r *Registry) {
	r.RegisterInstruction("I have a {filename} file with the content {contents}", func(ctx *runctx.Context, args map[string]string) error {
		path, err := ctx.ResolvePath(args["filename"])
		if err != nil {
			return toolerr.Wrap(toolerr.FileEscapesTempDir, -1, args["filename"], err)
		}
		return fsop.Write(path, args["contents"])
	})

	r.RegisterRetrieval("the file {filename}", func(ctx *runctx.Context, args map[string]string) (value.Value, error) {
		path, err := ctx.ResolvePath(args["filename"])
		if err != nil {
			return value.Null(), toolerr.Wrap(toolerr.FileEscapesTempDir, -1, args["filename"], err)
		}
		content, err := fsop.ReadUTF8(path)
		if err != nil {
			return value.Null(), err
		}
		return value.String(content), nil
	})
}

func registerProcess(r *Registry, runTimeout time.Duration) {
	r.RegisterInstruction("I have the environment variable {name} set to {value}", func(ctx *runctx.Context, args map[string]string) error {
		ctx.SetEnv(args["name"], args["value"])
		return nil
	})

	r.RegisterInstruction("I run {command}", func(ctx *runctx.Context, args map[string]string) error {
		return runCommand(ctx, args["command"], runTimeout, false)
	})

	r.RegisterInstruction("I run {command} and expect it to fail", func(ctx *runctx.Context, args map[string]string) error {
		return runCommand(ctx, args["command"], runTimeout, true)
	})

	r.RegisterRetrieval("stdout", func(ctx *runctx.Context, args map[string]string) (value.Value, error) {
		return value.String(ctx.LastStdout()), nil
	})
	r.RegisterRetrieval("stderr", func(ctx *runctx.Context, args map[string]string) (value.Value, error) {
		return value.String(ctx.LastStderr()), nil
	})
}

func runCommand(ctx *runctx.Context, command string, timeout time.Duration, expectFailure bool) error {
	runCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	res, err := process.Run(runCtx, command, ctx.TempDir, ctx.Env(), expectFailure)
	ctx.RecordRun(res.Stdout, res.Stderr)
	return err
}

func registerHosting(r *Registry) {
	r.RegisterInstruction("I serve the directory {dir}", func(ctx *runctx.Context, args map[string]string) error {
		dir, err := ctx.ResolvePath(args["dir"])
		if err != nil {
			return toolerr.Wrap(toolerr.FileEscapesTempDir, -1, args["dir"], err)
		}
		srv, err := serve.Start(dir)
		if err != nil {
			return err
		}
		ctx.SetServer(adaptServer{srv})
		return nil
	})
}

type adaptServer struct{ s *serve.Server }

func (a adaptServer) Port() int     { return a.s.Port() }
func (a adaptServer) Close() error  { return a.s.Close() }

func registerAssertions(r *Registry) {
	r.RegisterAssertion("be exactly {expected}", func(actual value.Value, expected *value.Value) error {
		if expected == nil {
			return toolerr.New(toolerr.AssertionTypeMismatch, -1, "be exactly requires an expected value")
		}
		if actual.Kind() != expected.Kind() {
			return toolerr.New(toolerr.AssertionTypeMismatch, -1, fmt.Sprintf("expected %v, got %v", expected, actual))
		}
		if !value.Equal(actual, *expected) {
			return toolerr.New(toolerr.AssertionFailed, -1, value.Diff(*expected, actual))
		}
		return nil
	})

	r.RegisterAssertion("contain {expected}", func(actual value.Value, expected *value.Value) error {
		if expected == nil {
			return toolerr.New(toolerr.AssertionTypeMismatch, -1, "contain requires an expected value")
		}
		if !value.Contains(actual, *expected) {
			return toolerr.New(toolerr.AssertionFailed, -1, fmt.Sprintf("%v does not contain %v", actual, *expected))
		}
		return nil
	})

	r.RegisterAssertion("be empty", func(actual value.Value, expected *value.Value) error {
		if !actual.IsEmpty() {
			return toolerr.New(toolerr.AssertionFailed, -1, fmt.Sprintf("%v is not empty", actual))
		}
		return nil
	})

	r.RegisterAssertion("not be exactly {expected}", func(actual value.Value, expected *value.Value) error {
		if expected == nil {
			return toolerr.New(toolerr.AssertionTypeMismatch, -1, "not be exactly requires an expected value")
		}
		if value.Equal(actual, *expected) {
			return toolerr.New(toolerr.AssertionFailed, -1, fmt.Sprintf("%v should not equal %v", actual, *expected))
		}
		return nil
	})

	r.RegisterAssertion("not contain {expected}", func(actual value.Value, expected *value.Value) error {
		if expected == nil {
			return toolerr.New(toolerr.AssertionTypeMismatch, -1, "not contain requires an expected value")
		}
		if value.Contains(actual, *expected) {
			return toolerr.New(toolerr.AssertionFailed, -1, fmt.Sprintf("%v should not contain %v", actual, *expected))
		}
		return nil
	})

	r.RegisterAssertion("not be empty", func(actual value.Value, expected *value.Value) error {
		if actual.IsEmpty() {
			return toolerr.New(toolerr.AssertionFailed, -1, "expected a non-empty value")
		}
		return nil
	})
}
