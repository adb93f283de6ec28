// Package tasks runs the Go toolchain chores a site project needs besides
// building: dependency sync and the test suite.
package tasks

import (
	"context"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	ferrors "makesite/internal/errors"
	"makesite/internal/logfields"
)

// Runner executes one external command inside dir.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs commands with os/exec, streaming their output.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (r ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryNotFound, "command not found").
			WithContext("command", name).Build()
	}
	// #nosec G204 -- name and args are fixed by the tasks below.
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	return cmd.Run()
}

// Tasks runs chores for the project in Dir.
type Tasks struct {
	runner Runner
	dir    string
	logger *slog.Logger
}

func New(runner Runner, dir string, logger *slog.Logger) *Tasks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tasks{runner: runner, dir: dir, logger: logger}
}

// Setup tidies go.mod and downloads every module it requires.
func (t *Tasks) Setup(ctx context.Context) error {
	if err := t.run(ctx, "go", "mod", "tidy"); err != nil {
		return err
	}
	return t.run(ctx, "go", "mod", "download")
}

// Test runs the test suite, reporting coverage when cover is set.
func (t *Tasks) Test(ctx context.Context, cover bool) error {
	args := []string{"test"}
	if cover {
		args = append(args, "-cover")
	}
	return t.run(ctx, "go", append(args, "./...")...)
}

func (t *Tasks) run(ctx context.Context, name string, args ...string) error {
	command := strings.Join(append([]string{name}, args...), " ")
	t.logger.Info("Running", slog.String("command", command), logfields.Path(t.dir))

	start := time.Now()
	if err := t.runner.Run(ctx, t.dir, name, args...); err != nil {
		if _, ok := ferrors.AsClassified(err); ok {
			return err
		}
		return ferrors.WrapError(err, ferrors.CategoryRuntime, "command failed").
			WithContext("command", command).Build()
	}
	t.logger.Debug("Command finished", slog.String("command", command),
		logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
	return nil
}
