// Package runner executes external commands (git helpers, npm, yarn) on
// behalf of the release pipeline.
package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/sgaunet/auto-release/internal/security"
	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/bullets"
)

// PublishGuardEnv is set for every mutating command so the package's
// prepublishOnly hook can tell a managed publish from a manual one.
const PublishGuardEnv = "CORRECT_PUBLISH"

// Result is the captured outcome of a command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandError is returned when a command exits with a non-zero status.
type CommandError struct {
	Name   string
	Args   []string
	Result Result
	Err    error
}

func (e *CommandError) Error() string {
	if len(e.Args) == 0 {
		return e.Name + " failed"
	}
	return e.Name + " " + e.Args[0] + " failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Executor runs external commands.
type Executor interface {
	// Run executes a mutating command with inherited stdio. In dry-run mode it
	// only logs the command line.
	Run(ctx context.Context, name string, args ...string) error
	// Output executes a read-only command and captures its output. It runs
	// even in dry-run mode.
	Output(ctx context.Context, name string, args ...string) (Result, error)
	// Check reports whether a read-only command exits successfully.
	Check(ctx context.Context, name string, args ...string) bool
}

// Runner is the os/exec backed Executor.
type Runner struct {
	rt     config.Runtime
	log    *bullets.Logger
	stdout io.Writer
	stderr io.Writer
	env    []string
}

// New creates a Runner for the given runtime.
func New(rt config.Runtime, logger *bullets.Logger) *Runner {
	return &Runner{
		rt:     rt,
		log:    logger,
		stdout: os.Stdout,
		stderr: os.Stderr,
		env:    rt.Environ(PublishGuardEnv + "=1"),
	}
}

// SetOutput redirects the stdio of mutating commands.
func (r *Runner) SetOutput(stdout, stderr io.Writer) {
	r.stdout = stdout
	r.stderr = stderr
}

// WithEnv returns a copy of the Runner using env instead of the runtime
// environment.
func (r *Runner) WithEnv(env []string) *Runner {
	c := *r
	c.env = env
	return &c
}

// Run implements Executor.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	line := FormatCommand(name, args...)
	if r.rt.Flags.DryRun {
		r.log.Infof("dry-run: %s", line)
		return nil
	}
	if r.rt.Flags.Verbose {
		r.log.Infof("$ %s", line)
	}

	// #nosec G204 - command names come from the pipeline, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.rt.Workdir
	cmd.Env = r.env
	cmd.Stdin = os.Stdin
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return &CommandError{Name: name, Args: args, Result: Result{ExitCode: exitCode(err)}, Err: err}
	}
	return nil
}

// Output implements Executor.
func (r *Runner) Output(ctx context.Context, name string, args ...string) (Result, error) {
	if r.rt.Flags.Verbose {
		r.log.Infof("$ %s", FormatCommand(name, args...))
	}

	var stdout, stderr bytes.Buffer
	// #nosec G204 - command names come from the pipeline, not user input
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.rt.Workdir
	cmd.Env = r.env
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: exitCode(err)}
	if err != nil {
		r.log.Debug("command failed: " + security.SanitizeString(strings.TrimSpace(res.Stderr)))
		return res, &CommandError{Name: name, Args: args, Result: res, Err: err}
	}
	return res, nil
}

// Check implements Executor.
func (r *Runner) Check(ctx context.Context, name string, args ...string) bool {
	_, err := r.Output(ctx, name, args...)
	return err == nil
}

// FormatCommand renders a command line with each argument single-quoted.
func FormatCommand(name string, args ...string) string {
	var b strings.Builder
	b.WriteString(name)
	for _, a := range args {
		b.WriteString(" '")
		b.WriteString(strings.ReplaceAll(a, "'", `'\''`))
		b.WriteString("'")
	}
	return b.String()
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// ErrorResult extracts the captured Result from a command error.
func ErrorResult(err error) (Result, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Result, true
	}
	return Result{}, false
}

var _ Executor = (*Runner)(nil)

