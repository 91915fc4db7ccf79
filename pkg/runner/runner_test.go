package runner_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/sgaunet/auto-release/pkg/config"
	"github.com/sgaunet/auto-release/pkg/runner"
	"github.com/sgaunet/bullets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func newRunner(t *testing.T, flags config.Flags) (*runner.Runner, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	var logBuf bytes.Buffer
	logger := bullets.New(&logBuf)
	logger.SetLevel(bullets.DebugLevel)
	rt := config.NewRuntime(os.Environ(), dir, flags)
	return runner.New(rt, logger), &logBuf, dir
}

func TestFormatCommand(t *testing.T) {
	assert.Equal(t, "git", runner.FormatCommand("git"))
	assert.Equal(t, "npm 'view' 'pkg@1.0.0' '--json'", runner.FormatCommand("npm", "view", "pkg@1.0.0", "--json"))
	assert.Equal(t, `echo 'it'\''s'`, runner.FormatCommand("echo", "it's"))
}

func TestRun_DryRunOnlyLogs(t *testing.T) {
	r, logBuf, dir := newRunner(t, config.Flags{DryRun: true})
	marker := filepath.Join(dir, "marker")

	err := r.Run(context.Background(), "touch", marker)
	require.NoError(t, err)

	_, statErr := os.Stat(marker)
	assert.True(t, os.IsNotExist(statErr), "dry-run must not execute the command")
	assert.Contains(t, logBuf.String(), "touch '"+marker+"'")
}

func TestRun_SetsPublishGuard(t *testing.T) {
	requireShell(t)
	r, _, _ := newRunner(t, config.Flags{})
	var out bytes.Buffer
	r.SetOutput(&out, &out)

	err := r.Run(context.Background(), "sh", "-c", "printf %s \"$"+runner.PublishGuardEnv+"\"")
	require.NoError(t, err)
	assert.Equal(t, "1", out.String())
}

func TestRun_RunsInWorkdir(t *testing.T) {
	requireShell(t)
	r, _, dir := newRunner(t, config.Flags{})
	r.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

	require.NoError(t, r.Run(context.Background(), "sh", "-c", "touch created"))
	_, err := os.Stat(filepath.Join(dir, "created"))
	assert.NoError(t, err)
}

func TestRun_Failure(t *testing.T) {
	requireShell(t)
	r, _, _ := newRunner(t, config.Flags{})
	r.SetOutput(&bytes.Buffer{}, &bytes.Buffer{})

	err := r.Run(context.Background(), "sh", "-c", "exit 3")
	require.Error(t, err)
	assert.Equal(t, "sh -c failed", err.Error())

	res, ok := runner.ErrorResult(err)
	require.True(t, ok)
	assert.Equal(t, 3, res.ExitCode)
}

func TestOutput_RunsInDryRun(t *testing.T) {
	requireShell(t)
	r, _, _ := newRunner(t, config.Flags{DryRun: true})

	res, err := r.Output(context.Background(), "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
	assert.Equal(t, 0, res.ExitCode)
}

func TestOutput_FailureKeepsResult(t *testing.T) {
	requireShell(t)
	r, _, _ := newRunner(t, config.Flags{})

	res, err := r.Output(context.Background(), "sh", "-c", "echo boom >&2; exit 1")
	require.Error(t, err)
	assert.Equal(t, 1, res.ExitCode)
	assert.Equal(t, "boom\n", res.Stderr)
}

func TestCheck(t *testing.T) {
	requireShell(t)
	r, _, _ := newRunner(t, config.Flags{})

	assert.True(t, r.Check(context.Background(), "sh", "-c", "exit 0"))
	assert.False(t, r.Check(context.Background(), "sh", "-c", "exit 1"))
}

func TestVerboseEchoesCommand(t *testing.T) {
	requireShell(t)
	r, logBuf, _ := newRunner(t, config.Flags{Verbose: true})

	_, err := r.Output(context.Background(), "sh", "-c", "true")
	require.NoError(t, err)
	assert.Contains(t, logBuf.String(), "$ sh '-c' 'true'")
}
