// SPDX-License-Identifier: Apache-2.0

//go:build unix

package execx

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestRunner(opts ...Option) *CmdRunner {
	logger := zerolog.Nop()
	return NewRunner(append([]Option{WithLogger(&logger)}, opts...)...)
}

func TestCmdRunner_Execute_Success(t *testing.T) {
	r := newTestRunner()

	out, err := r.Execute(context.Background(), "sh", []string{"-c", "printf 'hello\\nworld\\n'"}, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, "hello\nworld\n", out)
}

func TestCmdRunner_Execute_AbsolutePath(t *testing.T) {
	r := newTestRunner()

	out, err := r.Execute(context.Background(), "/bin/sh", []string{"-c", "echo ok"}, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, "ok\n", out)
}

func TestCmdRunner_Execute_UsesSearchPath(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "fakepm")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$PATH\"\n"), 0o755))

	searchPath := dir + ":/usr/bin:/bin"
	r := newTestRunner(WithSearchPath(searchPath))
	require.Equal(t, searchPath, r.SearchPath())

	out, err := r.Execute(context.Background(), "fakepm", nil, 5*time.Second)
	require.NoError(t, err)
	require.Equal(t, searchPath, strings.TrimSpace(out))
}

func TestCmdRunner_Execute_NotFound(t *testing.T) {
	r := newTestRunner()

	_, err := r.Execute(context.Background(), "pkgview-no-such-binary", []string{"--version"}, time.Second)
	require.Error(t, err)
	require.True(t, errorx.IsOfType(err, NotFoundError))
	require.True(t, errorx.HasTrait(err, errorx.NotFound()))
}

func TestCmdRunner_Execute_NotExecutable(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(file, []byte("echo hi"), 0o644))

	r := newTestRunner()
	_, err := r.Execute(context.Background(), file, nil, time.Second)
	require.True(t, errorx.IsOfType(err, NotFoundError))
}

func TestCmdRunner_Execute_NonZeroExitUsesStderr(t *testing.T) {
	r := newTestRunner()

	_, err := r.Execute(context.Background(), "sh", []string{"-c", "echo partial; echo '  boom  ' >&2; exit 3"}, 5*time.Second)
	require.Error(t, err)
	require.True(t, errorx.IsOfType(err, FailedError))

	code, ok := ExitCode(err)
	require.True(t, ok)
	require.Equal(t, 3, code)
	require.Equal(t, "boom", Message(err))
}

func TestCmdRunner_Execute_NonZeroExitFallsBackToStdout(t *testing.T) {
	r := newTestRunner()

	_, err := r.Execute(context.Background(), "sh", []string{"-c", "echo 'only stdout'; exit 1"}, 5*time.Second)
	require.True(t, errorx.IsOfType(err, FailedError))

	code, _ := ExitCode(err)
	require.Equal(t, 1, code)
	require.Equal(t, "only stdout", Message(err))
}

func TestCmdRunner_Execute_Timeout(t *testing.T) {
	r := newTestRunner()

	start := time.Now()
	_, err := r.Execute(context.Background(), "sh", []string{"-c", "sleep 10"}, 200*time.Millisecond)
	elapsed := time.Since(start)

	require.Error(t, err)
	require.True(t, errorx.IsOfType(err, TimeoutError))
	require.True(t, errorx.HasTrait(err, errorx.Timeout()))
	require.False(t, errorx.IsOfType(err, FailedError))
	require.Less(t, elapsed, 5*time.Second)

	d, ok := Timeout(err)
	require.True(t, ok)
	require.Equal(t, 200*time.Millisecond, d)
}

func TestCmdRunner_Execute_TimeoutKillsProcessGroup(t *testing.T) {
	r := newTestRunner()

	// the grandchild keeps stdout open; it must die with the group
	start := time.Now()
	_, err := r.Execute(context.Background(), "sh", []string{"-c", "sleep 10 & wait"}, 200*time.Millisecond)
	require.True(t, errorx.IsOfType(err, TimeoutError))
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestCmdRunner_Execute_FastCommandIsNotTimedOut(t *testing.T) {
	r := newTestRunner()

	for i := 0; i < 20; i++ {
		out, err := r.Execute(context.Background(), "sh", []string{"-c", "echo fast"}, 2*time.Second)
		require.NoError(t, err)
		require.Equal(t, "fast\n", out)
	}
}

func TestCmdRunner_Execute_InvalidUTF8(t *testing.T) {
	r := newTestRunner()

	_, err := r.Execute(context.Background(), "sh", []string{"-c", "printf '\\377\\376'"}, 5*time.Second)
	require.Error(t, err)
	require.True(t, errorx.IsOfType(err, InvalidOutputError))
}

func TestCmdRunner_Execute_Canceled(t *testing.T) {
	r := newTestRunner()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(100*time.Millisecond, cancel)

	_, err := r.Execute(ctx, "sh", []string{"-c", "sleep 10"}, 10*time.Second)
	require.Error(t, err)
	require.True(t, errorx.IsOfType(err, CanceledError))
}

func TestCmdRunner_DefaultTimeout(t *testing.T) {
	r := newTestRunner(WithDefaultTimeout(150 * time.Millisecond))

	_, err := r.Execute(context.Background(), "sh", []string{"-c", "sleep 10"}, 0)
	require.True(t, errorx.IsOfType(err, TimeoutError))

	d, _ := Timeout(err)
	require.Equal(t, 150*time.Millisecond, d)
}

func TestCmdRunner_LookPath_Empty(t *testing.T) {
	r := newTestRunner()

	_, err := r.LookPath("")
	require.True(t, errorx.IsOfType(err, errorx.IllegalArgument))
}
