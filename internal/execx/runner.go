// SPDX-License-Identifier: Apache-2.0

// Package execx runs external package-manager executables under a fixed search path and a hard deadline.
package execx

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/automa-saga/logx"
	"github.com/joomcode/errorx"
	"github.com/rs/zerolog"
)

const (
	// DefaultTimeout applies when a caller passes a non-positive timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultSearchPath is the PATH given to every child process. Executables are resolved against it
	// rather than the PATH of the invoking shell.
	DefaultSearchPath = "/usr/local/bin:/usr/bin:/bin:/usr/sbin:/sbin:/opt/homebrew/bin:/usr/local/opt/node@18/bin"

	// waitDelay bounds how long Wait blocks on output pipes held open by orphaned grandchildren.
	waitDelay = 2 * time.Second
)

// Runner executes a command and returns its decoded standard output.
//
// Exactly one outcome is reported per invocation: success, NotFoundError, TimeoutError, FailedError,
// InvalidOutputError or CanceledError.
type Runner interface {
	Execute(ctx context.Context, command string, args []string, timeout time.Duration) (string, error)
}

// CmdRunner is the process backed Runner implementation.
type CmdRunner struct {
	searchPath     string
	defaultTimeout time.Duration
	logger         *zerolog.Logger
}

type Option func(r *CmdRunner)

// WithSearchPath overrides the PATH used to resolve and run executables.
func WithSearchPath(path string) Option {
	return func(r *CmdRunner) {
		if path != "" {
			r.searchPath = path
		}
	}
}

// WithDefaultTimeout overrides the timeout used when Execute is called with a non-positive timeout.
func WithDefaultTimeout(d time.Duration) Option {
	return func(r *CmdRunner) {
		if d > 0 {
			r.defaultTimeout = d
		}
	}
}

func WithLogger(logger *zerolog.Logger) Option {
	return func(r *CmdRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func NewRunner(opts ...Option) *CmdRunner {
	r := &CmdRunner{
		searchPath:     DefaultSearchPath,
		defaultTimeout: DefaultTimeout,
		logger:         logx.As(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// SearchPath returns the PATH used by the runner.
func (r *CmdRunner) SearchPath() string {
	return r.searchPath
}

// Execute launches command with args and waits for it to exit or for the timeout to elapse, whichever comes first.
// On timeout the whole process group is killed. Output is collected in full before decoding.
func (r *CmdRunner) Execute(ctx context.Context, command string, args []string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}

	path, err := r.LookPath(command)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(path, args...)
	cmd.Env = r.environ()
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	r.logger.Debug().
		Str("command", command).
		Strs("args", args).
		Dur("timeout", timeout).
		Msg("Executing command")

	start := time.Now()
	if err = cmd.Start(); err != nil {
		return "", newNotFoundError(command, err)
	}

	var timedOut atomic.Bool
	timer := time.AfterFunc(timeout, func() {
		timedOut.Store(true)
		killProcessGroup(cmd)
	})

	var canceled atomic.Bool
	stopWatch := context.AfterFunc(ctx, func() {
		canceled.Store(true)
		killProcessGroup(cmd)
	})

	waitErr := cmd.Wait()
	timer.Stop()
	stopWatch()

	elapsed := time.Since(start)

	// a process that exited cleanly wins over a timer that fired at the same instant
	if waitErr != nil && timedOut.Load() {
		r.logger.Warn().
			Str("command", command).
			Dur("timeout", timeout).
			Msg("Command timed out and was terminated")
		return "", newTimeoutError(command, timeout)
	}

	if waitErr != nil && canceled.Load() {
		return "", CanceledError.Wrap(ctx.Err(), "command %q was canceled", command).
			WithProperty(CommandProperty, command)
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return "", newFailedError(command, -1, waitErr.Error())
		}

		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		msg = strings.ToValidUTF8(msg, string(utf8.RuneError))

		r.logger.Debug().
			Str("command", command).
			Int("exit_code", exitErr.ExitCode()).
			Dur("elapsed", elapsed).
			Msg("Command failed")

		return "", newFailedError(command, exitErr.ExitCode(), msg)
	}

	if !utf8.Valid(stdout.Bytes()) {
		return "", InvalidOutputError.New("output of command %q is not valid UTF-8", command).
			WithProperty(CommandProperty, command)
	}

	r.logger.Debug().
		Str("command", command).
		Int("bytes", stdout.Len()).
		Dur("elapsed", elapsed).
		Msg("Command completed")

	return stdout.String(), nil
}

// LookPath resolves command against the runner search path. Commands containing a path separator are used as is.
func (r *CmdRunner) LookPath(command string) (string, error) {
	if command == "" {
		return "", errorx.IllegalArgument.New("command must not be empty")
	}

	if strings.ContainsRune(command, filepath.Separator) {
		if err := checkExecutable(command); err != nil {
			return "", newNotFoundError(command, err)
		}
		return command, nil
	}

	for _, dir := range filepath.SplitList(r.searchPath) {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, command)
		if checkExecutable(candidate) == nil {
			return candidate, nil
		}
	}

	return "", newNotFoundError(command, exec.ErrNotFound).
		WithProperty(errorx.PropertyPayload(), r.searchPath)
}

func (r *CmdRunner) environ() []string {
	env := make([]string, 0, len(os.Environ())+1)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "PATH=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, "PATH="+r.searchPath)
}

func checkExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return os.ErrPermission
	}
	return nil
}
