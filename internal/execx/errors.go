// SPDX-License-Identifier: Apache-2.0

package execx

import (
	"time"

	"github.com/joomcode/errorx"
)

var (
	ErrNamespace = errorx.NewNamespace("exec")

	// NotFoundError is raised when the executable cannot be resolved or launched.
	NotFoundError = ErrNamespace.NewType("not_found", errorx.NotFound())
	// TimeoutError is raised when the process did not exit before its deadline and was terminated.
	TimeoutError = ErrNamespace.NewType("timeout", errorx.Timeout())
	// FailedError is raised when the process exited with a non-zero code.
	FailedError = ErrNamespace.NewType("failed")
	// InvalidOutputError is raised when stdout of a successful run is not valid UTF-8.
	InvalidOutputError = ErrNamespace.NewType("invalid_output")
	// CanceledError is raised when the caller's context was canceled while the process was running.
	CanceledError = ErrNamespace.NewType("canceled")

	CommandProperty  = errorx.RegisterPrintableProperty("command")
	ExitCodeProperty = errorx.RegisterPrintableProperty("exit_code")
	TimeoutProperty  = errorx.RegisterPrintableProperty("timeout")
	MessageProperty  = errorx.RegisterProperty("message")
)

func newNotFoundError(command string, cause error) *errorx.Error {
	return NotFoundError.Wrap(cause, "executable %q could not be launched", command).
		WithProperty(CommandProperty, command)
}

func newTimeoutError(command string, timeout time.Duration) *errorx.Error {
	return TimeoutError.New("command %q timed out after %s", command, timeout).
		WithProperty(CommandProperty, command).
		WithProperty(TimeoutProperty, timeout)
}

func newFailedError(command string, exitCode int, message string) *errorx.Error {
	return FailedError.New("command %q exited with code %d: %s", command, exitCode, message).
		WithProperty(CommandProperty, command).
		WithProperty(ExitCodeProperty, exitCode).
		WithProperty(MessageProperty, message)
}

// ExitCode returns the exit code carried by a FailedError.
func ExitCode(err error) (int, bool) {
	v, ok := errorx.ExtractProperty(err, ExitCodeProperty)
	if !ok {
		return 0, false
	}
	code, ok := v.(int)
	return code, ok
}

// Message returns the diagnostic text (stderr, falling back to stdout) carried by a FailedError.
func Message(err error) string {
	v, ok := errorx.ExtractProperty(err, MessageProperty)
	if !ok {
		return ""
	}
	msg, _ := v.(string)
	return msg
}

// Timeout returns the deadline that was exceeded by a TimeoutError.
func Timeout(err error) (time.Duration, bool) {
	v, ok := errorx.ExtractProperty(err, TimeoutProperty)
	if !ok {
		return 0, false
	}
	d, ok := v.(time.Duration)
	return d, ok
}
