// SPDX-License-Identifier: Apache-2.0

package pkgsource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashgraph/pkgview/internal/execx"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/joomcode/errorx"
)

var (
	ErrNamespace = errorx.NewNamespace("pkgsource")

	NotInstalledError  = ErrNamespace.NewType("not_installed", errorx.NotFound())
	TimeoutError       = ErrNamespace.NewType("timeout", errorx.Timeout())
	CommandFailedError = ErrNamespace.NewType("command_failed")
	ParseFailedError   = ErrNamespace.NewType("parse_failed")
	UnknownError       = ErrNamespace.NewType("unknown")

	ManagerProperty  = errorx.RegisterPrintableProperty("manager")
	PackageProperty  = errorx.RegisterPrintableProperty("package")
	DurationProperty = errorx.RegisterPrintableProperty("duration")
	DetailProperty   = errorx.RegisterProperty("detail")
)

// NewNotInstalledError reports that the manager executable is absent from this system.
func NewNotInstalledError(m models.Manager) *errorx.Error {
	return NotInstalledError.New("Package manager is not installed on this system").
		WithProperty(ManagerProperty, m)
}

// NewParseFailedError reports output that could not be interpreted.
func NewParseFailedError(cause error, format string, args ...interface{}) *errorx.Error {
	detail := fmt.Sprintf(format, args...)
	if cause == nil {
		return ParseFailedError.New("Failed to parse package data: %s", detail).
			WithProperty(DetailProperty, detail)
	}
	return ParseFailedError.Wrap(cause, "Failed to parse package data: %s", detail).
		WithProperty(DetailProperty, detail)
}

func newTimeoutError(cause error, d time.Duration) *errorx.Error {
	if cause == nil {
		return TimeoutError.New("Operation timed out after %s", formatSeconds(d)).
			WithProperty(DurationProperty, d)
	}
	return TimeoutError.Wrap(cause, "Operation timed out after %s", formatSeconds(d)).
		WithProperty(DurationProperty, d)
}

func newCommandFailedError(cause error, detail string) *errorx.Error {
	return CommandFailedError.Wrap(cause, "Command failed: %s", detail).
		WithProperty(DetailProperty, detail)
}

// Classify maps any error raised while talking to a manager onto the domain taxonomy:
// NotInstalledError, TimeoutError, CommandFailedError, ParseFailedError or UnknownError.
// Errors already in the taxonomy are returned unchanged.
func Classify(err error) *errorx.Error {
	if err == nil {
		return nil
	}

	if IsDomainError(err) {
		return errorx.Cast(err)
	}

	switch {
	case errorx.IsOfType(err, execx.NotFoundError):
		return NotInstalledError.Wrap(err, "Package manager is not installed on this system")
	case errorx.IsOfType(err, execx.TimeoutError):
		d, _ := execx.Timeout(err)
		return newTimeoutError(err, d)
	case errorx.IsOfType(err, execx.FailedError):
		code, _ := execx.ExitCode(err)
		return newCommandFailedError(err, fmt.Sprintf("Exit code %d: %s", code, execx.Message(err)))
	case errorx.IsOfType(err, execx.InvalidOutputError):
		return NewParseFailedError(err, "output is not valid UTF-8")
	case errors.Is(err, context.DeadlineExceeded):
		return TimeoutError.Wrap(err, "Operation timed out")
	default:
		return UnknownError.Wrap(err, "An unknown error occurred: %v", err)
	}
}

// IsDomainError reports whether err already belongs to the pkgsource taxonomy.
func IsDomainError(err error) bool {
	return errorx.IsOfType(err, NotInstalledError) ||
		errorx.IsOfType(err, TimeoutError) ||
		errorx.IsOfType(err, CommandFailedError) ||
		errorx.IsOfType(err, ParseFailedError) ||
		errorx.IsOfType(err, UnknownError)
}

// IsRetryable reports whether repeating the failed operation may succeed. Only a missing manager is permanent.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errorx.IsOfType(Classify(err), NotInstalledError)
}

// Describe returns the user facing description of err.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	return Classify(err).Message()
}

// RecoverySuggestion returns the user facing hint for err.
func RecoverySuggestion(err error) string {
	if err == nil {
		return ""
	}

	e := Classify(err)
	switch {
	case errorx.IsOfType(e, NotInstalledError):
		return "Please install the package manager to view its packages"
	case errorx.IsOfType(e, TimeoutError):
		return "Try again with fewer packages or check system performance"
	case errorx.IsOfType(e, CommandFailedError):
		return "Check that the package manager is working correctly"
	case errorx.IsOfType(e, ParseFailedError):
		return "Package data format may have changed"
	default:
		return "Please try again or contact support if the issue persists"
	}
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%g seconds", d.Seconds())
}
