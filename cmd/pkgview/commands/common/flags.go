// SPDX-License-Identifier: Apache-2.0

package common

import (
	"context"
	"fmt"
	"strings"

	"github.com/automa-saga/automa"
	"github.com/hashgraph/pkgview/internal/bll"
	"github.com/hashgraph/pkgview/internal/doctor"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/report"
	"github.com/joomcode/errorx"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	FlagManager = FlagDefinition[string]{
		Name:        "manager",
		ShortName:   "m",
		Description: fmt.Sprintf("Package manager %s", models.AllManagers()),
		Default:     "",
	}

	FlagOutput = FlagDefinition[string]{
		Name:        "output",
		ShortName:   "o",
		Description: fmt.Sprintf("Output format (%s)", strings.Join(report.Formats, "|")),
		Default:     report.FormatTable,
	}

	FlagSearch = FlagDefinition[string]{
		Name:        "search",
		ShortName:   "s",
		Description: "Only show packages whose name contains this text",
		Default:     "",
	}

	FlagAll = FlagDefinition[bool]{
		Name:        "all",
		ShortName:   "a",
		Description: "Apply to every installed package",
		Default:     false,
	}

	FlagConcurrency = FlagDefinition[int]{
		Name:        "concurrency",
		ShortName:   "",
		Description: "Maximum number of package manager queries running at once",
		Default:     bll.DefaultCheckConcurrency,
	}

	FlagYes = FlagDefinition[bool]{
		Name:        "yes",
		ShortName:   "y",
		Description: "Skip the confirmation prompt",
		Default:     false,
	}

	FlagStopOnError = FlagDefinition[bool]{
		Name:        "stop-on-error",
		ShortName:   "",
		Description: "Stop at the first failed package",
		Default:     true,
	}

	FlagContinueOnError = FlagDefinition[bool]{
		Name:        "continue-on-error",
		ShortName:   "",
		Description: "Keep upgrading the remaining packages when one fails",
		Default:     false,
	}

	FlagRollbackOnError = FlagDefinition[bool]{
		Name:        "rollback-on-error",
		ShortName:   "",
		Description: "Roll back on failure (not supported by package upgrades)",
		Default:     false,
	}
)

// FlagDefinition defines a command-line flag typed by T.
type FlagDefinition[T any] struct {
	Name        string
	ShortName   string
	Description string
	Default     T
}

func (fp *FlagDefinition[T]) valueFrom(flags *pflag.FlagSet) (T, error) {
	var zero T
	var v any
	var err error

	switch any(zero).(type) {
	case string:
		v, err = flags.GetString(fp.Name)
	case bool:
		v, err = flags.GetBool(fp.Name)
	case int:
		v, err = flags.GetInt(fp.Name)
	case []string:
		v, err = flags.GetStringSlice(fp.Name)
	default:
		return zero, errorx.IllegalArgument.New("unsupported flag type %T for flag %s", zero, fp.Name)
	}

	if err != nil {
		return zero, errorx.IllegalArgument.Wrap(err, "failed to read flag %s", fp.Name).
			WithProperty(errorx.PropertyPayload(), "--"+fp.Name)
	}

	return v.(T), nil
}

// Value extracts the flag value from the full flag set of cmd, including persistent flags inherited from parents.
func (fp *FlagDefinition[T]) Value(cmd *cobra.Command, args []string) (T, error) {
	if args == nil {
		args = []string{}
	}

	err := cmd.ParseFlags(args)
	if err != nil {
		var zero T
		return zero, errorx.InternalError.Wrap(err, "failed to parse flags for command %s", cmd.Name())
	}

	return fp.valueFrom(cmd.Flags())
}

// SetVarP sets up the persistent flag and exits on error.
func (fp *FlagDefinition[T]) SetVarP(cmd *cobra.Command, p *T, required bool) {
	if err := fp.register(cmd, cmd.PersistentFlags(), p, required, true); err != nil {
		doctor.CheckErr(context.Background(), err, fmt.Sprintf("failed to set flag %s", fp.Name))
	}
}

// SetVar sets up the non-persistent flag and exits on error.
func (fp *FlagDefinition[T]) SetVar(cmd *cobra.Command, p *T, required bool) {
	if err := fp.register(cmd, cmd.Flags(), p, required, false); err != nil {
		doctor.CheckErr(context.Background(), err, fmt.Sprintf("failed to set flag %s", fp.Name))
	}
}

func (fp *FlagDefinition[T]) register(cmd *cobra.Command, flags *pflag.FlagSet, p *T, required, persistent bool) error {
	if p == nil {
		return errorx.IllegalArgument.New("pointer for flag %s is nil", fp.Name)
	}
	if cmd == nil {
		return errorx.IllegalArgument.New("command for flag %s is nil", fp.Name)
	}

	switch ptr := any(p).(type) {
	case *string:
		flags.StringVarP(ptr, fp.Name, fp.ShortName, any(fp.Default).(string), fp.Description)
	case *bool:
		flags.BoolVarP(ptr, fp.Name, fp.ShortName, any(fp.Default).(bool), fp.Description)
	case *int:
		flags.IntVarP(ptr, fp.Name, fp.ShortName, any(fp.Default).(int), fp.Description)
	case *[]string:
		flags.StringSliceVarP(ptr, fp.Name, fp.ShortName, any(fp.Default).([]string), fp.Description)
	default:
		return errorx.IllegalArgument.New("unsupported flag type %T for flag %s", p, fp.Name)
	}

	if !required {
		return nil
	}

	var err error
	if persistent {
		err = cmd.MarkPersistentFlagRequired(fp.Name)
	} else {
		err = cmd.MarkFlagRequired(fp.Name)
	}
	if err != nil {
		return errorx.InternalError.Wrap(err, "failed to mark flag %s as required", fp.Name)
	}

	return nil
}

// GetExecutionMode determines the execution mode based on the provided flags.
// At most one of them may be set. continueOnErr wins over rollbackOnErr, which wins over the stopOnErr default.
func GetExecutionMode(continueOnErr bool, stopOnErr bool, rollbackOnErr bool) (automa.TypeMode, error) {
	count := 0
	for _, set := range []bool{continueOnErr, stopOnErr, rollbackOnErr} {
		if set {
			count++
		}
	}

	if count > 1 {
		return automa.StopOnError, errorx.IllegalArgument.New("only one of execution mode can be set; "+
			"found continue-on-error: %t, stop-on-error: %t, rollback-on-error: %t", continueOnErr, stopOnErr, rollbackOnErr).
			WithProperty(errorx.PropertyPayload(), "--continue-on-error")
	}

	switch {
	case continueOnErr:
		return automa.ContinueOnError, nil
	case rollbackOnErr:
		return automa.RollbackOnError, nil
	default:
		return automa.StopOnError, nil
	}
}

// ParseManager resolves the --manager value against the enabled managers. An empty value is allowed only when a
// single manager is enabled.
func ParseManager(b bll.BLL, value string) (models.Manager, error) {
	enabled := b.Managers()

	if strings.TrimSpace(value) == "" {
		if len(enabled) == 1 {
			return enabled[0], nil
		}
		return "", errorx.IllegalArgument.New("--manager is required, expected one of %s", enabled).
			WithProperty(errorx.PropertyPayload(), "--manager")
	}

	m, err := models.ParseManager(value)
	if err != nil {
		return "", errorx.IllegalArgument.Wrap(err, "invalid --manager").
			WithProperty(errorx.PropertyPayload(), "--manager")
	}

	for _, e := range enabled {
		if e == m {
			return m, nil
		}
	}

	return "", errorx.IllegalArgument.New("%s is not enabled, expected one of %s", m.DisplayName(), enabled).
		WithProperty(errorx.PropertyPayload(), "managers.enabled")
}

// SelectManagers returns the manager named by value, or every enabled manager when value is empty.
func SelectManagers(b bll.BLL, value string) ([]models.Manager, error) {
	if strings.TrimSpace(value) == "" {
		return b.Managers(), nil
	}

	m, err := ParseManager(b, value)
	if err != nil {
		return nil, err
	}
	return []models.Manager{m}, nil
}
