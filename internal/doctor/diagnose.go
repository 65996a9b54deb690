// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/automa-saga/automa"
	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/internal/config"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/pkgsource"
	"github.com/hashgraph/pkgview/internal/version"
	"github.com/joomcode/errorx"
)

// TraceIdKey is the context key holding the trace id of the running command.
const TraceIdKey = "traceId"

type ErrorDiagnosis struct {
	Error      error    `yaml:"error" json:"error"`
	Message    string   `yaml:"message" json:"message"`
	Cause      string   `yaml:"cause" json:"cause"`
	ErrorType  string   `yaml:"errorType" json:"errorType"`
	TraceId    string   `yaml:"traceId" json:"traceId"`
	Commit     string   `yaml:"commit" json:"commit"`
	Version    string   `yaml:"version" json:"version"`
	Pid        int      `yaml:"pid" json:"pid"`
	Code       int      `yaml:"code" json:"code"`
	Logfile    string   `yaml:"log" json:"log"`
	Resolution []string `yaml:"steps" json:"steps"`
}

func toErrorCode(err error) int {
	switch {
	case errorx.IsOfType(err, errorx.IllegalArgument):
		return 10400
	case errorx.IsOfType(err, errorx.IllegalFormat):
		return 10422
	case errorx.IsOfType(err, pkgsource.NotInstalledError):
		return 10424
	case errorx.IsOfType(err, pkgsource.TimeoutError):
		return 10408
	case errorx.IsOfType(err, pkgsource.CommandFailedError):
		return 10502
	case errorx.IsOfType(err, pkgsource.ParseFailedError):
		return 10503
	default:
		if errorx.HasTrait(err, errorx.NotFound()) {
			return 10404
		}
		if errorx.HasTrait(err, errorx.Timeout()) {
			return 10408
		}
		return 10500
	}
}

func toErrorMessage(err error) (string, string) {
	e := errorx.Cast(err)
	if e == nil {
		return err.Error(), ""
	}

	if e.Cause() == nil {
		return e.Message(), ""
	}
	return e.Message(), fmt.Sprintf("%s", e.Cause())
}

func findResolution(err error) []string {
	switch {
	case errorx.IsOfType(err, errorx.IllegalArgument):
		if arg, ok := errorx.ExtractProperty(err, errorx.PropertyPayload()); ok {
			return []string{fmt.Sprintf("Ensure %v is valid.", arg)}
		}
		return []string{"Ensure all required arguments are provided."}
	case errorx.IsOfType(err, errorx.IllegalFormat):
		return []string{"Ensure provided data is in correct format."}
	case errorx.IsOfType(err, config.NotFoundError):
		if arg, ok := errorx.ExtractProperty(err, errorx.PropertyPayload()); ok {
			return []string{fmt.Sprintf("Ensure configuration file %q exists, is correctly formatted and accessible", arg)}
		}
		return []string{"Ensure configuration file exists and is accessible."}
	case errorx.IsOfType(err, pkgsource.NotInstalledError):
		steps := []string{pkgsource.RecoverySuggestion(err)}
		if m, ok := errorx.ExtractProperty(err, pkgsource.ManagerProperty); ok {
			if manager, ok := m.(models.Manager); ok {
				steps = append(steps,
					fmt.Sprintf("Or set managers.%s.command in the configuration file if %s lives outside the search path.",
						manager, manager.DisplayName()))
			}
		}
		return steps
	case pkgsource.IsDomainError(err):
		steps := []string{pkgsource.RecoverySuggestion(err)}
		if errorx.IsOfType(err, pkgsource.TimeoutError) {
			steps = append(steps, "Increase the manager timeouts in the configuration file.")
		}
		return steps
	default:
		return []string{"Check error message for details or contact support"}
	}
}

// Diagnose attempts to find a resolution and provide a human friendly error response
func Diagnose(ctx context.Context, ex error) *ErrorDiagnosis {
	traceId, _ := ctx.Value(TraceIdKey).(string)

	msg, cause := toErrorMessage(ex)
	return &ErrorDiagnosis{
		Error:      ex,
		ErrorType:  errorx.GetTypeName(ex),
		Message:    msg,
		Cause:      cause,
		TraceId:    traceId,
		Code:       toErrorCode(ex),
		Commit:     version.Commit(),
		Version:    version.Number(),
		Pid:        os.Getpid(),
		Logfile:    config.Get().Log.Filename,
		Resolution: findResolution(ex),
	}
}

// Print writes the diagnosis of err to w.
// Optional instructions can be provided to give additional context to the user
func Print(w io.Writer, resp *ErrorDiagnosis, instructions ...string) {
	c := paletteFor(w)

	fmt.Fprintf(w, "\n%s%s************************************** Error Diagnostics ******************************************%s\n", c.Bold, c.Red, c.Reset)
	fmt.Fprintf(w, "%s*%s\t%sError:%s %s\n", c.Red, c.Reset, c.Bold+c.White, c.Reset, resp.Message)
	if resp.Cause != "" {
		fmt.Fprintf(w, "%s*%s\t%sCause:%s %s\n", c.Red, c.Reset, c.Bold+c.White, c.Reset, resp.Cause)
	}
	fmt.Fprintf(w, "%s*%s\t%sError Type:%s %s\n", c.Red, c.Reset, c.Bold+c.White, c.Reset, resp.ErrorType)
	fmt.Fprintf(w, "%s*%s\t%sError Code:%s %d\n", c.Red, c.Reset, c.Bold+c.White, c.Reset, resp.Code)
	fmt.Fprintf(w, "%s*%s\t%sCommit:%s %s\n", c.Red, c.Reset, c.Gray, c.Reset, resp.Commit)
	fmt.Fprintf(w, "%s*%s\t%sPid:%s %d\n", c.Red, c.Reset, c.Gray, c.Reset, resp.Pid)
	fmt.Fprintf(w, "%s*%s\t%sTraceId:%s %s\n", c.Red, c.Reset, c.Gray, c.Reset, resp.TraceId)
	fmt.Fprintf(w, "%s*%s\t%sVersion:%s %s\n", c.Red, c.Reset, c.Gray, c.Reset, resp.Version)
	if resp.Logfile != "" {
		fmt.Fprintf(w, "%s*%s\t%sLogfile:%s %s\n", c.Red, c.Reset, c.Cyan, c.Reset, resp.Logfile)
	}
	fmt.Fprintf(w, "%s%s***************************************************************************************************%s\n", c.Bold, c.Red, c.Reset)
	fmt.Fprintf(w, "\n%s%s****************************************** Resolution *********************************************%s\n", c.Bold, c.Yellow, c.Reset)

	// custom instructions go first
	if len(instructions) > 0 && instructions[0] != "" {
		for _, line := range strings.Split(instructions[0], "\n") {
			if line == "" {
				fmt.Fprintf(w, "%s*%s\n", c.Yellow, c.Reset)
			} else {
				fmt.Fprintf(w, "%s*%s\t%s\n", c.Yellow, c.Reset, c.Bold+c.White+line+c.Reset)
			}
		}
		if len(resp.Resolution) > 0 {
			fmt.Fprintf(w, "%s*%s\n", c.Yellow, c.Reset)
		}
	}

	for _, r := range resp.Resolution {
		fmt.Fprintf(w, "%s*%s\t%s\n", c.Yellow, c.Reset, c.White+r+c.Reset)
	}

	fmt.Fprintf(w, "%s%s***************************************************************************************************%s\n", c.Bold, c.Yellow, c.Reset)
}

// CheckErr prints diagnosis and exit with error code 1
// Optional instructions can be provided to give additional context to the user
func CheckErr(ctx context.Context, err error, instructions ...string) {
	if err == nil {
		return
	}

	logx.As().Error().Err(err).Msg("error occurred")
	Print(os.Stderr, Diagnose(ctx, err), instructions...)

	os.Exit(1)
}

// GetInstructionsFromReport recursively searches for instructions in report metadata.
// Returns the first non-empty instructions found in the report tree, or an empty string if none exist.
func GetInstructionsFromReport(report *automa.Report) string {
	if report == nil {
		return ""
	}

	if instructions, ok := report.Metadata["instructions"]; ok {
		return instructions
	}

	for _, stepReport := range report.StepReports {
		if instructions := GetInstructionsFromReport(stepReport); instructions != "" {
			return instructions
		}
	}

	return ""
}

// CheckReportErr diagnoses the error of a failed workflow report and exits, using instructions found in its metadata.
func CheckReportErr(ctx context.Context, report *automa.Report) {
	if report == nil || report.Error == nil {
		return
	}
	CheckErr(ctx, report.Error, GetInstructionsFromReport(report))
}
