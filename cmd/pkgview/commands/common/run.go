// SPDX-License-Identifier: Apache-2.0

package common

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/automa-saga/automa"
	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/internal/bll"
	"github.com/hashgraph/pkgview/internal/config"
	"github.com/hashgraph/pkgview/internal/doctor"
	"github.com/hashgraph/pkgview/internal/workflows/steps"
	"github.com/spf13/cobra"
)

// NewBLL builds the business logic layer from the loaded configuration. Tests replace it to inject fakes.
var NewBLL = func() (bll.BLL, error) {
	conf := config.Get()
	return bll.New(&conf)
}

// ExecuteWorkflow builds and executes a workflow. A workflow that cannot be built is fatal.
func ExecuteWorkflow(ctx context.Context, b automa.Builder) *automa.Report {
	wb, err := b.Build()
	if err != nil {
		doctor.CheckErr(ctx, err)
	}

	return wb.Execute(ctx)
}

// CheckWorkflowReport prints report, saves it under the configured report directory and diagnoses failed steps.
// Failed steps are only fatal in stop-on-error mode, which surfaces as an error on the workflow report itself.
func CheckWorkflowReport(ctx context.Context, report *automa.Report) {
	path := ReportPath(report.Id, time.Now())
	steps.PrintWorkflowReport(report, path)
	if path != "" {
		logx.As().Info().Str("report_path", path).Msg("Workflow report is saved")
	}

	if report.Error != nil {
		doctor.CheckReportErr(ctx, report)
	}

	for _, stepReport := range report.StepReports {
		if stepReport.Status == automa.StatusFailed {
			logx.As().Warn().
				Err(stepReport.Error).
				Str("step_id", stepReport.Id).
				Str("instructions", doctor.GetInstructionsFromReport(stepReport)).
				Msg("Step failed")
		}
	}
}

// ReportPath returns where the report of workflow id is saved, or "" when no report directory is configured.
func ReportPath(id string, at time.Time) string {
	dir := config.Get().ReportDir
	if dir == "" {
		return ""
	}

	return filepath.Join(dir, fmt.Sprintf("%s_report_%s.yaml", id, at.Format("20060102_150405")))
}

// DefaultRunE shows the help message. Every command gets a run function so that cobra marks it as runnable.
func DefaultRunE(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}
