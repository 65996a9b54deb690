// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/automa-saga/automa"
	"github.com/hashgraph/pkgview/internal/config"
	"github.com/hashgraph/pkgview/internal/execx"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/pkgsource"
	"github.com/hashgraph/pkgview/internal/version"
	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/require"
)

func TestToErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"illegal argument", errorx.IllegalArgument.New("bad"), 10400},
		{"illegal format", errorx.IllegalFormat.New("bad"), 10422},
		{"not installed", pkgsource.NewNotInstalledError(models.ManagerNpm), 10424},
		{"timeout", pkgsource.Classify(execx.TimeoutError.New("slow")), 10408},
		{"command failed", pkgsource.Classify(execx.FailedError.New("exit 1")), 10502},
		{"parse failed", pkgsource.NewParseFailedError(nil, "bad json"), 10503},
		{"config not found", config.NotFoundError.New("missing"), 10404},
		{"other", errorx.IllegalState.New("boom"), 10500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, toErrorCode(tt.err))
		})
	}
}

func TestFindResolution(t *testing.T) {
	notInstalled := pkgsource.NewNotInstalledError(models.ManagerHomebrew)
	steps := findResolution(notInstalled)
	require.Len(t, steps, 2)
	require.Equal(t, "Please install the package manager to view its packages", steps[0])
	require.Contains(t, steps[1], "managers.homebrew.command")

	steps = findResolution(pkgsource.Classify(execx.TimeoutError.New("slow")))
	require.Equal(t, []string{
		"Try again with fewer packages or check system performance",
		"Increase the manager timeouts in the configuration file.",
	}, steps)

	steps = findResolution(config.NotFoundError.New("missing").WithProperty(errorx.PropertyPayload(), "/etc/pkgview.yaml"))
	require.Len(t, steps, 1)
	require.Contains(t, steps[0], `"/etc/pkgview.yaml"`)

	steps = findResolution(errorx.IllegalArgument.New("bad").WithProperty(errorx.PropertyPayload(), "managers.enabled"))
	require.Equal(t, []string{"Ensure managers.enabled is valid."}, steps)

	steps = findResolution(errorx.IllegalState.New("boom"))
	require.Equal(t, []string{"Check error message for details or contact support"}, steps)
}

func TestDiagnose(t *testing.T) {
	ctx := context.WithValue(context.Background(), TraceIdKey, "trace-1")
	cause := errorx.IllegalState.New("root cause")
	err := errorx.IllegalArgument.Wrap(cause, "invalid input")

	d := Diagnose(ctx, err)
	require.Equal(t, "invalid input", d.Message)
	require.Contains(t, d.Cause, "root cause")
	require.Equal(t, "trace-1", d.TraceId)
	require.Equal(t, 10400, d.Code)
	require.Equal(t, version.Number(), d.Version)
	require.Equal(t, "common.illegal_argument", d.ErrorType)

	d = Diagnose(context.Background(), pkgsource.NewParseFailedError(nil, "bad json"))
	require.Empty(t, d.TraceId)
	require.Empty(t, d.Cause)
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	d := Diagnose(context.Background(), pkgsource.Classify(execx.TimeoutError.New("slow").
		WithProperty(execx.TimeoutProperty, 30*time.Second)))

	Print(&buf, d, "Run pkgview managers first\n\nthen retry")

	out := buf.String()
	require.Contains(t, out, "Error Diagnostics")
	require.Contains(t, out, "Operation timed out after 30 seconds")
	require.Contains(t, out, "Run pkgview managers first")
	require.Contains(t, out, "Try again with fewer packages or check system performance")
	require.NotContains(t, out, "\033[", "no colors when writing to a buffer")
}

func TestGetInstructionsFromReport(t *testing.T) {
	require.Empty(t, GetInstructionsFromReport(nil))

	report := &automa.Report{
		Id: "upgrade",
		StepReports: []*automa.Report{
			{Id: "npm-typescript"},
			{Id: "npm-eslint", Metadata: map[string]string{"instructions": "Run npm doctor"}},
		},
	}
	require.Equal(t, "Run npm doctor", GetInstructionsFromReport(report))
}
