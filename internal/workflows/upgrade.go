// SPDX-License-Identifier: Apache-2.0

package workflows

import (
	"context"

	"github.com/automa-saga/automa"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/workflows/notify"
	"github.com/hashgraph/pkgview/internal/workflows/steps"
	"github.com/joomcode/errorx"
)

// UpgradePackagesWorkflow upgrades the given packages of manager m one after another. With automa.ContinueOnError a
// failed upgrade doesn't stop the remaining ones. Upgrades cannot be undone, so rollback is rejected.
func UpgradePackagesWorkflow(updater steps.PackageUpdater, m models.Manager, names []string, mode automa.TypeMode) (*automa.WorkflowBuilder, error) {
	if mode == automa.RollbackOnError {
		return nil, errorx.IllegalArgument.New("package upgrades cannot be rolled back").
			WithProperty(errorx.PropertyPayload(), "execution mode")
	}

	if len(names) == 0 {
		return nil, errorx.IllegalArgument.New("no packages to upgrade").
			WithProperty(errorx.PropertyPayload(), "package names")
	}

	seen := make(map[models.Identity]bool, len(names))
	var builders []automa.Builder
	for _, n := range names {
		id := models.NewIdentity(m, n)
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, ok := updater.Package(id); !ok {
			return nil, errorx.IllegalArgument.New("%s has no installed package named %q", m.DisplayName(), id.Name).
				WithProperty(errorx.PropertyPayload(), id.Name)
		}
		builders = append(builders, steps.UpgradePackage(updater, id))
	}

	return automa.NewWorkflowBuilder().WithId("upgrade-" + m.String()).
		Steps(builders...).
		WithExecutionMode(mode).
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Upgrading %d %s package(s)", len(builders), m.DisplayName())
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Failed to upgrade %s packages", m.DisplayName())
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "%s packages upgraded", m.DisplayName())
		}), nil
}

// UpgradeSummary counts the outcome of every package step of an upgrade report.
type UpgradeSummary struct {
	Upgraded []string
	Skipped  []string
	Failed   []string
}

// Summarize walks the step reports of an upgrade workflow.
func Summarize(report *automa.Report) UpgradeSummary {
	var s UpgradeSummary
	if report == nil {
		return s
	}

	for _, r := range report.StepReports {
		name := r.Metadata[steps.MetaPackage]
		if name == "" {
			name = r.Id
		}
		switch r.Status {
		case automa.StatusSuccess:
			s.Upgraded = append(s.Upgraded, name)
		case automa.StatusSkipped:
			s.Skipped = append(s.Skipped, name)
		case automa.StatusFailed:
			s.Failed = append(s.Failed, name)
		}
	}
	return s
}
