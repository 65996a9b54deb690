// SPDX-License-Identifier: Apache-2.0

package steps

import (
	"context"
	"regexp"
	"strings"

	"github.com/automa-saga/automa"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/pkgsource"
	"github.com/hashgraph/pkgview/internal/workflows/notify"
	"github.com/joomcode/errorx"
)

// PackageUpdater is the part of a catalog an upgrade step needs.
type PackageUpdater interface {
	Package(id models.Identity) (*models.Package, bool)
	CheckLatestVersion(ctx context.Context, id models.Identity) bool
	UpdatePackage(ctx context.Context, id models.Identity) error
}

var unsafeIdChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// UpgradeStepId returns the step id used for the package identified by id, e.g. "upgrade-npm-angular-cli".
func UpgradeStepId(id models.Identity) string {
	name := strings.Trim(unsafeIdChars.ReplaceAllString(id.Name, "-"), "-")
	return "upgrade-" + id.Manager.String() + "-" + name
}

// UpgradePackage upgrades one package through its catalog. The latest version is checked first when it is not known
// yet; a package that already has it installed is skipped. A failed check does not block the upgrade.
func UpgradePackage(updater PackageUpdater, id models.Identity) automa.Builder {
	return automa.NewStepBuilder().WithId(UpgradeStepId(id)).
		WithPrepare(func(ctx context.Context, stp automa.Step) (context.Context, error) {
			notify.As().StepStart(ctx, stp, "Upgrading %s", id)
			return ctx, nil
		}).
		WithOnFailure(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepFailure(ctx, stp, rpt, "Failed to upgrade %s", id)
		}).
		WithOnCompletion(func(ctx context.Context, stp automa.Step, rpt *automa.Report) {
			notify.As().StepCompletion(ctx, stp, rpt, "Upgrade of %s finished", id)
		}).
		WithExecute(func(ctx context.Context, stp automa.Step) *automa.Report {
			meta := map[string]string{
				MetaManager: id.Manager.String(),
				MetaPackage: id.Name,
			}

			before, ok := updater.Package(id)
			if !ok {
				return automa.FailureReport(stp,
					automa.WithError(errorx.IllegalArgument.New("package %q is not installed", id.String())),
					automa.WithMetadata(meta))
			}
			meta[MetaFromVersion] = before.InstalledVersion

			if before.LatestVersion == "" && updater.CheckLatestVersion(ctx, id) {
				if checked, ok := updater.Package(id); ok {
					before = checked
				}
			}

			if before.LatestVersion != "" && !before.UpdateAvailable() {
				meta[MetaAlreadyUpToDate] = "true"
				return automa.SkippedReport(stp,
					automa.WithDetail(id.String()+" is already up to date"),
					automa.WithMetadata(meta))
			}

			if err := updater.UpdatePackage(ctx, id); err != nil {
				meta[MetaInstructions] = pkgsource.RecoverySuggestion(err)
				return automa.FailureReport(stp, automa.WithError(err), automa.WithMetadata(meta))
			}

			if after, ok := updater.Package(id); ok {
				meta[MetaToVersion] = after.InstalledVersion
			}

			return automa.SuccessReport(stp, automa.WithMetadata(meta))
		})
}
