// SPDX-License-Identifier: Apache-2.0

package pkgsource

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/internal/execx"
	"github.com/hashgraph/pkgview/internal/models"
)

// HomebrewRepository lists and upgrades Homebrew formulae.
type HomebrewRepository struct {
	commandRepository
}

type brewInfoOutput struct {
	Formulae []struct {
		Versions struct {
			Stable string `json:"stable"`
		} `json:"versions"`
	} `json:"formulae"`
}

func NewHomebrewRepository(runner execx.Runner, s Settings) *HomebrewRepository {
	return &HomebrewRepository{
		commandRepository: commandRepository{
			manager:  models.ManagerHomebrew,
			runner:   runner,
			settings: s,
		},
	}
}

func (r *HomebrewRepository) FetchPackages(ctx context.Context) ([]*models.Package, error) {
	out, err := r.run(ctx, r.settings.ListTimeout, "list", "--formula")
	if err != nil {
		return nil, err
	}

	cellar := filepath.Join(r.prefix(ctx), "Cellar")

	var pkgs []*models.Package
	for _, name := range splitLines(out) {
		path := filepath.Join(cellar, name)
		pkgs = append(pkgs, models.NewPackage(models.ManagerHomebrew, name, installedCellarVersion(path), path))
	}

	r.enrich(ctx, pkgs)
	return pkgs, nil
}

func (r *HomebrewRepository) prefix(ctx context.Context) string {
	out, err := r.runner.Execute(ctx, r.settings.Command, []string{"--prefix"}, r.settings.ListTimeout)
	prefix := strings.TrimSpace(out)
	if err != nil || prefix == "" {
		logx.As().Debug().Err(err).Str("fallback", r.settings.FallbackPrefix).Msg("Using fallback Homebrew prefix")
		return r.settings.FallbackPrefix
	}
	return prefix
}

// installedCellarVersion returns the greatest version directory of a keg, or "" when none can be read.
func installedCellarVersion(kegPath string) string {
	entries, err := os.ReadDir(kegPath)
	if err != nil {
		return ""
	}

	var versions []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			versions = append(versions, e.Name())
		}
	}
	return LatestVersion(versions)
}

func (r *HomebrewRepository) QueryLatestVersion(ctx context.Context, pkg models.Package) (string, error) {
	out, err := r.run(ctx, r.settings.QueryTimeout, "info", "--json=v2", pkg.Name())
	if err != nil {
		return "", err
	}

	var info brewInfoOutput
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		return "", NewParseFailedError(err, "brew info output is not valid JSON").
			WithProperty(PackageProperty, pkg.Name())
	}
	if len(info.Formulae) == 0 || strings.TrimSpace(info.Formulae[0].Versions.Stable) == "" {
		return "", NewParseFailedError(nil, "brew info has no stable version for %s", pkg.Name()).
			WithProperty(PackageProperty, pkg.Name())
	}
	return strings.TrimSpace(info.Formulae[0].Versions.Stable), nil
}

// UpdatePackage upgrades the formula. If that fails, the package is retried as a cask when the cask list contains
// it; otherwise the formula failure is returned.
func (r *HomebrewRepository) UpdatePackage(ctx context.Context, pkg models.Package) error {
	_, upgradeErr := r.run(ctx, r.settings.UpdateTimeout, "upgrade", pkg.Name())
	if upgradeErr == nil {
		return nil
	}

	logx.As().Debug().Err(upgradeErr).Str("package", pkg.Name()).Msg("Formula upgrade failed, checking casks")

	casks, err := r.run(ctx, r.settings.ListTimeout, "list", "--cask")
	if err != nil {
		return err
	}

	for _, c := range splitLines(casks) {
		if c == pkg.Name() {
			_, err = r.run(ctx, r.settings.UpdateTimeout, "upgrade", "--cask", pkg.Name())
			return err
		}
	}

	return upgradeErr
}

func splitLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
