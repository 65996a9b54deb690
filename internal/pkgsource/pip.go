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

const pipLatestPrefix = "LATEST:"

// PipRepository lists and upgrades Python distributions installed with pip.
type PipRepository struct {
	commandRepository
}

type pipListEntry struct {
	Name    *string `json:"name"`
	Version string  `json:"version"`
}

func NewPipRepository(runner execx.Runner, s Settings) *PipRepository {
	return &PipRepository{
		commandRepository: commandRepository{
			manager:  models.ManagerPip,
			runner:   runner,
			settings: s,
		},
	}
}

func (r *PipRepository) FetchPackages(ctx context.Context) ([]*models.Package, error) {
	out, err := r.run(ctx, r.settings.ListTimeout, "list", "--format=json")
	if err != nil {
		return nil, err
	}

	entries, err := parsePipList(out)
	if err != nil {
		return nil, err
	}

	site := r.sitePackages(ctx)

	pkgs := make([]*models.Package, 0, len(entries))
	for _, e := range entries {
		if e.Name == nil || strings.TrimSpace(*e.Name) == "" {
			continue
		}
		name := strings.TrimSpace(*e.Name)
		pkgs = append(pkgs, models.NewPackage(models.ManagerPip, name, e.Version, pipInstallPath(site, name)))
	}

	r.enrich(ctx, pkgs)
	return pkgs, nil
}

func parsePipList(out string) ([]pipListEntry, error) {
	var entries *[]pipListEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		return nil, NewParseFailedError(err, "pip list output is not a JSON array")
	}
	if entries == nil {
		return nil, NewParseFailedError(nil, "pip list output is null")
	}
	return *entries, nil
}

// sitePackages asks the interpreter for its site directories and picks the first site-packages or dist-packages one.
func (r *PipRepository) sitePackages(ctx context.Context) string {
	if r.settings.Interpreter != "" {
		out, err := r.runner.Execute(ctx, r.settings.Interpreter, []string{"-m", "site"}, r.settings.ListTimeout)
		if err == nil {
			if dir := parseSiteOutput(out); dir != "" {
				return dir
			}
		}
		logx.As().Debug().Err(err).Str("fallback", r.settings.FallbackPrefix).Msg("Using fallback site-packages")
	}
	return r.settings.FallbackPrefix
}

func parseSiteOutput(out string) string {
	cleaner := strings.NewReplacer("'", "", "\"", "", ",", "")
	for _, line := range strings.Split(out, "\n") {
		candidate := strings.TrimSpace(cleaner.Replace(line))
		if !filepath.IsAbs(candidate) {
			continue
		}
		if strings.Contains(candidate, "site-packages") || strings.Contains(candidate, "dist-packages") {
			return candidate
		}
	}
	return ""
}

// pipInstallPath maps a distribution name to its directory under site. An existing directory whose name matches
// case-insensitively wins; otherwise hyphens become underscores and case is kept.
func pipInstallPath(site, name string) string {
	dirName := strings.ReplaceAll(name, "-", "_")

	if entries, err := os.ReadDir(site); err == nil {
		for _, e := range entries {
			if e.IsDir() && strings.EqualFold(e.Name(), dirName) {
				return filepath.Join(site, e.Name())
			}
		}
	}

	return filepath.Join(site, dirName)
}

func (r *PipRepository) QueryLatestVersion(ctx context.Context, pkg models.Package) (string, error) {
	out, err := r.run(ctx, r.settings.QueryTimeout, "index", "versions", pkg.Name())
	if err != nil {
		return "", err
	}

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, pipLatestPrefix) {
			continue
		}
		if v := strings.TrimSpace(strings.TrimPrefix(line, pipLatestPrefix)); v != "" {
			return v, nil
		}
	}

	return "", NewParseFailedError(nil, "pip index output has no %s line for %s", pipLatestPrefix, pkg.Name()).
		WithProperty(PackageProperty, pkg.Name())
}

func (r *PipRepository) UpdatePackage(ctx context.Context, pkg models.Package) error {
	_, err := r.run(ctx, r.settings.UpdateTimeout, "install", "--upgrade", pkg.Name())
	return err
}
