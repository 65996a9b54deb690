// SPDX-License-Identifier: Apache-2.0

package pkgsource

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"

	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/internal/execx"
	"github.com/hashgraph/pkgview/internal/models"
)

// NpmRepository lists and upgrades globally installed Node packages.
type NpmRepository struct {
	commandRepository
}

type npmListOutput struct {
	Dependencies *map[string]npmDependency `json:"dependencies"`
}

type npmDependency struct {
	Version string `json:"version"`
}

func NewNpmRepository(runner execx.Runner, s Settings) *NpmRepository {
	return &NpmRepository{
		commandRepository: commandRepository{
			manager:  models.ManagerNpm,
			runner:   runner,
			settings: s,
		},
	}
}

func (r *NpmRepository) FetchPackages(ctx context.Context) ([]*models.Package, error) {
	out, err := r.run(ctx, r.settings.ListTimeout, "list", "-g", "--depth=0", "--json")
	if err != nil {
		return nil, err
	}

	deps, err := parseNpmList(out)
	if err != nil {
		return nil, err
	}

	root := filepath.Join(r.globalPrefix(ctx), "lib", "node_modules")

	names := make([]string, 0, len(deps))
	for name := range deps {
		names = append(names, name)
	}
	sort.Strings(names)

	pkgs := make([]*models.Package, 0, len(names))
	for _, name := range names {
		pkgs = append(pkgs, models.NewPackage(models.ManagerNpm, name, deps[name].Version, filepath.Join(root, name)))
	}

	r.enrich(ctx, pkgs)
	return pkgs, nil
}

func parseNpmList(out string) (map[string]npmDependency, error) {
	var parsed npmListOutput
	if err := json.Unmarshal([]byte(out), &parsed); err != nil {
		return nil, NewParseFailedError(err, "npm list output is not valid JSON")
	}
	if parsed.Dependencies == nil {
		return nil, NewParseFailedError(nil, "npm list output has no dependencies object")
	}
	return *parsed.Dependencies, nil
}

// globalPrefix asks npm for its global prefix; failures fall back to the configured default.
func (r *NpmRepository) globalPrefix(ctx context.Context) string {
	out, err := r.runner.Execute(ctx, r.settings.Command, []string{"prefix", "-g"}, r.settings.ListTimeout)
	prefix := strings.TrimSpace(out)
	if err != nil || prefix == "" {
		logx.As().Debug().Err(err).Str("fallback", r.settings.FallbackPrefix).Msg("Using fallback npm prefix")
		return r.settings.FallbackPrefix
	}
	return prefix
}

func (r *NpmRepository) QueryLatestVersion(ctx context.Context, pkg models.Package) (string, error) {
	out, err := r.run(ctx, r.settings.QueryTimeout, "view", pkg.Name(), "version")
	if err != nil {
		return "", err
	}

	v := strings.TrimSpace(out)
	if v == "" {
		return "", NewParseFailedError(nil, "npm view returned no version for %s", pkg.Name()).
			WithProperty(PackageProperty, pkg.Name())
	}
	return v, nil
}

func (r *NpmRepository) UpdatePackage(ctx context.Context, pkg models.Package) error {
	_, err := r.run(ctx, r.settings.UpdateTimeout, "install", "-g", pkg.Name()+"@latest")
	return err
}
