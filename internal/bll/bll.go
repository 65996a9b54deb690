// SPDX-License-Identifier: Apache-2.0

package bll

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/internal/catalog"
	"github.com/hashgraph/pkgview/internal/config"
	"github.com/hashgraph/pkgview/internal/execx"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/pkgsource"
	"github.com/joomcode/errorx"
	"golang.org/x/sync/errgroup"
)

// DefaultCheckConcurrency bounds the number of latest-version queries running at once when the caller doesn't say.
const DefaultCheckConcurrency = 4

// BLL is the interface for the business logic layer. It owns one catalog per enabled package manager and is shared by
// the CLI commands and the terminal UI, so both surfaces perform the same operations without duplicating the logic.
//
// Catalogs are created once and live as long as the BLL; their lifecycle (load, refresh, update) is driven by callers.
type BLL interface {
	// Managers returns the enabled managers in configuration order.
	Managers() []models.Manager

	// Catalog returns the catalog of m, or an error if m isn't enabled.
	Catalog(m models.Manager) (*catalog.Catalog, error)

	// Catalogs returns the catalogs of all enabled managers in configuration order.
	Catalogs() []*catalog.Catalog

	// Availability probes every enabled manager concurrently.
	Availability(ctx context.Context) []ManagerStatus

	// Load loads the catalog of m and returns it. The catalog is returned even when loading fails so that callers can
	// inspect its state.
	Load(ctx context.Context, m models.Manager) (*catalog.Catalog, error)

	// CheckLatest queries the latest version of the named packages of m, or of every package when names is empty.
	// At most concurrency queries run at once.
	CheckLatest(ctx context.Context, m models.Manager, names []string, concurrency int) ([]*models.Package, error)
}

// ManagerStatus is the result of probing one manager.
type ManagerStatus struct {
	Manager   models.Manager `yaml:"manager" json:"manager" toml:"manager"`
	Name      string         `yaml:"name" json:"name" toml:"name"`
	Command   string         `yaml:"command" json:"command" toml:"command"`
	Available bool           `yaml:"available" json:"available" toml:"available"`
}

// RepositoryFactory creates the repository of one manager.
type RepositoryFactory func(m models.Manager, runner execx.Runner, s pkgsource.Settings) (pkgsource.Repository, error)

// Option customizes the BLL.
type Option func(b *bll)

// WithRunner replaces the process runner built from the configuration.
func WithRunner(r execx.Runner) Option {
	return func(b *bll) {
		if r != nil {
			b.runner = r
		}
	}
}

// WithRepositoryFactory replaces pkgsource.New.
func WithRepositoryFactory(f RepositoryFactory) Option {
	return func(b *bll) {
		if f != nil {
			b.factory = f
		}
	}
}

// bll is the implementation of BLL interface
type bll struct {
	mu       sync.RWMutex
	conf     config.Config
	runner   execx.Runner
	factory  RepositoryFactory
	managers []models.Manager
	settings map[models.Manager]pkgsource.Settings
	catalogs map[models.Manager]*catalog.Catalog
}

func (b *bll) Managers() []models.Manager {
	return append([]models.Manager(nil), b.managers...)
}

func (b *bll) Catalog(m models.Manager) (*catalog.Catalog, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	c, ok := b.catalogs[m]
	if !ok {
		return nil, errorx.IllegalArgument.New("package manager %q is not enabled, enabled managers: %s", m, b.managers).
			WithProperty(errorx.PropertyPayload(), m.String())
	}
	return c, nil
}

func (b *bll) Catalogs() []*catalog.Catalog {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]*catalog.Catalog, 0, len(b.managers))
	for _, m := range b.managers {
		result = append(result, b.catalogs[m])
	}
	return result
}

func (b *bll) Availability(ctx context.Context) []ManagerStatus {
	result := make([]ManagerStatus, len(b.managers))

	var g errgroup.Group
	for i, m := range b.managers {
		c, _ := b.Catalog(m)
		result[i] = ManagerStatus{
			Manager: m,
			Name:    m.DisplayName(),
			Command: b.settings[m].Command,
		}
		g.Go(func() error {
			result[i].Available = c.Repository().IsAvailable(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return result
}

func (b *bll) Load(ctx context.Context, m models.Manager) (*catalog.Catalog, error) {
	c, err := b.Catalog(m)
	if err != nil {
		return nil, err
	}
	return c, c.Load(ctx)
}

func (b *bll) CheckLatest(ctx context.Context, m models.Manager, names []string, concurrency int) ([]*models.Package, error) {
	c, err := b.Load(ctx, m)
	if err != nil {
		return nil, err
	}

	ids, err := resolveTargets(c, names)
	if err != nil {
		return nil, err
	}

	if concurrency <= 0 {
		concurrency = DefaultCheckConcurrency
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			c.CheckLatestVersion(gctx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*models.Package, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.Package(id); ok {
			result = append(result, p)
		}
	}

	logx.As().Debug().
		Str("manager", m.String()).
		Int("count", len(result)).
		Int("concurrency", concurrency).
		Msg("Checked latest versions")

	return result, nil
}

// resolveTargets maps names onto catalog identities; every package when names is empty.
func resolveTargets(c *catalog.Catalog, names []string) ([]models.Identity, error) {
	if len(names) == 0 {
		pkgs := c.Packages()
		ids := make([]models.Identity, 0, len(pkgs))
		for _, p := range pkgs {
			ids = append(ids, p.ID)
		}
		return ids, nil
	}

	var missing []string
	seen := make(map[models.Identity]bool, len(names))
	ids := make([]models.Identity, 0, len(names))
	for _, n := range names {
		id := models.NewIdentity(c.Manager(), n)
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, ok := c.Package(id); !ok {
			missing = append(missing, id.Name)
			continue
		}
		ids = append(ids, id)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, errorx.IllegalArgument.New("%s has no installed package named %s", c.Manager().DisplayName(),
			strings.Join(missing, ", ")).
			WithProperty(errorx.PropertyPayload(), missing)
	}

	return ids, nil
}

// SettingsFor overlays the configured values of m onto its built-in settings.
func SettingsFor(conf config.Config, m models.Manager) pkgsource.Settings {
	s := pkgsource.DefaultSettings(m)
	mc := conf.Managers.For(m)

	if mc.Command != "" {
		s.Command = mc.Command
	}
	if mc.Interpreter != "" {
		s.Interpreter = mc.Interpreter
	}
	if mc.ProbeTimeout > 0 {
		s.ProbeTimeout = mc.ProbeTimeout
	}
	if mc.ListTimeout > 0 {
		s.ListTimeout = mc.ListTimeout
	}
	if mc.QueryTimeout > 0 {
		s.QueryTimeout = mc.QueryTimeout
	}
	if mc.UpdateTimeout > 0 {
		s.UpdateTimeout = mc.UpdateTimeout
	}
	if mc.FallbackPrefix != "" {
		s.FallbackPrefix = mc.FallbackPrefix
	}
	s.Enrich = conf.Managers.Enrich

	return s
}

// New creates a new instance of BLL with one catalog per enabled manager.
// The configuration is copied so later changes to conf don't leak in.
func New(conf *config.Config, opts ...Option) (BLL, error) {
	if conf == nil {
		return nil, errorx.IllegalArgument.New("config is nil")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	managers, err := conf.Managers.EnabledManagers()
	if err != nil {
		return nil, err
	}

	b := &bll{
		conf:     *conf,
		factory:  pkgsource.New,
		managers: managers,
		settings: make(map[models.Manager]pkgsource.Settings, len(managers)),
		catalogs: make(map[models.Manager]*catalog.Catalog, len(managers)),
	}
	for _, opt := range opts {
		opt(b)
	}

	if b.runner == nil {
		b.runner = execx.NewRunner(
			execx.WithSearchPath(conf.Runner.SearchPath),
			execx.WithDefaultTimeout(conf.Runner.DefaultTimeout),
		)
	}

	for _, m := range managers {
		s := SettingsFor(*conf, m)
		repo, err := b.factory(m, b.runner, s)
		if err != nil {
			return nil, err
		}
		b.settings[m] = s
		b.catalogs[m] = catalog.New(repo)
	}

	return b, nil
}
