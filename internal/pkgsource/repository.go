// SPDX-License-Identifier: Apache-2.0

// Package pkgsource adapts individual package managers to a single Repository contract.
//
// Every adapter is stateless apart from its configuration; all state lives in the catalog that owns it.
package pkgsource

import (
	"context"
	"time"

	"github.com/hashgraph/pkgview/internal/execx"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/joomcode/errorx"
)

// Repository is the contract every package-manager adapter implements.
type Repository interface {
	// Manager returns the manager this repository talks to.
	Manager() models.Manager

	// IsAvailable probes the manager. It never fails; any error means "not available".
	IsAvailable(ctx context.Context) bool

	// FetchPackages returns all installed packages, enriched best-effort.
	FetchPackages(ctx context.Context) ([]*models.Package, error)

	// QueryLatestVersion returns the newest version the manager can install for pkg.
	QueryLatestVersion(ctx context.Context, pkg models.Package) (string, error)

	// UpdatePackage upgrades pkg to its latest version.
	UpdatePackage(ctx context.Context, pkg models.Package) error
}

// Settings tunes one adapter.
type Settings struct {
	// Command is the manager executable, resolved against the runner search path.
	Command string
	// Interpreter is the helper used to discover the install root (pip only).
	Interpreter string

	ProbeTimeout  time.Duration
	ListTimeout   time.Duration
	QueryTimeout  time.Duration
	UpdateTimeout time.Duration

	// FallbackPrefix is the install root used when the manager cannot report its own.
	FallbackPrefix string

	// Enrich turns on size and installation date discovery after a fetch.
	Enrich bool
}

// DefaultSettings returns the built-in settings of m.
func DefaultSettings(m models.Manager) Settings {
	s := Settings{
		ProbeTimeout:  30 * time.Second,
		ListTimeout:   30 * time.Second,
		QueryTimeout:  30 * time.Second,
		UpdateTimeout: 180 * time.Second,
		Enrich:        true,
	}

	switch m {
	case models.ManagerNpm:
		s.Command = "npm"
		s.UpdateTimeout = 600 * time.Second
		s.FallbackPrefix = "/usr/local"
	case models.ManagerHomebrew:
		s.Command = "brew"
		s.FallbackPrefix = "/usr/local"
	case models.ManagerPip:
		s.Command = "pip3"
		s.Interpreter = "python3"
		s.QueryTimeout = 15 * time.Second
		s.FallbackPrefix = "/opt/anaconda3/lib/python3.13/site-packages"
	case models.ManagerApt:
		s.Command = "apt"
	}

	return s
}

// New creates the repository for m. Process backed adapters use runner; the apt adapter talks to syspkg directly.
func New(m models.Manager, runner execx.Runner, s Settings) (Repository, error) {
	switch m {
	case models.ManagerNpm:
		return NewNpmRepository(runner, s), nil
	case models.ManagerHomebrew:
		return NewHomebrewRepository(runner, s), nil
	case models.ManagerPip:
		return NewPipRepository(runner, s), nil
	case models.ManagerApt:
		return NewAptRepository(s), nil
	default:
		return nil, errorx.IllegalArgument.New("no repository for package manager %q", m).
			WithProperty(errorx.PropertyPayload(), string(m))
	}
}

// commandRepository holds what every process backed adapter shares.
type commandRepository struct {
	manager  models.Manager
	runner   execx.Runner
	settings Settings
}

func (r *commandRepository) Manager() models.Manager {
	return r.manager
}

func (r *commandRepository) IsAvailable(ctx context.Context) bool {
	_, err := r.runner.Execute(ctx, r.settings.Command, []string{"--version"}, r.settings.ProbeTimeout)
	return err == nil
}

// run executes the manager command and maps failures onto the domain taxonomy.
func (r *commandRepository) run(ctx context.Context, timeout time.Duration, args ...string) (string, error) {
	out, err := r.runner.Execute(ctx, r.settings.Command, args, timeout)
	if err != nil {
		return "", Classify(err).WithProperty(ManagerProperty, r.manager)
	}
	return out, nil
}

func (r *commandRepository) enrich(ctx context.Context, pkgs []*models.Package) {
	if r.settings.Enrich {
		Enrich(ctx, pkgs)
	}
}
