// SPDX-License-Identifier: Apache-2.0

package pkgsource

import (
	"context"
	"sync"
	"time"

	"github.com/bluet/syspkg"
	"github.com/bluet/syspkg/manager"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/joomcode/errorx"
)

// AptBackend is the subset of a syspkg package manager used by AptRepository.
type AptBackend interface {
	ListInstalled(opts *manager.Options) ([]manager.PackageInfo, error)
	Find(keywords []string, opts *manager.Options) ([]manager.PackageInfo, error)
}

// aptUpgrader is implemented by the apt backend of syspkg.
type aptUpgrader interface {
	Upgrade(pkgs []string, opts *manager.Options) ([]manager.PackageInfo, error)
}

// AptRepository lists and upgrades Debian system packages through syspkg.
type AptRepository struct {
	settings Settings
	resolve  func() (AptBackend, error)

	once    sync.Once
	backend AptBackend
	initErr error
}

type AptOption func(r *AptRepository)

// WithAptBackend replaces syspkg discovery with a fixed backend.
func WithAptBackend(b AptBackend) AptOption {
	return func(r *AptRepository) {
		r.resolve = func() (AptBackend, error) { return b, nil }
	}
}

func NewAptRepository(s Settings, opts ...AptOption) *AptRepository {
	r := &AptRepository{
		settings: s,
		resolve:  discoverAptBackend,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func discoverAptBackend() (AptBackend, error) {
	sp, err := syspkg.New(syspkg.IncludeOptions{AllAvailable: true})
	if err != nil {
		return nil, err
	}

	pm, err := sp.GetPackageManager("apt")
	if err != nil {
		return nil, err
	}
	return pm, nil
}

func (r *AptRepository) Manager() models.Manager {
	return models.ManagerApt
}

func (r *AptRepository) pm() (AptBackend, error) {
	r.once.Do(func() {
		r.backend, r.initErr = r.resolve()
		if r.initErr == nil && r.backend == nil {
			r.initErr = errorx.IllegalState.New("no apt backend")
		}
	})
	if r.initErr != nil {
		return nil, NotInstalledError.Wrap(r.initErr, "Package manager is not installed on this system").
			WithProperty(ManagerProperty, models.ManagerApt)
	}
	return r.backend, nil
}

func (r *AptRepository) IsAvailable(ctx context.Context) bool {
	_, err := r.pm()
	return err == nil
}

func (r *AptRepository) FetchPackages(ctx context.Context) ([]*models.Package, error) {
	pm, err := r.pm()
	if err != nil {
		return nil, err
	}

	var infos []manager.PackageInfo
	err = callWithTimeout(ctx, r.settings.ListTimeout, func() error {
		var e error
		infos, e = pm.ListInstalled(&manager.Options{})
		return e
	})
	if err != nil {
		return nil, err
	}

	pkgs := make([]*models.Package, 0, len(infos))
	for _, info := range infos {
		if info.Name == "" {
			continue
		}
		pkgs = append(pkgs, models.NewPackage(models.ManagerApt, info.Name, info.Version, ""))
	}
	return pkgs, nil
}

func (r *AptRepository) QueryLatestVersion(ctx context.Context, pkg models.Package) (string, error) {
	pm, err := r.pm()
	if err != nil {
		return "", err
	}

	var infos []manager.PackageInfo
	err = callWithTimeout(ctx, r.settings.QueryTimeout, func() error {
		var e error
		infos, e = pm.Find([]string{pkg.Name()}, &manager.Options{})
		return e
	})
	if err != nil {
		return "", err
	}

	for _, info := range infos {
		if info.Name != pkg.Name() {
			continue
		}
		if info.NewVersion != "" {
			return info.NewVersion, nil
		}
		if info.Version != "" {
			return info.Version, nil
		}
	}

	return "", NewParseFailedError(nil, "apt has no candidate version for %s", pkg.Name()).
		WithProperty(PackageProperty, pkg.Name())
}

func (r *AptRepository) UpdatePackage(ctx context.Context, pkg models.Package) error {
	pm, err := r.pm()
	if err != nil {
		return err
	}

	up, ok := pm.(aptUpgrader)
	if !ok {
		return UnknownError.New("apt backend does not support upgrading single packages").
			WithProperty(PackageProperty, pkg.Name())
	}

	return callWithTimeout(ctx, r.settings.UpdateTimeout, func() error {
		_, e := up.Upgrade([]string{pkg.Name()}, &manager.Options{AssumeYes: true})
		return e
	})
}

// callWithTimeout runs a blocking syspkg call and gives up waiting after d. syspkg calls take no context, so an
// abandoned call keeps running in the background until it returns.
func callWithTimeout(ctx context.Context, d time.Duration, fn func() error) error {
	if d <= 0 {
		d = 30 * time.Second
	}

	done := make(chan error, 1)
	go func() {
		done <- fn()
	}()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case err := <-done:
		if err != nil {
			return newCommandFailedError(err, err.Error()).WithProperty(ManagerProperty, models.ManagerApt)
		}
		return nil
	case <-timer.C:
		return newTimeoutError(nil, d).WithProperty(ManagerProperty, models.ManagerApt)
	case <-ctx.Done():
		return UnknownError.Wrap(ctx.Err(), "An unknown error occurred: %v", ctx.Err())
	}
}
