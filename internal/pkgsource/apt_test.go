// SPDX-License-Identifier: Apache-2.0

package pkgsource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bluet/syspkg/manager"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/require"
)

type fakeApt struct {
	installed []manager.PackageInfo
	found     []manager.PackageInfo
	err       error
	delay     time.Duration
	upgraded  []string
}

func (f *fakeApt) ListInstalled(_ *manager.Options) ([]manager.PackageInfo, error) {
	time.Sleep(f.delay)
	return f.installed, f.err
}

func (f *fakeApt) Find(_ []string, _ *manager.Options) ([]manager.PackageInfo, error) {
	return f.found, f.err
}

func (f *fakeApt) Upgrade(pkgs []string, _ *manager.Options) ([]manager.PackageInfo, error) {
	f.upgraded = append(f.upgraded, pkgs...)
	return nil, f.err
}

func TestAptRepository_FetchPackages(t *testing.T) {
	backend := &fakeApt{installed: []manager.PackageInfo{
		{Name: "curl", Version: "8.5.0-2ubuntu10"},
		{Name: "", Version: "1"},
		{Name: "git", Version: "1:2.43.0-1"},
	}}

	repo := NewAptRepository(DefaultSettings(models.ManagerApt), WithAptBackend(backend))
	require.True(t, repo.IsAvailable(context.Background()))
	require.Equal(t, models.ManagerApt, repo.Manager())

	pkgs, err := repo.FetchPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	require.Equal(t, "apt/curl", pkgs[0].ID.String())
	require.Equal(t, "1:2.43.0-1", pkgs[1].InstalledVersion)
}

func TestAptRepository_FetchPackages_Timeout(t *testing.T) {
	backend := &fakeApt{delay: 500 * time.Millisecond}

	s := DefaultSettings(models.ManagerApt)
	s.ListTimeout = 50 * time.Millisecond

	_, err := NewAptRepository(s, WithAptBackend(backend)).FetchPackages(context.Background())
	require.True(t, errorx.IsOfType(err, TimeoutError))
}

func TestAptRepository_QueryLatestVersion(t *testing.T) {
	backend := &fakeApt{found: []manager.PackageInfo{
		{Name: "curl-dev", Version: "1", NewVersion: "2"},
		{Name: "curl", Version: "8.5.0", NewVersion: "8.5.1"},
	}}

	repo := NewAptRepository(DefaultSettings(models.ManagerApt), WithAptBackend(backend))
	v, err := repo.QueryLatestVersion(context.Background(), *models.NewPackage(models.ManagerApt, "curl", "8.5.0", ""))
	require.NoError(t, err)
	require.Equal(t, "8.5.1", v)

	_, err = repo.QueryLatestVersion(context.Background(), *models.NewPackage(models.ManagerApt, "wget", "", ""))
	require.True(t, errorx.IsOfType(err, ParseFailedError))
}

func TestAptRepository_UpdatePackage(t *testing.T) {
	backend := &fakeApt{}
	repo := NewAptRepository(DefaultSettings(models.ManagerApt), WithAptBackend(backend))

	require.NoError(t, repo.UpdatePackage(context.Background(), *models.NewPackage(models.ManagerApt, "curl", "", "")))
	require.Equal(t, []string{"curl"}, backend.upgraded)

	backend.err = errors.New("dpkg was interrupted")
	err := repo.UpdatePackage(context.Background(), *models.NewPackage(models.ManagerApt, "curl", "", ""))
	require.True(t, errorx.IsOfType(err, CommandFailedError))
	require.Contains(t, Describe(err), "dpkg was interrupted")
}

func TestAptRepository_Unavailable(t *testing.T) {
	repo := NewAptRepository(DefaultSettings(models.ManagerApt))
	repo.resolve = func() (AptBackend, error) { return nil, errors.New("apt not found") }

	require.False(t, repo.IsAvailable(context.Background()))

	_, err := repo.FetchPackages(context.Background())
	require.True(t, errorx.IsOfType(err, NotInstalledError))
}
