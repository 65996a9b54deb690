// SPDX-License-Identifier: Apache-2.0

package pkgsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/hashgraph/pkgview/internal/execx"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/joomcode/errorx"
	"github.com/stretchr/testify/require"
)

func pipSettings() Settings {
	s := DefaultSettings(models.ManagerPip)
	s.Enrich = false
	return s
}

func siteOutput(dir string) string {
	return "sys.path = [\n" +
		"    '/usr/lib/python313.zip',\n" +
		"    '" + dir + "',\n" +
		"]\n" +
		"USER_BASE: '/home/u/.local' (exists)\n"
}

func TestPipRepository_FetchPackages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	site := filepath.Join(t.TempDir(), "lib", "python3.13", "site-packages")
	require.NoError(t, os.MkdirAll(filepath.Join(site, "flask"), 0o755))

	runner := execx.NewMockRunner(ctrl)
	runner.EXPECT().
		Execute(gomock.Any(), "pip3", []string{"list", "--format=json"}, 30*time.Second).
		Return(`[{"name":"Flask","version":"2.0.1"},{"name":"Foo-Bar","version":"0.1"},{"version":"9"}]`, nil)
	runner.EXPECT().
		Execute(gomock.Any(), "python3", []string{"-m", "site"}, 30*time.Second).
		Return(siteOutput(site), nil)

	repo := NewPipRepository(runner, pipSettings())
	pkgs, err := repo.FetchPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, pkgs, 2)

	require.Equal(t, "Flask", pkgs[0].Name())
	require.Equal(t, "2.0.1", pkgs[0].InstalledVersion)
	require.Equal(t, models.ManagerPip, pkgs[0].Manager())
	require.Equal(t, "flask", filepath.Base(pkgs[0].InstallPath))

	require.Equal(t, "Foo-Bar", pkgs[1].Name())
	require.Equal(t, filepath.Join(site, "Foo_Bar"), pkgs[1].InstallPath)
}

func TestPipRepository_FetchPackages_SiteFallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := execx.NewMockRunner(ctrl)
	runner.EXPECT().Execute(gomock.Any(), "pip3", gomock.Any(), gomock.Any()).Return(`[{"name":"requests","version":"2.32.3"}]`, nil)
	runner.EXPECT().Execute(gomock.Any(), "python3", gomock.Any(), gomock.Any()).Return("", execx.NotFoundError.New("no python"))

	pkgs, err := NewPipRepository(runner, pipSettings()).FetchPackages(context.Background())
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.Equal(t, "/opt/anaconda3/lib/python3.13/site-packages/requests", pkgs[0].InstallPath)
}

func TestPipRepository_FetchPackages_Malformed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := execx.NewMockRunner(ctrl)
	runner.EXPECT().Execute(gomock.Any(), "pip3", gomock.Any(), gomock.Any()).Return(`{"name":"x"}`, nil)

	_, err := NewPipRepository(runner, pipSettings()).FetchPackages(context.Background())
	require.True(t, errorx.IsOfType(err, ParseFailedError))
}

func TestParsePipList(t *testing.T) {
	entries, err := parsePipList("[]")
	require.NoError(t, err)
	require.Empty(t, entries)

	for _, out := range []string{"null", "", `{"name":"x"}`} {
		_, err = parsePipList(out)
		require.True(t, errorx.IsOfType(err, ParseFailedError), out)
	}
}

func TestParseSiteOutput(t *testing.T) {
	require.Equal(t, "/usr/lib/python3/dist-packages", parseSiteOutput("sys.path = [\n    \"/usr/lib/python3/dist-packages\",\n]"))
	require.Equal(t, "", parseSiteOutput("relative/site-packages\n/usr/lib/python3.13\n"))
}

func TestPipRepository_QueryLatestVersion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	pkg := *models.NewPackage(models.ManagerPip, "requests", "2.31.0", "")

	runner := execx.NewMockRunner(ctrl)
	gomock.InOrder(
		runner.EXPECT().Execute(gomock.Any(), "pip3", []string{"index", "versions", "requests"}, 15*time.Second).
			Return("requests (2.32.3)\nAvailable versions: 2.32.3, 2.32.2\n  INSTALLED: 2.31.0\n  LATEST:    2.32.3\n", nil),
		runner.EXPECT().Execute(gomock.Any(), "pip3", []string{"index", "versions", "requests"}, 15*time.Second).
			Return("requests (2.32.3)\nAvailable versions: 2.32.3\n", nil),
	)

	repo := NewPipRepository(runner, pipSettings())
	v, err := repo.QueryLatestVersion(context.Background(), pkg)
	require.NoError(t, err)
	require.Equal(t, "2.32.3", v)

	_, err = repo.QueryLatestVersion(context.Background(), pkg)
	require.True(t, errorx.IsOfType(err, ParseFailedError))
	require.Equal(t, "Package data format may have changed", RecoverySuggestion(err))
}

func TestPipRepository_UpdatePackage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := execx.NewMockRunner(ctrl)
	runner.EXPECT().Execute(gomock.Any(), "pip3", []string{"install", "--upgrade", "requests"}, 180*time.Second).Return("", nil)

	repo := NewPipRepository(runner, pipSettings())
	require.NoError(t, repo.UpdatePackage(context.Background(), *models.NewPackage(models.ManagerPip, "requests", "", "")))
}
