// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/mock/gomock"
	"github.com/hashgraph/pkgview/internal/catalog"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/pkgsource"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newCatalog(t *testing.T, ctrl *gomock.Controller, m models.Manager, names ...string) (*catalog.Catalog, *pkgsource.MockRepository) {
	t.Helper()
	repo := pkgsource.NewMockRepository(ctrl)
	repo.EXPECT().Manager().Return(m).AnyTimes()
	repo.EXPECT().IsAvailable(gomock.Any()).Return(true).AnyTimes()

	var pkgs []*models.Package
	for _, n := range names {
		pkgs = append(pkgs, models.NewPackage(m, n, "1.0.0", ""))
	}
	repo.EXPECT().FetchPackages(gomock.Any()).DoAndReturn(func(context.Context) ([]*models.Package, error) {
		result := make([]*models.Package, 0, len(pkgs))
		for _, p := range pkgs {
			result = append(result, p.Clone())
		}
		return result, nil
	}).AnyTimes()

	c := catalog.New(repo)
	require.NoError(t, c.Load(context.Background()))
	return c, repo
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_Navigation(t *testing.T) {
	ctrl := gomock.NewController(t)
	npm, _ := newCatalog(t, ctrl, models.ManagerNpm, "eslint", "typescript", "yarn")

	m := NewModel(context.Background(), []*catalog.Catalog{npm})
	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 2, m.cursor, "cursor stops at the last row")

	m, _ = update(t, m, runes("k"))
	p, ok := m.selected()
	require.True(t, ok)
	require.Equal(t, "typescript", p.Name())

	require.Contains(t, m.View(), "typescript")
}

func TestModel_SearchIsDebounced(t *testing.T) {
	ctrl := gomock.NewController(t)
	npm, _ := newCatalog(t, ctrl, models.ManagerNpm, "eslint", "typescript", "yarn")

	m := NewModel(context.Background(), []*catalog.Catalog{npm})
	m, _ = update(t, m, runes("/"))
	require.True(t, m.searching)

	m, cmd := update(t, m, runes("t"))
	require.NotNil(t, cmd)
	stale := searchMsg{seq: m.searchSeq, tab: m.active, query: "t"}

	m, _ = update(t, m, runes("y"))
	current := searchMsg{seq: m.searchSeq, tab: m.active, query: "ty"}

	// the first tick was superseded by the second keystroke
	m, _ = update(t, m, stale)
	require.Equal(t, "", npm.Query())
	require.Equal(t, 3, npm.PackageCount())

	m, _ = update(t, m, current)
	require.Equal(t, "ty", npm.Query())
	require.Equal(t, 1, npm.PackageCount())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.searching)
	require.Equal(t, "", npm.Query())
	require.Equal(t, 3, npm.PackageCount())
}

func TestModel_NoMatchShowsSuggestions(t *testing.T) {
	ctrl := gomock.NewController(t)
	npm, _ := newCatalog(t, ctrl, models.ManagerNpm, "typescript", "eslint")

	m := NewModel(context.Background(), []*catalog.Catalog{npm})
	npm.Search("tscript")

	view := m.View()
	require.Contains(t, view, `No packages match "tscript"`)
	require.Contains(t, view, "Did you mean: typescript?")
}

func TestModel_TabsSwitchAndLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	npm, _ := newCatalog(t, ctrl, models.ManagerNpm, "eslint")
	pip, _ := newCatalog(t, ctrl, models.ManagerPip, "requests", "flask")

	m := NewModel(context.Background(), []*catalog.Catalog{npm, pip})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 1, m.active)
	require.NotNil(t, cmd)
	done := cmd().(opDoneMsg)
	require.Equal(t, opLoad, done.op)
	require.NoError(t, done.err)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, 0, m.active)
	require.Contains(t, m.View(), "pip (2)")
}

func TestModel_CheckAndUpdate(t *testing.T) {
	ctrl := gomock.NewController(t)
	npm, repo := newCatalog(t, ctrl, models.ManagerNpm, "eslint")
	repo.EXPECT().QueryLatestVersion(gomock.Any(), gomock.Any()).Return("2.0.0", nil)
	repo.EXPECT().UpdatePackage(gomock.Any(), gomock.Any()).Return(nil)

	m := NewModel(context.Background(), []*catalog.Catalog{npm})

	m, cmd := update(t, m, runes("c"))
	require.NotNil(t, cmd)
	m, _ = update(t, m, cmd())
	p, _ := m.selected()
	require.Equal(t, "2.0.0", p.LatestVersion)
	require.True(t, p.UpdateAvailable())

	m, cmd = update(t, m, runes("u"))
	require.Contains(t, m.statusMsg, "Updating eslint")
	m, _ = update(t, m, cmd())
	require.Empty(t, m.statusMsg)

	n, ok := npm.Notification()
	require.True(t, ok)
	require.True(t, n.Success)
	require.Contains(t, m.View(), "eslint updated successfully")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	_, ok = npm.Notification()
	require.False(t, ok)
}

func TestModel_UnavailableManager(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := pkgsource.NewMockRepository(ctrl)
	repo.EXPECT().Manager().Return(models.ManagerHomebrew).AnyTimes()
	repo.EXPECT().IsAvailable(gomock.Any()).Return(false)

	c := catalog.New(repo)
	m := NewModel(context.Background(), []*catalog.Catalog{c})
	require.Contains(t, m.View(), "Loading Homebrew packages")

	done := m.load()().(opDoneMsg)
	require.Error(t, done.err)

	view := m.View()
	require.Contains(t, view, "Homebrew is not available")
	require.Contains(t, view, "Please install the package manager to view its packages")
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(context.Background(), nil)
	_, cmd := update(t, m, runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.Contains(t, m.View(), "No package managers")
}

func TestCell_FitsWideCharacters(t *testing.T) {
	require.Equal(t, 6, runewidth.StringWidth(cell("日本語パッケージ", 6)))
	require.Equal(t, "eslint    ", cell("eslint", 10))
}

func TestErrorHint_OffersRetryOnlyWhenRetryable(t *testing.T) {
	require.Equal(t, "Package data format may have changed. Press r to retry.",
		errorHint(pkgsource.NewParseFailedError(nil, "bad output")))
	require.Equal(t, "Please install the package manager to view its packages",
		errorHint(pkgsource.NewNotInstalledError(models.ManagerPip)))
}
