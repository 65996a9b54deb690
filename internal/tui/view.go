// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hashgraph/pkgview/internal/catalog"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/pkgsource"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

func (m Model) View() string {
	c := m.current()
	if c == nil {
		return "No package managers are enabled.\n"
	}
	snap := c.Snapshot()

	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", max(min(m.width, 80), 40)))
	b.WriteString("\n")

	b.WriteString(m.renderSearch(snap))
	b.WriteString("\n\n")

	if n := snap.Notification; n != nil {
		b.WriteString(renderNotification(*n))
		b.WriteString("\n")
	}

	switch snap.State {
	case catalog.StateIdle, catalog.StateLoading:
		b.WriteString(fmt.Sprintf("%s Loading %s packages...\n", m.spinner.View(), snap.Manager.DisplayName()))
	case catalog.StateUnavailable:
		b.WriteString(errorStyle.Render(fmt.Sprintf("%s is not available on this system.", snap.Manager.DisplayName())))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(pkgsource.RecoverySuggestion(snap.Err)))
		b.WriteString("\n")
	case catalog.StateError:
		b.WriteString(errorStyle.Render(pkgsource.Describe(snap.Err)))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render(errorHint(snap.Err)))
		b.WriteString("\n")
	default:
		m.renderPackages(&b, snap)
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		if m.statusErr {
			b.WriteString(errorStyle.Render(m.statusMsg))
		} else {
			b.WriteString(successStyle.Render(m.statusMsg))
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/k up  ↓/j down  tab manager  / search  c check  u update  r refresh  q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderTabs() string {
	parts := []string{titleStyle.Render("pkgview")}
	for i, c := range m.catalogs {
		label := c.Manager().DisplayName()
		if c.State() == catalog.StateReady {
			label = fmt.Sprintf("%s (%d)", label, c.PackageCount())
		}
		if i == m.active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) renderSearch(snap catalog.Snapshot) string {
	switch {
	case m.searching:
		return searchStyle.Render("Search: ") + m.searchInput.View()
	case snap.Query != "":
		return searchStyle.Render("Search: ") + snap.Query + dimStyle.Render("  (/ to edit, esc to clear)")
	default:
		return dimStyle.Render("Press / to search")
	}
}

func renderNotification(n catalog.Notification) string {
	if n.Success {
		return bannerStyle.Render(successStyle.Render("✓ "+n.PackageName+" updated successfully") +
			dimStyle.Render("  (enter to dismiss)"))
	}
	return bannerStyle.Render(errorStyle.Render("✗ Failed to update "+n.PackageName+": "+n.Error) +
		dimStyle.Render("  (enter to dismiss)"))
}

func (m Model) renderPackages(b *strings.Builder, snap catalog.Snapshot) {
	items := snap.Visible
	if len(items) == 0 {
		if snap.Query == "" {
			b.WriteString(dimStyle.Render("No packages installed."))
			b.WriteString("\n")
			return
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("No packages match %q.", snap.Query)))
		b.WriteString("\n")
		if s := suggestions(snap.Query, snap.Packages); len(s) > 0 {
			b.WriteString(dimStyle.Render("Did you mean: " + strings.Join(s, ", ") + "?"))
			b.WriteString("\n")
		}
		return
	}

	maxVisible := m.maxVisibleItems()
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-32s %-16s %-16s %-10s %s", "NAME", "INSTALLED", "LATEST", "SIZE", "INSTALLED ON")))
	if len(items) > maxVisible {
		b.WriteString(dimStyle.Render(fmt.Sprintf(" (%d-%d of %d)", m.scroll+1, min(m.scroll+maxVisible, len(items)), len(items))))
	}
	b.WriteString("\n")

	end := min(m.scroll+maxVisible, len(items))
	for i := m.scroll; i < end; i++ {
		b.WriteString(m.renderRow(items[i], i == m.cursor))
		b.WriteString("\n")
	}
}

func (m Model) renderRow(p *models.Package, selected bool) string {
	var latest string
	switch {
	case p.UpdateInProgress:
		// the spinner glyph takes one column
		latest = m.spinner.View() + " " + cell("updating", 14)
	case p.CheckInProgress:
		latest = m.spinner.View() + " " + cell("checking", 14)
	case p.LatestVersion == "":
		latest = cell(pkgsource.UnknownSize, 16)
	default:
		latest = cell(p.LatestVersion, 16)
	}

	date := pkgsource.UnknownSize
	if p.InstallationDate != nil {
		date = p.InstallationDate.Format("2006-01-02")
	}
	size := p.SizeText
	if size == "" {
		size = pkgsource.UnknownSize
	}
	installed := p.InstalledVersion
	if installed == "" {
		installed = pkgsource.UnknownSize
	}

	line := strings.Join([]string{
		cell(p.DisplayName, 32), cell(installed, 16), latest, cell(size, 10), date,
	}, " ")

	switch {
	case selected:
		return selectedStyle.Render("> " + line)
	case p.UpdateAvailable():
		return updateStyle.Render("  " + line)
	default:
		return normalStyle.Render("  " + line)
	}
}

// errorHint offers a retry only for failures that may go away on their own.
func errorHint(err error) string {
	hint := pkgsource.RecoverySuggestion(err)
	if pkgsource.IsRetryable(err) {
		hint += ". Press r to retry."
	}
	return hint
}

// suggestions returns the installed names closest to query.
func suggestions(query string, pkgs []*models.Package) []string {
	names := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		names = append(names, p.DisplayName)
	}

	matches := fuzzy.Find(query, names)
	result := make([]string, 0, maxSuggestions)
	for i := 0; i < len(matches) && i < maxSuggestions; i++ {
		result = append(result, matches[i].Str)
	}
	return result
}

// cell fits s into exactly width terminal columns. Wide characters count double.
func cell(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
