// SPDX-License-Identifier: Apache-2.0

// Package report renders packages and manager status for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/hashgraph/pkgview/internal/bll"
	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/pkgsource"
	"github.com/joomcode/errorx"
	"gopkg.in/yaml.v3"
)

const (
	FormatTable = "table"
	FormatYAML  = "yaml"
	FormatJSON  = "json"
	FormatTOML  = "toml"
)

// Formats lists the accepted output formats.
var Formats = []string{FormatTable, FormatYAML, FormatJSON, FormatTOML}

const dateLayout = "2006-01-02"

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	updateStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("214"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// ParseFormat normalizes s and rejects unknown formats.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(s))
	if f == "" {
		return FormatTable, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errorx.IllegalArgument.New("unsupported output format %q, expected one of %s", s, strings.Join(Formats, ", ")).
		WithProperty(errorx.PropertyPayload(), "--output")
}

// PackageRow is the serialized form of a package.
type PackageRow struct {
	Manager          models.Manager `yaml:"manager" json:"manager" toml:"manager"`
	Name             string         `yaml:"name" json:"name" toml:"name"`
	InstalledVersion string         `yaml:"installedVersion" json:"installedVersion" toml:"installedVersion"`
	LatestVersion    string         `yaml:"latestVersion,omitempty" json:"latestVersion,omitempty" toml:"latestVersion,omitempty"`
	UpdateAvailable  bool           `yaml:"updateAvailable" json:"updateAvailable" toml:"updateAvailable"`
	InstallPath      string         `yaml:"installPath,omitempty" json:"installPath,omitempty" toml:"installPath,omitempty"`
	InstalledAt      *time.Time     `yaml:"installedAt,omitempty" json:"installedAt,omitempty" toml:"installedAt,omitempty"`
	Size             int64          `yaml:"size,omitempty" json:"size,omitempty" toml:"size,omitempty"`
}

type packageList struct {
	Packages []PackageRow `yaml:"packages" json:"packages" toml:"packages"`
}

type managerList struct {
	Managers []bll.ManagerStatus `yaml:"managers" json:"managers" toml:"managers"`
}

func toRows(pkgs []*models.Package) []PackageRow {
	rows := make([]PackageRow, 0, len(pkgs))
	for _, p := range pkgs {
		rows = append(rows, PackageRow{
			Manager:          p.Manager(),
			Name:             p.DisplayName,
			InstalledVersion: p.InstalledVersion,
			LatestVersion:    p.LatestVersion,
			UpdateAvailable:  p.UpdateAvailable(),
			InstallPath:      p.InstallPath,
			InstalledAt:      p.InstallationDate,
			Size:             p.Size,
		})
	}
	return rows
}

// Packages writes pkgs to w in format. The table has a "Latest" column only when showLatest is set.
func Packages(w io.Writer, format string, pkgs []*models.Package, showLatest bool) error {
	if format != FormatTable {
		return Encode(w, format, packageList{Packages: toRows(pkgs)})
	}

	headers := []string{"Name", "Installed"}
	if showLatest {
		headers = append(headers, "Latest", "Update")
	}
	headers = append(headers, "Size", "Installed On")

	rows := make([][]string, 0, len(pkgs))
	for _, p := range pkgs {
		row := []string{p.DisplayName, orDash(p.InstalledVersion)}
		if showLatest {
			update := ""
			if p.UpdateAvailable() {
				update = "yes"
			}
			row = append(row, orDash(p.LatestVersion), update)
		}
		date := pkgsource.UnknownSize
		if p.InstallationDate != nil {
			date = p.InstallationDate.Format(dateLayout)
		}
		row = append(row, orDash(p.SizeText), date)
		rows = append(rows, row)
	}

	updateCol := -1
	if showLatest {
		updateCol = 3
	}
	_, err := fmt.Fprintln(w, Table(headers, rows, updateCol))
	return err
}

// Managers writes the availability of each manager to w in format.
func Managers(w io.Writer, format string, statuses []bll.ManagerStatus) error {
	if format != FormatTable {
		return Encode(w, format, managerList{Managers: statuses})
	}

	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		available := "no"
		if s.Available {
			available = "yes"
		}
		rows = append(rows, []string{s.Name, s.Manager.String(), orDash(s.Command), available})
	}

	_, err := fmt.Fprintln(w, Table([]string{"Manager", "Id", "Command", "Available"}, rows, -1))
	return err
}

// Table renders rows under headers. Non-empty cells of highlightCol are emphasized; pass -1 for none.
func Table(headers []string, rows [][]string, highlightCol int) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == highlightCol && row >= 0 && row < len(rows) && rows[row][col] != "":
				return updateStyle
			default:
				return cellStyle
			}
		})

	return t.Render()
}

// Encode writes v to w as yaml, json or toml.
func Encode(w io.Writer, format string, v interface{}) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errorx.IllegalFormat.Wrap(err, "failed to encode output as YAML")
		}
		return enc.Close()
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errorx.IllegalFormat.Wrap(err, "failed to encode output as JSON")
		}
		return nil
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(v); err != nil {
			return errorx.IllegalFormat.Wrap(err, "failed to encode output as TOML")
		}
		return nil
	default:
		return errorx.IllegalFormat.New("unsupported format: %s", format)
	}
}

func orDash(s string) string {
	if s == "" {
		return pkgsource.UnknownSize
	}
	return s
}
