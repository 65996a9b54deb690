// SPDX-License-Identifier: Apache-2.0

package packages

import (
	"fmt"
	"io"

	"github.com/hashgraph/pkgview/internal/models"
	"github.com/hashgraph/pkgview/internal/report"
)

type packageGroup struct {
	manager models.Manager
	pkgs    []*models.Package
}

// render prints one table per manager, headed by its name when there are several. Structured formats get a single
// list; every row carries its manager there.
func render(w io.Writer, format string, groups []packageGroup, showLatest bool) error {
	if format != report.FormatTable {
		var all []*models.Package
		for _, g := range groups {
			all = append(all, g.pkgs...)
		}
		return report.Packages(w, format, all, showLatest)
	}

	for _, g := range groups {
		if len(groups) > 1 {
			if _, err := fmt.Fprintf(w, "%s (%d)\n", g.manager.DisplayName(), len(g.pkgs)); err != nil {
				return err
			}
		}
		if err := report.Packages(w, format, g.pkgs, showLatest); err != nil {
			return err
		}
	}

	return nil
}
