// SPDX-License-Identifier: Apache-2.0

package packages

import (
	"context"
	"io"

	"github.com/automa-saga/logx"
	"github.com/hashgraph/pkgview/cmd/pkgview/commands/common"
	"github.com/hashgraph/pkgview/internal/bll"
	"github.com/hashgraph/pkgview/internal/report"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Long:  "List the packages installed by one package manager, or by every enabled one when --manager is omitted",
	Example: `  pkgview list
  pkgview list -m npm --search type
  pkgview list -m pip -o json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, err := common.FlagOutput.Value(cmd, nil)
		if err != nil {
			return err
		}
		format, err := report.ParseFormat(output)
		if err != nil {
			return err
		}

		b, err := common.NewBLL()
		if err != nil {
			return err
		}

		return listPackages(cmd.Context(), b, cmd.OutOrStdout(), flagManager, flagSearch, format)
	},
}

// listPackages writes the installed packages matching query. When several managers are listed, one that fails to
// load is skipped with a warning; a single requested manager that fails is an error.
func listPackages(ctx context.Context, b bll.BLL, w io.Writer, manager, query, format string) error {
	managers, err := common.SelectManagers(b, manager)
	if err != nil {
		return err
	}

	var groups []packageGroup
	for _, m := range managers {
		c, err := b.Load(ctx, m)
		if err != nil {
			if len(managers) == 1 {
				return err
			}
			logx.As().Warn().Err(err).Str("manager", m.String()).Msg("Skipping package manager")
			continue
		}

		c.Search(query)
		visible := c.Visible()
		logx.As().Debug().Str("manager", m.String()).Str("query", query).Int("count", len(visible)).Msg("Listing packages")
		groups = append(groups, packageGroup{manager: m, pkgs: visible})
	}

	return render(w, format, groups, false)
}
